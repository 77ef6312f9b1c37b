package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/relevohq/relevo/internal/core"
	"github.com/relevohq/relevo/pkg/log"
)

type ReferencesRepo struct {
	db *sql.DB
}

func NewReferencesRepo(db *sql.DB) *ReferencesRepo {
	return &ReferencesRepo{db: db}
}

// CreateReference appends one mention row. INSERT OR IGNORE rides the unique
// (interview_id, process_id) index, so re-delivered events and repeated
// mentions within one interview collapse into a single row.
func (r *ReferencesRepo) CreateReference(ctx context.Context, ref core.ProcessReference) error {
	mentionedAt := ref.MentionedAt
	if mentionedAt.IsZero() {
		mentionedAt = time.Now().UTC()
	}

	query := `INSERT OR IGNORE INTO process_references
	          (interview_id, process_id, is_new_process, confidence, mentioned_at)
	          VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, ref.InterviewID, ref.ProcessID, ref.IsNewProcess, ref.Confidence, mentionedAt)
	if err != nil {
		return fmt.Errorf("failed to insert process reference: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.FromCtx(ctx).Debug().
			Str("interview_id", ref.InterviewID).
			Str("process_id", ref.ProcessID).
			Msg("process reference already recorded")
	}
	return nil
}

// GetFirstReference returns the earliest reference for the process, which
// identifies the interview that originally reported it.
func (r *ReferencesRepo) GetFirstReference(ctx context.Context, processID string) (core.ProcessReference, error) {
	query := `SELECT id, interview_id, process_id, is_new_process, confidence, mentioned_at
	          FROM process_references WHERE process_id = ?
	          ORDER BY mentioned_at ASC, id ASC LIMIT 1`

	var ref core.ProcessReference
	err := r.db.QueryRowContext(ctx, query, processID).Scan(
		&ref.ID, &ref.InterviewID, &ref.ProcessID, &ref.IsNewProcess, &ref.Confidence, &ref.MentionedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ProcessReference{}, fmt.Errorf("%w: no references for process %s", core.ErrNotFound, processID)
	}
	if err != nil {
		return core.ProcessReference{}, fmt.Errorf("failed to query first reference: %w", err)
	}
	return ref, nil
}

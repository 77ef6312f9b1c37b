package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/relevohq/relevo/internal/core"
)

type InterviewsRepo struct {
	db *sql.DB
}

func NewInterviewsRepo(db *sql.DB) *InterviewsRepo {
	return &InterviewsRepo{db: db}
}

func (r *InterviewsRepo) CreateInterview(ctx context.Context, iv core.Interview) error {
	query := `INSERT INTO interviews (id, employee_id, organization_id, language, turns, started_at)
	          VALUES (?, ?, ?, ?, ?, ?)`
	startedAt := iv.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query, iv.ID, iv.EmployeeID, iv.OrganizationID, iv.Language, iv.Turns, startedAt)
	if err != nil {
		return fmt.Errorf("failed to insert interview: %w", err)
	}
	return nil
}

func (r *InterviewsRepo) GetInterview(ctx context.Context, id string) (core.Interview, error) {
	query := `SELECT id, employee_id, organization_id, language, turns, started_at, completed_at
	          FROM interviews WHERE id = ?`

	var iv core.Interview
	var completedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&iv.ID, &iv.EmployeeID, &iv.OrganizationID, &iv.Language, &iv.Turns, &iv.StartedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Interview{}, fmt.Errorf("%w: interview %s", core.ErrNotFound, id)
	}
	if err != nil {
		return core.Interview{}, fmt.Errorf("failed to query interview: %w", err)
	}
	if completedAt.Valid {
		iv.CompletedAt = &completedAt.Time
	}
	return iv, nil
}

func (r *InterviewsRepo) CompleteInterview(ctx context.Context, id string, reason core.FinishReason) error {
	query := `UPDATE interviews SET completed_at = ?, finish_reason = ? WHERE id = ? AND completed_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), string(reason), id)
	if err != nil {
		return fmt.Errorf("failed to complete interview: %w", err)
	}
	return nil
}

func (r *InterviewsRepo) IncrementTurns(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE interviews SET turns = turns + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment turns: %w", err)
	}
	return nil
}

// HistorySummary digests the employee's previous interviews into one line the
// enrichment service can drop into a prompt.
func (r *InterviewsRepo) HistorySummary(ctx context.Context, employeeID string) (string, error) {
	query := `SELECT COUNT(*), COALESCE(MAX(started_at), '') FROM interviews
	          WHERE employee_id = ? AND completed_at IS NOT NULL`

	var count int
	var last string
	if err := r.db.QueryRowContext(ctx, query, employeeID).Scan(&count, &last); err != nil {
		return "", fmt.Errorf("failed to query history: %w", err)
	}
	if count == 0 {
		return "", nil
	}
	return fmt.Sprintf("%d previous completed interview(s), most recent started at %s", count, last), nil
}

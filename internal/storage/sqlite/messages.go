package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/relevohq/relevo/internal/core"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

func (r *MessagesRepo) AddMessage(ctx context.Context, interviewID string, msg core.Message) error {
	query := `INSERT INTO messages (interview_id, role, content) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, interviewID, msg.Role, msg.Content)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// GetMessages returns the full transcript in chronological order. The
// extraction worker depends on getting everything, not a window.
func (r *MessagesRepo) GetMessages(ctx context.Context, interviewID string) ([]core.Message, error) {
	query := `SELECT id, interview_id, role, content, created_at
	          FROM messages WHERE interview_id = ? ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.Message
	for rows.Next() {
		var msg core.Message
		if err := rows.Scan(&msg.ID, &msg.InterviewID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

package core

import "context"

type InterviewsRepository interface {
	CreateInterview(ctx context.Context, iv Interview) error
	GetInterview(ctx context.Context, id string) (Interview, error)
	CompleteInterview(ctx context.Context, id string, reason FinishReason) error
	// HistorySummary returns a short human-readable digest of the employee's
	// previous interviews, used for context enrichment.
	HistorySummary(ctx context.Context, employeeID string) (string, error)
}

type MessagesRepository interface {
	AddMessage(ctx context.Context, interviewID string, msg Message) error
	GetMessages(ctx context.Context, interviewID string) ([]Message, error)
}

type ReferencesRepository interface {
	// CreateReference appends a mention row. Inserting the same
	// (interview_id, process_id) twice is a no-op, which is what makes
	// at-least-once event delivery safe.
	CreateReference(ctx context.Context, ref ProcessReference) error
	// GetFirstReference returns the earliest reference for a process by
	// creation time, or ErrNotFound.
	GetFirstReference(ctx context.Context, processID string) (ProcessReference, error)
}

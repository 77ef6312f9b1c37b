package core

import "context"

// LLMProvider is the narrow completion capability the pipeline depends on.
// Timeouts are caller-supplied through ctx; implementations must honor
// cancellation.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Directory is the organization directory: employees, roles, and the
// externally-owned process catalog.
type Directory interface {
	GetEmployee(ctx context.Context, id string) (Employee, error)
	GetRole(ctx context.Context, id string) (Role, error)
	GetOrganizationProcesses(ctx context.Context, orgID string, limit int) ([]ProcessContextData, error)
	CreateProcess(ctx context.Context, p NewProcess) (ProcessContextData, error)
}

// EventPublisher pushes interview lifecycle events to the bus.
type EventPublisher interface {
	PublishCompleted(ctx context.Context, ev CompletedEvent) error
}

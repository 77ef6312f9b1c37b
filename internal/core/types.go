package core

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single interview turn entry as stored in the transcript.
type Message struct {
	ID          int64     `json:"id"`
	InterviewID string    `json:"interview_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Interview tracks one conversation between the agent and an employee.
type Interview struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employee_id"`
	OrganizationID string     `json:"organization_id"`
	Language       string     `json:"language"`
	Turns          int        `json:"turns"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Employee is a directory snapshot of the person being interviewed.
type Employee struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id"`
	Roles          []Role `json:"roles"`
}

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProcessContextData is a snapshot of a directory-owned process. It is
// immutable within a cache window; a fresh copy is fetched on expiry.
type ProcessContextData struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	TypeLabel string    `json:"type_label"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InterviewContextData aggregates everything the agent knows about the
// interviewee at turn time. Built fresh per fetch, never mutated after.
type InterviewContextData struct {
	Employee              Employee             `json:"employee"`
	OrganizationProcesses []ProcessContextData `json:"organization_processes"`
	HistorySummary        string               `json:"history_summary"`
	ContextTimestamp      time.Time            `json:"context_timestamp"`
}

// Process classification produced by the detection agent.
const (
	ProcessTypeNew      = "new"
	ProcessTypeExisting = "existing"
	ProcessTypeUnclear  = "unclear"
)

// ProcessDetectionResult says whether an utterance describes a business
// process at all, and how sure the model is.
type ProcessDetectionResult struct {
	IsMentioned      bool    `json:"is_mentioned"`
	Confidence       float64 `json:"confidence"`
	ProcessType      string  `json:"process_type"`
	MatchedProcessID string  `json:"matched_process_id,omitempty"`
	Reasoning        string  `json:"reasoning"`
}

// Reporter identifies the employee whose interview first referenced a process.
type Reporter struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

// ProcessMatchResult compares an utterance against the known process list.
// ReportedBy is populated only when IsMatch is true.
type ProcessMatchResult struct {
	IsMatch          bool      `json:"is_match"`
	MatchedProcessID string    `json:"matched_process_id,omitempty"`
	Confidence       float64   `json:"confidence"`
	Reasoning        string    `json:"reasoning"`
	ReportedBy       *Reporter `json:"reported_by,omitempty"`
}

// ProcessReference is an append-only log row: one per detected mention per
// interview. (interview_id, process_id) is unique regardless of how many
// turns mention the same process.
type ProcessReference struct {
	ID           int64     `json:"id"`
	InterviewID  string    `json:"interview_id"`
	ProcessID    string    `json:"process_id"`
	IsNewProcess bool      `json:"is_new_process"`
	Confidence   float64   `json:"confidence"`
	MentionedAt  time.Time `json:"mentioned_at"`
}

// FinishReason explains why an interview ended.
type FinishReason string

const (
	FinishUserRequested FinishReason = "user_requested"
	FinishAgentSignaled FinishReason = "agent_signaled"
	FinishSafetyLimit   FinishReason = "safety_limit"
)

// CompletionDecision is derived per turn and never persisted.
type CompletionDecision struct {
	Finished bool
	Reason   FinishReason
}

func Continue() CompletionDecision {
	return CompletionDecision{}
}

func Finish(reason FinishReason) CompletionDecision {
	return CompletionDecision{Finished: true, Reason: reason}
}

// CompletedEvent is the payload published on interview completion.
type CompletedEvent struct {
	InterviewID    string `json:"interview_id"`
	OrganizationID string `json:"organization_id"`
	EmployeeID     string `json:"employee_id"`
	Credential     string `json:"credential"`
	Language       string `json:"language"`
}

// ExtractedProcess is one process pulled out of a full transcript by the
// extraction worker.
type ExtractedProcess struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	Roles       []string `json:"roles"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
}

// NewProcess is the creation payload sent to the organization directory.
type NewProcess struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Steps          []string `json:"steps"`
	Roles          []string `json:"roles"`
	Inputs         []string `json:"inputs"`
	Outputs        []string `json:"outputs"`
	OrganizationID string   `json:"organization_id"`
}

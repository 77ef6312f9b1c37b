package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/relevohq/relevo/internal/core"
	"github.com/relevohq/relevo/internal/service/detection"
	"github.com/relevohq/relevo/pkg/log"
	"golang.org/x/sync/errgroup"
)

// Detector runs semantic process detection and matching for one utterance.
type Detector interface {
	DetectAndMatch(ctx context.Context, utterance, language string, ictx core.InterviewContextData) (core.ProcessDetectionResult, *core.ProcessMatchResult)
}

// Completion decides per turn whether the interview should end.
type Completion interface {
	ShouldFinish(turnNumber int, userText, agentText, language string) core.CompletionDecision
}

// ContextProvider assembles the interview context for an employee.
type ContextProvider interface {
	GetFullInterviewContext(ctx context.Context, employeeID string) core.InterviewContextData
}

// InterviewsStore is the persistence surface the orchestrator needs. It is
// the repository interface plus the per-turn counter.
type InterviewsStore interface {
	CreateInterview(ctx context.Context, iv core.Interview) error
	GetInterview(ctx context.Context, id string) (core.Interview, error)
	CompleteInterview(ctx context.Context, id string, reason core.FinishReason) error
	IncrementTurns(ctx context.Context, id string) error
}

// Service orchestrates one interview turn end to end: persist the user's
// utterance, run detection concurrently with next-question generation, append
// process references, and evaluate completion. Detection never delays the
// next question beyond its own deadline, and nothing on the detection path
// can fail the turn.
type Service struct {
	llm             core.LLMProvider
	detector        Detector
	completion      Completion
	contexts        ContextProvider
	interviews      InterviewsStore
	messages        core.MessagesRepository
	refs            core.ReferencesRepository
	bus             core.EventPublisher
	defaultLanguage string
}

func NewService(
	llm core.LLMProvider,
	detector Detector,
	completion Completion,
	contexts ContextProvider,
	interviews InterviewsStore,
	messages core.MessagesRepository,
	refs core.ReferencesRepository,
	bus core.EventPublisher,
	defaultLanguage string,
) *Service {
	if defaultLanguage == "" {
		defaultLanguage = "es"
	}
	return &Service{
		llm:             llm,
		detector:        detector,
		completion:      completion,
		contexts:        contexts,
		interviews:      interviews,
		messages:        messages,
		refs:            refs,
		bus:             bus,
		defaultLanguage: defaultLanguage,
	}
}

// TurnResult is everything one turn produced.
type TurnResult struct {
	AgentText string
	Detection core.ProcessDetectionResult
	Match     *core.ProcessMatchResult
	Decision  core.CompletionDecision
}

// StartInterview creates the interview record and generates the opening
// question from the enriched context.
func (s *Service) StartInterview(ctx context.Context, employeeID, organizationID, language string) (core.Interview, string, error) {
	if language == "" {
		language = s.defaultLanguage
	}
	iv := core.Interview{
		ID:             uuid.NewString(),
		EmployeeID:     employeeID,
		OrganizationID: organizationID,
		Language:       language,
		StartedAt:      time.Now().UTC(),
	}
	if err := s.interviews.CreateInterview(ctx, iv); err != nil {
		return core.Interview{}, "", fmt.Errorf("create interview: %w", err)
	}

	ictx := s.contexts.GetFullInterviewContext(ctx, employeeID)
	opening, err := s.llm.Complete(ctx, openingPrompt(ictx, language))
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).
			Str("interview_id", iv.ID).
			Msg("opening question generation failed, using fallback")
		opening = fallbackQuestion(language)
	}

	if err := s.messages.AddMessage(ctx, iv.ID, core.Message{Role: core.RoleAssistant, Content: opening}); err != nil {
		return core.Interview{}, "", fmt.Errorf("save opening question: %w", err)
	}
	return iv, opening, nil
}

// Enrich exposes the context aggregation step on its own.
func (s *Service) Enrich(ctx context.Context, employeeID string) core.InterviewContextData {
	return s.contexts.GetFullInterviewContext(ctx, employeeID)
}

// DetectAndMatch gates the semantic agent behind the lexical pre-filter.
// Utterances with no process markers never reach the model.
func (s *Service) DetectAndMatch(ctx context.Context, utterance, language string, ictx core.InterviewContextData) (core.ProcessDetectionResult, *core.ProcessMatchResult) {
	if !detection.MentionsPossibleProcess(utterance, language) {
		return core.ProcessDetectionResult{Reasoning: "no lexical process markers"}, nil
	}
	return s.detector.DetectAndMatch(ctx, utterance, language, ictx)
}

// ShouldFinish exposes the completion check on its own.
func (s *Service) ShouldFinish(turnNumber int, userText, agentText, language string) core.CompletionDecision {
	return s.completion.ShouldFinish(turnNumber, userText, agentText, language)
}

// ProcessTurn handles one user utterance. Detection and next-question
// generation start together and both are awaited; the merged result drives
// reference writes and the completion decision.
func (s *Service) ProcessTurn(ctx context.Context, interviewID, userText string) (TurnResult, error) {
	logger := log.FromCtx(ctx)

	iv, err := s.interviews.GetInterview(ctx, interviewID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load interview: %w", err)
	}
	if iv.CompletedAt != nil {
		return TurnResult{}, fmt.Errorf("%w: interview %s is already completed", core.ErrInvalid, interviewID)
	}
	language := iv.Language
	if language == "" {
		language = s.defaultLanguage
	}

	if err := s.messages.AddMessage(ctx, interviewID, core.Message{Role: core.RoleUser, Content: userText}); err != nil {
		return TurnResult{}, fmt.Errorf("save user message: %w", err)
	}

	ictx := s.contexts.GetFullInterviewContext(ctx, iv.EmployeeID)

	history, err := s.messages.GetMessages(ctx, interviewID)
	if err != nil {
		logger.Warn().Err(err).Str("interview_id", interviewID).
			Msg("history fetch failed, prompting without it")
		history = nil
	}

	var (
		det       core.ProcessDetectionResult
		match     *core.ProcessMatchResult
		agentText string
	)

	// Neither branch returns an error: detection has its own fallback and a
	// failed generation degrades to the canned follow-up question.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		det, match = s.DetectAndMatch(gctx, userText, language, ictx)
		return nil
	})
	g.Go(func() error {
		text, err := s.llm.Complete(gctx, nextQuestionPrompt(ictx, history, userText, language))
		if err != nil {
			logger.Warn().Err(err).Str("interview_id", interviewID).
				Msg("question generation failed, using fallback")
			text = fallbackQuestion(language)
		}
		agentText = text
		return nil
	})
	_ = g.Wait()

	if match != nil && match.IsMatch && det.MatchedProcessID != "" {
		ref := core.ProcessReference{
			InterviewID: interviewID,
			ProcessID:   det.MatchedProcessID,
			Confidence:  match.Confidence,
			MentionedAt: time.Now().UTC(),
		}
		if err := s.refs.CreateReference(ctx, ref); err != nil {
			logger.Error().Err(err).
				Str("interview_id", interviewID).
				Str("process_id", det.MatchedProcessID).
				Msg("reference append failed")
		}
	}

	if err := s.interviews.IncrementTurns(ctx, interviewID); err != nil {
		logger.Warn().Err(err).Str("interview_id", interviewID).Msg("turn counter update failed")
	}
	turnNumber := iv.Turns + 1

	decision := s.completion.ShouldFinish(turnNumber, userText, agentText, language)
	if decision.Finished && decision.Reason != core.FinishAgentSignaled {
		// The generated follow-up is stale once the turn terminates for a
		// reason other than the agent's own closing.
		agentText = closingMessage(language)
	}

	if err := s.messages.AddMessage(ctx, interviewID, core.Message{Role: core.RoleAssistant, Content: agentText}); err != nil {
		return TurnResult{}, fmt.Errorf("save agent message: %w", err)
	}

	if decision.Finished {
		if err := s.finish(ctx, iv, decision.Reason, language); err != nil {
			return TurnResult{}, err
		}
	}

	return TurnResult{
		AgentText: agentText,
		Detection: det,
		Match:     match,
		Decision:  decision,
	}, nil
}

func (s *Service) finish(ctx context.Context, iv core.Interview, reason core.FinishReason, language string) error {
	if err := s.interviews.CompleteInterview(ctx, iv.ID, reason); err != nil {
		return fmt.Errorf("complete interview: %w", err)
	}

	ev := core.CompletedEvent{
		InterviewID:    iv.ID,
		OrganizationID: iv.OrganizationID,
		EmployeeID:     iv.EmployeeID,
		Credential:     uuid.NewString(),
		Language:       language,
	}
	if err := s.bus.PublishCompleted(ctx, ev); err != nil {
		// The transcript is persisted; extraction can be replayed manually.
		log.FromCtx(ctx).Error().Err(err).
			Str("interview_id", iv.ID).
			Msg("completed event publish failed, extraction must be triggered manually")
	}
	return nil
}

package detection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/relevohq/relevo/internal/config"
	"github.com/relevohq/relevo/internal/core"
	"github.com/relevohq/relevo/pkg/log"
	"github.com/rs/zerolog"
)

// Band labels for downstream behavior derived from match confidence.
const (
	BandConfirmed = "confirmed" // ask confirmation, do not re-elicit
	BandClarify   = "clarify"   // ask a clarifying question first
	BandNew       = "new"       // treat as a new process
)

// Agent runs semantic process detection and matching against the interview
// context. Its failure policy is biased toward over-detection: a false
// positive costs a clarifying question, a false negative loses a requirement
// permanently.
type Agent struct {
	llm        core.LLMProvider
	directory  core.Directory
	refs       core.ReferencesRepository
	interviews core.InterviewsRepository
	cfg        *config.DetectionConfig
}

func NewAgent(
	llm core.LLMProvider,
	directory core.Directory,
	refs core.ReferencesRepository,
	interviews core.InterviewsRepository,
	cfg *config.DetectionConfig,
) *Agent {
	return &Agent{
		llm:        llm,
		directory:  directory,
		refs:       refs,
		interviews: interviews,
		cfg:        cfg,
	}
}

// Band maps a match confidence to its downstream behavior.
func (a *Agent) Band(confidence float64) string {
	switch {
	case confidence >= a.cfg.MatchThreshold:
		return BandConfirmed
	case confidence >= a.cfg.NewThreshold:
		return BandClarify
	default:
		return BandNew
	}
}

// fallbackDetection is the terminal answer when the model cannot be reached
// or keeps answering garbage: assume the utterance is a process.
func fallbackDetection(reason string) core.ProcessDetectionResult {
	return core.ProcessDetectionResult{
		IsMentioned: true,
		Confidence:  0.5,
		ProcessType: core.ProcessTypeUnclear,
		Reasoning:   "fallback: " + reason,
	}
}

// DetectProcessMention asks the model whether the utterance describes a
// business process. Policy: first attempt at the base timeout, one retry at
// the short timeout, one simplified-prompt retry on unparseable output, then
// the assume-process fallback. Every outcome is audited.
func (a *Agent) DetectProcessMention(ctx context.Context, utterance, language string) core.ProcessDetectionResult {
	logger := log.FromCtx(ctx)
	started := time.Now()

	if !a.cfg.SemanticEnabled {
		result := core.ProcessDetectionResult{
			IsMentioned: MentionsPossibleProcess(utterance, language),
			Confidence:  0.5,
			ProcessType: core.ProcessTypeUnclear,
			Reasoning:   "keyword-only mode",
		}
		auditDetection(logger, "keyword_only", started, result.Confidence, false)
		return result
	}

	var result core.ProcessDetectionResult
	outcome, err := a.completeJSON(ctx, detectionPrompt(utterance), simplifiedDetectionPrompt(utterance), &result)
	if err != nil {
		fb := fallbackDetection(err.Error())
		auditDetection(logger, outcome, started, fb.Confidence, true)
		return fb
	}

	result.Confidence = clamp01(result.Confidence)
	result.ProcessType = normalizeProcessType(result.ProcessType)
	auditDetection(logger, outcome, started, result.Confidence, false)
	return result
}

// MatchProcess compares the utterance against the candidate list. An
// unreachable or unparseable model yields no-match: detection's
// assume-process fallback already keeps the mention alive, and inventing a
// match would misattribute it.
func (a *Agent) MatchProcess(ctx context.Context, utterance string, candidates []core.ProcessContextData) core.ProcessMatchResult {
	logger := log.FromCtx(ctx)
	started := time.Now()

	if len(candidates) == 0 {
		return core.ProcessMatchResult{Reasoning: "no known processes to compare against"}
	}

	var result core.ProcessMatchResult
	outcome, err := a.completeJSON(ctx, matchPrompt(utterance, candidates), simplifiedMatchPrompt(utterance, candidates), &result)
	if err != nil {
		auditMatch(logger, outcome, started, 0, true)
		return core.ProcessMatchResult{Reasoning: "matching unavailable: " + err.Error()}
	}

	result.Confidence = clamp01(result.Confidence)

	// Below the new-process threshold a claimed match is treated as new.
	if result.Confidence < a.cfg.NewThreshold {
		result.IsMatch = false
		result.MatchedProcessID = ""
	}
	if result.IsMatch && result.MatchedProcessID != "" {
		result.ReportedBy = a.resolveReporter(ctx, result.MatchedProcessID)
	}

	auditMatch(logger, outcome, started, result.Confidence, false)
	return result
}

// DetectAndMatch is the per-turn entry point: detection first, matching only
// when a mention is found and candidates exist.
func (a *Agent) DetectAndMatch(ctx context.Context, utterance, language string, ictx core.InterviewContextData) (core.ProcessDetectionResult, *core.ProcessMatchResult) {
	det := a.DetectProcessMention(ctx, utterance, language)
	if !det.IsMentioned {
		return det, nil
	}

	match := a.MatchProcess(ctx, utterance, ictx.OrganizationProcesses)
	if match.IsMatch {
		det.MatchedProcessID = match.MatchedProcessID
		switch a.Band(match.Confidence) {
		case BandConfirmed:
			det.ProcessType = core.ProcessTypeExisting
		case BandClarify:
			det.ProcessType = core.ProcessTypeUnclear
		}
	} else if det.ProcessType == core.ProcessTypeExisting {
		// Detection thought it knew the process but matching disagreed.
		det.ProcessType = core.ProcessTypeNew
	}
	return det, &match
}

// resolveReporter walks first-reference → interview → employee to find who
// originally described the process. Attribution is an enrichment: any failure
// along the chain means matching proceeds without it.
func (a *Agent) resolveReporter(ctx context.Context, processID string) *core.Reporter {
	logger := log.FromCtx(ctx)

	ref, err := a.refs.GetFirstReference(ctx, processID)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			logger.Warn().Err(err).Str("process_id", processID).Msg("attribution lookup failed")
		}
		return nil
	}

	iv, err := a.interviews.GetInterview(ctx, ref.InterviewID)
	if err != nil {
		logger.Warn().Err(err).Str("interview_id", ref.InterviewID).Msg("attribution interview lookup failed")
		return nil
	}

	emp, err := a.directory.GetEmployee(ctx, iv.EmployeeID)
	if err != nil {
		logger.Warn().Err(err).Str("employee_id", iv.EmployeeID).Msg("attribution employee lookup failed")
		return nil
	}

	reporter := &core.Reporter{EmployeeID: emp.ID, Name: emp.Name}
	if len(emp.Roles) > 0 {
		reporter.Role = emp.Roles[0].Name
	}
	return reporter
}

// completeJSON runs the shared timeout/retry/parse policy and unmarshals the
// model's answer into out. The returned outcome string feeds the audit trail.
func (a *Agent) completeJSON(ctx context.Context, prompt, simplified string, out any) (string, error) {
	raw, outcome, err := a.completeWithRetry(ctx, prompt)
	if err != nil {
		return outcome, err
	}

	if err := unmarshalLLMJSON(raw, out); err == nil {
		return outcome, nil
	}

	// One simplified-prompt retry for unparseable output.
	raw, err = a.completeOnce(ctx, simplified, a.cfg.RetryTimeout())
	if err != nil {
		return "invalid_then_timeout", fmt.Errorf("%w: simplified retry failed: %v", core.ErrUnavailable, err)
	}
	if err := unmarshalLLMJSON(raw, out); err != nil {
		return "invalid", fmt.Errorf("%w: %v", core.ErrInvalid, err)
	}
	return "invalid_then_success", nil
}

// completeWithRetry: full timeout first, then one short-timeout retry. The
// sum of the two deadlines stays under 2x the base timeout.
func (a *Agent) completeWithRetry(ctx context.Context, prompt string) (string, string, error) {
	raw, err := a.completeOnce(ctx, prompt, a.cfg.Timeout())
	if err == nil {
		return raw, "success", nil
	}
	if !a.cfg.RetryEnabled {
		return "", "timeout", fmt.Errorf("%w: %v", core.ErrUnavailable, err)
	}

	raw, err = a.completeOnce(ctx, prompt, a.cfg.RetryTimeout())
	if err != nil {
		return "", "timeout_retry", fmt.Errorf("%w: %v", core.ErrUnavailable, err)
	}
	return raw, "retry_success", nil
}

func (a *Agent) completeOnce(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.llm.Complete(ctx, prompt)
}

// unmarshalLLMJSON tolerates prose around the JSON object: it parses the
// outermost brace-delimited span.
func unmarshalLLMJSON(raw string, out any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in response")
	}
	return json.Unmarshal([]byte(raw[start:end+1]), out)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func normalizeProcessType(t string) string {
	switch t {
	case core.ProcessTypeNew, core.ProcessTypeExisting, core.ProcessTypeUnclear:
		return t
	default:
		return core.ProcessTypeUnclear
	}
}

func auditDetection(logger *zerolog.Logger, outcome string, started time.Time, confidence float64, fallback bool) {
	logger.Info().
		Str("stage", "detect").
		Str("outcome", outcome).
		Int64("latency_ms", time.Since(started).Milliseconds()).
		Float64("confidence", confidence).
		Bool("fallback", fallback).
		Msg("detection audit")
}

func auditMatch(logger *zerolog.Logger, outcome string, started time.Time, confidence float64, fallback bool) {
	logger.Info().
		Str("stage", "match").
		Str("outcome", outcome).
		Int64("latency_ms", time.Since(started).Milliseconds()).
		Float64("confidence", confidence).
		Bool("fallback", fallback).
		Msg("matching audit")
}

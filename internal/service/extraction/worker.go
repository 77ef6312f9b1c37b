package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/relevohq/relevo/internal/core"
	"github.com/relevohq/relevo/internal/events"
	"github.com/relevohq/relevo/pkg/log"
)

const defaultExtractionTimeout = 120 * time.Second

// Worker is the offline consumer of interview-completed events. It pulls the
// full transcript, asks the model once for every process mentioned, creates
// the new ones in the directory, and appends one reference row per process.
// Delivery is at-least-once: reference rows are idempotent by schema, and
// process creation is guarded by a natural-key check against the current
// directory list.
type Worker struct {
	bus         events.Bus
	llm         core.LLMProvider
	directory   core.Directory
	messages    core.MessagesRepository
	refs        core.ReferencesRepository
	timeout     time.Duration
	unsubscribe events.Unsubscribe
}

func NewWorker(
	bus events.Bus,
	llm core.LLMProvider,
	directory core.Directory,
	messages core.MessagesRepository,
	refs core.ReferencesRepository,
) *Worker {
	return &Worker{
		bus:       bus,
		llm:       llm,
		directory: directory,
		messages:  messages,
		refs:      refs,
		timeout:   defaultExtractionTimeout,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Msg("starting extraction worker")

	unsub, err := w.bus.SubscribeCompleted(ctx, func(ctx context.Context, ev core.CompletedEvent) {
		if err := w.ProcessInterview(ctx, ev); err != nil {
			// The transcript is retained indefinitely; a failed pass can be
			// redelivered or reprocessed manually.
			log.FromCtx(ctx).Error().Err(err).
				Str("interview_id", ev.InterviewID).
				Msg("extraction failed, awaiting redelivery")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	w.unsubscribe = unsub

	<-ctx.Done()
	return nil
}

func (w *Worker) Shutdown(ctx context.Context) error {
	if w.unsubscribe != nil {
		return w.unsubscribe()
	}
	return nil
}

// ProcessInterview runs one full extraction pass for a completed interview.
func (w *Worker) ProcessInterview(ctx context.Context, ev core.CompletedEvent) error {
	logger := log.FromCtx(ctx)
	started := time.Now()

	msgs, err := w.messages.GetMessages(ctx, ev.InterviewID)
	if err != nil {
		return fmt.Errorf("fetch transcript: %w", err)
	}
	if len(msgs) == 0 {
		logger.Warn().Str("interview_id", ev.InterviewID).Msg("empty transcript, nothing to extract")
		return nil
	}

	cctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	raw, err := w.llm.Complete(cctx, buildPrompt(msgs, ev.Language))
	if err != nil {
		return fmt.Errorf("%w: extraction completion: %v", core.ErrUnavailable, err)
	}

	extracted, err := parseExtracted(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalid, err)
	}

	// Current directory list drives the natural-key dedup. An unavailable
	// directory here aborts the pass; redelivery retries the whole thing.
	existing, err := w.directory.GetOrganizationProcesses(ctx, ev.OrganizationID, 0)
	if err != nil {
		return fmt.Errorf("fetch existing processes: %w", err)
	}
	byName := make(map[string]core.ProcessContextData, len(existing))
	for _, p := range existing {
		byName[normalizeName(p.Name)] = p
	}

	created := 0
	for _, ep := range extracted {
		if strings.TrimSpace(ep.Name) == "" {
			continue
		}

		processID := ""
		isNew := false
		if known, ok := byName[normalizeName(ep.Name)]; ok {
			processID = known.ID
		} else {
			proc, err := w.directory.CreateProcess(ctx, core.NewProcess{
				Name:           ep.Name,
				Description:    ep.Description,
				Steps:          ep.Steps,
				Roles:          ep.Roles,
				Inputs:         ep.Inputs,
				Outputs:        ep.Outputs,
				OrganizationID: ev.OrganizationID,
			})
			if err != nil {
				logger.Error().Err(err).Str("name", ep.Name).Msg("process creation failed, skipping")
				continue
			}
			processID = proc.ID
			isNew = true
			byName[normalizeName(ep.Name)] = proc
			created++
		}

		err := w.refs.CreateReference(ctx, core.ProcessReference{
			InterviewID:  ev.InterviewID,
			ProcessID:    processID,
			IsNewProcess: isNew,
			Confidence:   1.0,
			MentionedAt:  time.Now().UTC(),
		})
		if err != nil {
			logger.Error().Err(err).
				Str("process_id", processID).
				Msg("reference append failed")
		}
	}

	logger.Info().
		Str("interview_id", ev.InterviewID).
		Int("extracted", len(extracted)).
		Int("created", created).
		Dur("elapsed", time.Since(started)).
		Msg("extraction pass complete")
	return nil
}

func parseExtracted(raw string) ([]core.ExtractedProcess, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in extraction response")
	}
	var out []core.ExtractedProcess
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}
	return out, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

package completion

import (
	"testing"

	"github.com/relevohq/relevo/internal/core"
)

func TestShouldFinish(t *testing.T) {
	c := NewController(50)

	tests := []struct {
		name       string
		turnNumber int
		userText   string
		agentText  string
		language   string
		finished   bool
		reason     core.FinishReason
	}{
		{
			name:       "ordinary_turn_continues",
			turnNumber: 5,
			userText:   "yo apruebo las compras",
			agentText:  "¿Quién más participa en ese proceso?",
			language:   "es",
			finished:   false,
		},
		{
			name:       "user_requests_termination",
			turnNumber: 3,
			userText:   "la verdad quiero terminar, tengo una reunión",
			agentText:  "",
			language:   "es",
			finished:   true,
			reason:     core.FinishUserRequested,
		},
		{
			name:       "user_request_english",
			turnNumber: 8,
			userText:   "I think that's all I can tell you",
			agentText:  "",
			language:   "en",
			finished:   true,
			reason:     core.FinishUserRequested,
		},
		{
			name:       "agent_closing_signal",
			turnNumber: 12,
			userText:   "sí, exacto",
			agentText:  "Perfecto. Gracias por tu tiempo, hemos cubierto todos los temas.",
			language:   "es",
			finished:   true,
			reason:     core.FinishAgentSignaled,
		},
		{
			name:       "safety_limit_reached",
			turnNumber: 50,
			userText:   "todavía tengo mucho más que contar",
			agentText:  "¿Y luego?",
			language:   "es",
			finished:   true,
			reason:     core.FinishSafetyLimit,
		},
		{
			name:       "safety_limit_beats_user_text",
			turnNumber: 50,
			userText:   "quiero terminar",
			agentText:  "",
			language:   "es",
			finished:   true,
			reason:     core.FinishSafetyLimit,
		},
		{
			name:       "user_request_any_turn_below_limit",
			turnNumber: 1,
			userText:   "quiero terminar",
			agentText:  "",
			language:   "es",
			finished:   true,
			reason:     core.FinishUserRequested,
		},
		{
			name:       "user_beats_agent_signal",
			turnNumber: 10,
			userText:   "eso es todo",
			agentText:  "gracias por tu tiempo",
			language:   "es",
			finished:   true,
			reason:     core.FinishUserRequested,
		},
		{
			name:       "case_insensitive",
			turnNumber: 4,
			userText:   "QUIERO TERMINAR ya",
			agentText:  "",
			language:   "es",
			finished:   true,
			reason:     core.FinishUserRequested,
		},
		{
			name:       "unknown_language_scans_all_sets",
			turnNumber: 4,
			userText:   "quiero terminar",
			agentText:  "",
			language:   "pt",
			finished:   true,
			reason:     core.FinishUserRequested,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ShouldFinish(tt.turnNumber, tt.userText, tt.agentText, tt.language)
			if got.Finished != tt.finished {
				t.Fatalf("Finished = %v, want %v", got.Finished, tt.finished)
			}
			if tt.finished && got.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.reason)
			}
		})
	}
}

func TestNewController_DefaultLimit(t *testing.T) {
	c := NewController(0)

	got := c.ShouldFinish(50, "sigo hablando", "", "es")
	if !got.Finished || got.Reason != core.FinishSafetyLimit {
		t.Errorf("expected default safety limit of 50, got %+v", got)
	}

	got = c.ShouldFinish(49, "sigo hablando de mi trabajo", "¿y qué más haces?", "es")
	if got.Finished {
		t.Errorf("turn 49 should continue, got %+v", got)
	}
}

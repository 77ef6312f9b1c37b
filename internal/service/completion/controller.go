package completion

import (
	"strings"

	"github.com/relevohq/relevo/internal/core"
)

// Controller decides, per turn, whether the interview should end. There is
// no minimum-question floor: besides the user's explicit request and the
// hard safety limit, the agent's own generated text is the only signal.
type Controller struct {
	maxSafetyTurns int
}

func NewController(maxSafetyTurns int) *Controller {
	if maxSafetyTurns <= 0 {
		maxSafetyTurns = 50
	}
	return &Controller{maxSafetyTurns: maxSafetyTurns}
}

// ShouldFinish evaluates the termination signals in fixed priority order:
// safety limit, user request, agent closing signal.
func (c *Controller) ShouldFinish(turnNumber int, userText, agentText, language string) core.CompletionDecision {
	// The safety limit is unconditional; it cannot be talked past.
	if turnNumber >= c.maxSafetyTurns {
		return core.Finish(core.FinishSafetyLimit)
	}

	if containsPhrase(userText, language, userTerminationPhrases) {
		return core.Finish(core.FinishUserRequested)
	}

	if containsPhrase(agentText, language, agentClosingPhrases) {
		return core.Finish(core.FinishAgentSignaled)
	}

	return core.Continue()
}

func containsPhrase(text, language string, table map[string][]string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)

	phrases, ok := table[language]
	if !ok {
		for _, set := range table {
			for _, p := range set {
				if strings.Contains(lowered, p) {
					return true
				}
			}
		}
		return false
	}
	for _, p := range phrases {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

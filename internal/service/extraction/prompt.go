package extraction

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/relevohq/relevo/internal/core"
)

// maxTranscriptTokens bounds the one-shot transcript prompt. Long interviews
// lose their oldest turns first; the closing turns carry the densest process
// descriptions.
const maxTranscriptTokens = 12000

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

func countTokens(text string) int {
	tkOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tk = enc
		}
	})
	if tk == nil {
		// Rough 4-chars-per-token estimate when the encoder is unavailable.
		return len(text) / 4
	}
	return len(tk.Encode(text, nil, nil))
}

func buildPrompt(messages []core.Message, language string) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "AGENT"
		if m.Role == core.RoleUser {
			speaker = "EMPLOYEE"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, m.Content))
	}

	transcript := strings.Join(lines, "\n")
	for countTokens(transcript) > maxTranscriptTokens && len(lines) > 1 {
		lines = lines[1:]
		transcript = strings.Join(lines, "\n")
	}

	var b strings.Builder
	b.WriteString("You extract business processes from a workplace interview transcript. ")
	b.WriteString("Find ALL processes the employee described: named, repeatable activities with steps, inputs, outputs, and participating roles. ")
	fmt.Fprintf(&b, "The interview was conducted in language %q; answer field values in that language.\n\n", language)
	b.WriteString("Transcript:\n")
	b.WriteString(transcript)
	b.WriteString("\n\nAnswer with ONLY a JSON array, one object per process:\n")
	b.WriteString(`[{"name": "...", "description": "...", "steps": ["..."], "roles": ["..."], "inputs": ["..."], "outputs": ["..."]}]`)
	b.WriteString("\nAn empty array is a valid answer when no processes were described.")
	return b.String()
}

package detection

import (
	"fmt"
	"strings"

	"github.com/relevohq/relevo/internal/core"
)

func detectionPrompt(utterance string) string {
	var b strings.Builder
	b.WriteString("You analyze one utterance from a workplace interview and decide whether it describes a business process: ")
	b.WriteString("a named, repeatable activity with steps, inputs/outputs, decisions, or participating roles. ")
	b.WriteString("Tolerate typos, synonyms, and indirect phrasing.\n\n")
	b.WriteString("Utterance:\n")
	b.WriteString(utterance)
	b.WriteString("\n\nAnswer with ONLY a JSON object:\n")
	b.WriteString(`{"is_mentioned": bool, "confidence": float between 0 and 1, "process_type": "new"|"existing"|"unclear", "reasoning": "one sentence"}`)
	return b.String()
}

// simplifiedDetectionPrompt is the second chance after an unparseable answer:
// shorter instructions, same contract.
func simplifiedDetectionPrompt(utterance string) string {
	return fmt.Sprintf(
		"Does this describe a work process? %q\nReply only with JSON: {\"is_mentioned\": true/false, \"confidence\": 0.0-1.0, \"process_type\": \"new\"|\"existing\"|\"unclear\", \"reasoning\": \"...\"}",
		utterance,
	)
}

func matchPrompt(utterance string, candidates []core.ProcessContextData) string {
	var b strings.Builder
	b.WriteString("You compare one utterance against a list of known business processes and pick the best match, if any. ")
	b.WriteString("Two descriptions match when they refer to the same underlying activity, even with different wording.\n\n")
	b.WriteString("Known processes:\n")
	for _, p := range candidates {
		fmt.Fprintf(&b, "- id=%s name=%q type=%s\n", p.ID, p.Name, p.TypeLabel)
	}
	b.WriteString("\nUtterance:\n")
	b.WriteString(utterance)
	b.WriteString("\n\nAnswer with ONLY a JSON object:\n")
	b.WriteString(`{"is_match": bool, "matched_process_id": "id or empty", "confidence": float between 0 and 1, "reasoning": "one sentence"}`)
	return b.String()
}

func simplifiedMatchPrompt(utterance string, candidates []core.ProcessContextData) string {
	ids := make([]string, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, fmt.Sprintf("%s=%s", p.ID, p.Name))
	}
	return fmt.Sprintf(
		"Which of these processes does %q refer to, if any? Processes: %s\nReply only with JSON: {\"is_match\": true/false, \"matched_process_id\": \"...\", \"confidence\": 0.0-1.0, \"reasoning\": \"...\"}",
		utterance, strings.Join(ids, ", "),
	)
}

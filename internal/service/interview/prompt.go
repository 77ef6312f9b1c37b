package interview

import (
	"fmt"
	"strings"

	"github.com/relevohq/relevo/internal/core"
)

// maxHistoryLines bounds how much transcript the question prompt carries.
// Older turns matter less than the current thread of conversation.
const maxHistoryLines = 12

func openingPrompt(ictx core.InterviewContextData, language string) string {
	var b strings.Builder
	b.WriteString("You are a workplace interviewer mapping an employee's business processes. ")
	fmt.Fprintf(&b, "Speak language %q.\n\n", language)
	writeContext(&b, ictx)
	b.WriteString("\nOpen the interview: greet the employee by name and ask one warm question about their day-to-day responsibilities. Answer with the question only.")
	return b.String()
}

func nextQuestionPrompt(ictx core.InterviewContextData, history []core.Message, userText, language string) string {
	var b strings.Builder
	b.WriteString("You are a workplace interviewer mapping an employee's business processes. ")
	fmt.Fprintf(&b, "Speak language %q.\n\n", language)
	writeContext(&b, ictx)

	if len(history) > maxHistoryLines {
		history = history[len(history)-maxHistoryLines:]
	}
	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, m := range history {
			speaker := "AGENT"
			if m.Role == core.RoleUser {
				speaker = "EMPLOYEE"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, m.Content)
		}
	}

	fmt.Fprintf(&b, "\nThe employee just said: %q\n", userText)
	b.WriteString("Ask ONE follow-up question that uncovers steps, roles, inputs, or outputs of the activities they describe. Answer with the question only.")
	return b.String()
}

func writeContext(b *strings.Builder, ictx core.InterviewContextData) {
	fmt.Fprintf(b, "Employee: %s\n", ictx.Employee.Name)
	for _, role := range ictx.Employee.Roles {
		fmt.Fprintf(b, "Role: %s\n", role.Name)
	}
	if ictx.HistorySummary != "" {
		fmt.Fprintf(b, "History: %s\n", ictx.HistorySummary)
	}
	if len(ictx.OrganizationProcesses) > 0 {
		b.WriteString("Known processes in the organization:\n")
		for _, p := range ictx.OrganizationProcesses {
			fmt.Fprintf(b, "- %s\n", p.Name)
		}
	}
}

func fallbackQuestion(language string) string {
	if language == "en" {
		return "Could you tell me more about the activities you carry out in a typical week?"
	}
	return "¿Podrías contarme más sobre las actividades que realizas en una semana típica?"
}

func closingMessage(language string) string {
	if language == "en" {
		return "Understood, we'll stop here. Thank you for your time, everything you shared has been recorded."
	}
	return "Entendido, lo dejamos aquí. Gracias por tu tiempo, todo lo que compartiste quedó registrado."
}

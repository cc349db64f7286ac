package extractor

import (
	"strings"

	"leadqual_backend/internal/qualification/domain"
)

const systemPrompt = `You extract real-estate lead qualification facts from a conversation transcript.

Return a single JSON object with exactly this shape:
{
  "budget": string or null,
  "authority": string or null,
  "need": string or null,
  "timeline": string or null,
  "contact": {
    "full_name": string or null,
    "phone": string or null,
    "email": string or null
  }
}

Rules:
- Extract facts ONLY from messages authored by the lead. Assistant messages are context for interpreting the lead's replies, never a source of facts.
- A field is null unless the lead explicitly stated it in the transcript shown. Never guess, infer, or carry over a value the lead did not say.
- Preserve the lead's own wording for budget, authority, need, and timeline. Do not paraphrase amounts.
- If the lead restates a fact, return the restated value.
- Return only the JSON object, no commentary.`

// buildPrompt assembles the user prompt: known facts (so the model can focus
// on gaps), the optional organization rubric summary, and the transcript
// window with each line attributed to its author.
func buildPrompt(turns []domain.Turn, prior domain.FactRecord, rubricDescription string) string {
	var sb strings.Builder

	sb.WriteString("Known facts so far (null means not yet captured):\n")
	writeKnown(&sb, "budget", prior.Budget)
	writeKnown(&sb, "authority", prior.Authority)
	writeKnown(&sb, "need", prior.Need)
	writeKnown(&sb, "timeline", prior.Timeline)
	writeKnown(&sb, "contact.full_name", prior.Contact.FullName)
	writeKnown(&sb, "contact.phone", prior.Contact.Phone)
	writeKnown(&sb, "contact.email", prior.Contact.Email)

	if rubricDescription != "" {
		sb.WriteString("\nHow this organization qualifies leads:\n")
		sb.WriteString(rubricDescription)
		sb.WriteString("\n")
	}

	sb.WriteString("\nTranscript (most recent last):\n")
	for _, turn := range turns {
		switch turn.Sender {
		case domain.SenderUser:
			sb.WriteString("Lead: ")
		default:
			sb.WriteString("Assistant: ")
		}
		sb.WriteString(strings.TrimSpace(turn.Text))
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeKnown(sb *strings.Builder, field string, value *string) {
	sb.WriteString("- ")
	sb.WriteString(field)
	sb.WriteString(": ")
	if value == nil {
		sb.WriteString("null")
	} else {
		sb.WriteString(*value)
	}
	sb.WriteString("\n")
}

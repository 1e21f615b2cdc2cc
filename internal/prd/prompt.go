package prd

import (
	"strings"

	"github.com/explohq/chatprd/internal/llm"
)

// DefaultSystemPrompt replaces the conversation's system message when the
// client never sent one.
const DefaultSystemPrompt = "You are an expert Product Manager AI assistant designed to help users build Product Requirements Documents (PRDs)."

// DefaultSummary is returned when summarization fails and no prior summary
// exists in storage.
const DefaultSummary = "Previous conversation covered PRD planning and requirements."

// SectionNames is the fixed set of recognized PRD sections, in document order.
var SectionNames = []string{
	"executiveSummary",
	"problemStatement",
	"goals",
	"targetUsers",
	"userStories",
	"features",
	"technicalConsiderations",
	"successMetrics",
	"timeline",
	"outOfScope",
}

var sectionDescriptions = map[string]string{
	"executiveSummary":        "Brief overview of what we're building",
	"problemStatement":        "Problems being solved, pain points",
	"goals":                   "Objectives and success criteria",
	"targetUsers":             "User personas, segments, characteristics",
	"userStories":             `User journeys, use cases, "As a user" stories`,
	"features":                "Specific features and functionality",
	"technicalConsiderations": "Tech requirements, constraints, architecture",
	"successMetrics":          "KPIs, measurement criteria",
	"timeline":                "Milestones, deadlines, phases",
	"outOfScope":              "What we're NOT building",
}

// ConversationText renders the non-system messages as "ROLE: content" lines,
// in order. This is the shared merge input for extraction and summarization.
func ConversationText(messages []llm.Message) string {
	var lines []string
	for _, msg := range messages {
		if msg.Role == "system" {
			continue
		}
		lines = append(lines, strings.ToUpper(msg.Role)+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// BuildExtractionPrompt creates the section-merge instruction. existingJSON
// is the current sections document rendered as JSON, or a placeholder when
// no PRD exists yet.
func BuildExtractionPrompt(existingJSON, conversationText string) string {
	var b strings.Builder

	b.WriteString("You are updating an existing PRD with new information from a conversation.\n\n")
	b.WriteString("EXISTING PRD SECTIONS:\n")
	b.WriteString(existingJSON)
	b.WriteString("\n\nNEW CONVERSATION TO ANALYZE:\n")
	b.WriteString(conversationText)
	b.WriteString(`

INSTRUCTIONS:
1. Review the EXISTING PRD sections above
2. Analyze the NEW CONVERSATION for relevant information
3. For each PRD section below, intelligently merge new info with existing info:
   - If new info conflicts with existing, prioritize NEW information
   - If new info adds to existing, combine them intelligently
   - If no new info for a section, return the existing content unchanged
   - If neither exists, return null

PRD SECTIONS TO UPDATE:
`)
	for _, name := range SectionNames {
		b.WriteString("- " + name + ": " + sectionDescriptions[name] + "\n")
	}
	b.WriteString(`
Return ONLY valid JSON with the COMPLETE updated sections (not just changes):
{"sectionName": "complete updated content or existing content or null"}

JSON:`)

	return b.String()
}

// BuildMergeSummaryPrompt creates the cumulative-summary instruction used
// when a prior narrative summary exists.
func BuildMergeSummaryPrompt(existingSummary, conversationText string) string {
	return `You are updating a cumulative conversation summary with new information.

EXISTING SUMMARY:
` + existingSummary + `

NEW CONVERSATION SINCE LAST SUMMARY:
` + conversationText + `

INSTRUCTIONS:
1. Review the EXISTING SUMMARY above
2. Analyze the NEW CONVERSATION for additional relevant information
3. Create an UPDATED SUMMARY that intelligently merges both:
   - If new info conflicts with existing, prioritize NEW information
   - If new info adds to existing, incorporate it seamlessly
   - If new info repeats existing, don't duplicate
   - Maintain key decisions, requirements, and context from both
   - Keep the summary concise but comprehensive (max 1000 words)

Focus on:
- Key decisions and requirements discussed (old + new)
- User needs and problems identified (old + new)
- Features and functionality mentioned (old + new)
- Technical constraints or preferences (old + new)
- Business goals and success criteria (old + new)

Keep bullets short; preserve explicit numbers, dates, decisions.
UPDATED SUMMARY:`
}

// BuildInitialSummaryPrompt creates the first-summary instruction used when
// no prior narrative exists.
func BuildInitialSummaryPrompt(conversationText string) string {
	return `Summarize this conversation into key points for PRD context. Focus on:

- Key decisions and requirements discussed
- User needs and problems identified
- Features and functionality mentioned
- Technical constraints or preferences
- Business goals and success criteria

Keep it concise but comprehensive (max 1000 words).

Keep bullets short; preserve explicit numbers, dates, decisions.

CONVERSATION:
` + conversationText + `

SUMMARY:`
}

// BuildCompactedAssistantContent embeds the merged narrative into the single
// assistant message of the compacted conversation.
func BuildCompactedAssistantContent(summary string) string {
	return "**Previous Conversation Summary:**\n\n" + summary +
		"\n\n**Current PRD Status:** I have extracted and stored information from our previous discussion. Let's continue building your PRD!"
}

// stripCodeFence removes a leading/trailing Markdown code fence from an LLM
// response, tolerating a language tag on the opening fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && !strings.HasPrefix(s, "\n") {
		// Drop the language tag line ("json", "markdown", ...).
		if !strings.ContainsAny(s[:idx], "{}[]") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

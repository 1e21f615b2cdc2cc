package prd

import (
	"strings"

	"github.com/explohq/chatprd/internal/llm"
)

// EstimateTokens approximates the token count of a conversation by word
// count. It is a pure function: deterministic, no I/O, never fails, and
// returns 0 for an empty conversation.
func EstimateTokens(messages []llm.Message) int {
	total := 0
	for _, msg := range messages {
		total += len(strings.Fields(msg.Content))
	}
	return total
}

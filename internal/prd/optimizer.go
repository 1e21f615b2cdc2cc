package prd

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/explohq/chatprd/internal/llm"
	"github.com/explohq/chatprd/internal/metrics"
)

const summaryPreviewLen = 200

// Result is the outcome of one conversation optimization. It is a return
// value only; the compacted conversation is never persisted.
type Result struct {
	OptimizedConversation []llm.Message `json:"optimizedConversation"`
	OriginalMessages      int           `json:"originalMessages"`
	OptimizedMessages     int           `json:"optimizedMessages"`
	OriginalTokens        int           `json:"originalTokens"`
	OptimizedTokens       int           `json:"optimizedTokens"`
	TokenSavings          int           `json:"tokenSavings"`
	PRDDataExtracted      int           `json:"prdDataExtracted"`
	Summary               string        `json:"summary"`
}

// Optimizer runs the compaction pipeline: estimate tokens, merge structured
// sections, merge the narrative summary, and build the two-message
// replacement conversation. Sub-step failures are contained; only a too-short
// conversation aborts the whole operation.
type Optimizer struct {
	extractor  *Extractor
	summarizer *Summarizer
	docs       *DocumentStore
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

func NewOptimizer(extractor *Extractor, summarizer *Summarizer, docs *DocumentStore, log zerolog.Logger, m *metrics.Metrics) *Optimizer {
	return &Optimizer{
		extractor:  extractor,
		summarizer: summarizer,
		docs:       docs,
		log:        log.With().Str("component", "optimizer").Logger(),
		metrics:    m,
	}
}

// Optimize compacts the conversation. reportedTokens is the client's own
// count; the larger of it and the local estimate is trusted so savings are
// never under-reported.
func (o *Optimizer) Optimize(ctx context.Context, conversation []llm.Message, reportedTokens int) (*Result, error) {
	if len(conversation) <= 1 {
		return nil, ErrInvalidRequest
	}

	text := ConversationText(conversation)
	originalTokens := max(EstimateTokens(conversation), reportedTokens)

	o.log.Info().Int("messages", len(conversation)).Int("original_tokens", originalTokens).
		Int("reported_tokens", reportedTokens).Msg("optimizing conversation")

	sections := o.extractor.Extract(ctx, text)

	if err := o.docs.UpdateSections(sections, reportedTokens); err != nil {
		// Best-effort persistence: the summary and compaction still proceed.
		o.log.Warn().Str("kind", string(KindStorageUnavailable)).Err(err).Msg("could not persist PRD sections")
	}

	summary := o.summarizer.Summarize(ctx, text)

	systemMsg := llm.Message{Role: "system", Content: DefaultSystemPrompt}
	if conversation[0].Role == "system" {
		systemMsg = conversation[0]
	}

	optimized := []llm.Message{
		systemMsg,
		{Role: "assistant", Content: BuildCompactedAssistantContent(summary)},
	}

	optimizedTokens := EstimateTokens(optimized)
	savings := originalTokens - optimizedTokens
	o.metrics.RecordOptimization(savings)

	o.log.Info().Int("optimized_messages", len(optimized)).Int("optimized_tokens", optimizedTokens).
		Int("token_savings", savings).Int("sections_extracted", len(sections)).Msg("optimization complete")

	return &Result{
		OptimizedConversation: optimized,
		OriginalMessages:      len(conversation),
		OptimizedMessages:     len(optimized),
		OriginalTokens:        originalTokens,
		OptimizedTokens:       optimizedTokens,
		TokenSavings:          savings,
		PRDDataExtracted:      len(sections),
		Summary:               previewSummary(summary),
	}, nil
}

// previewSummary truncates the summary for reporting: first 200 characters
// plus an ellipsis when longer, the full text otherwise.
func previewSummary(summary string) string {
	runes := []rune(summary)
	if len(runes) <= summaryPreviewLen {
		return summary
	}
	return string(runes[:summaryPreviewLen]) + "..."
}

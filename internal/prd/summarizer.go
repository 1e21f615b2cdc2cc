package prd

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/explohq/chatprd/internal/blobstore"
	"github.com/explohq/chatprd/internal/llm"
)

const (
	summarizeTimeout     = 30 * time.Second
	summarizeMaxTokens   = 1024
	summarizeTemperature = 0.15
)

// Summarizer maintains the cumulative narrative summary: it re-merges the
// stored narrative with new conversation text on every call and persists the
// result under SummaryKey.
type Summarizer struct {
	llm   Completer
	store blobstore.Store
	model string
	log   zerolog.Logger
}

func NewSummarizer(completer Completer, store blobstore.Store, model string, log zerolog.Logger) *Summarizer {
	return &Summarizer{
		llm:   completer,
		store: store,
		model: model,
		log:   log.With().Str("component", "summarizer").Logger(),
	}
}

// Summarize returns the merged narrative for the given conversation text.
// It always returns a usable string: on any failure the prior summary comes
// back unchanged, or DefaultSummary when none exists yet.
func (s *Summarizer) Summarize(ctx context.Context, conversationText string) string {
	existing := s.loadExisting()

	var prompt string
	if strings.TrimSpace(existing) != "" {
		prompt = BuildMergeSummaryPrompt(existing, conversationText)
	} else {
		prompt = BuildInitialSummaryPrompt(conversationText)
	}

	ctx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	text, _, err := s.llm.Complete(ctx, "summarize", llm.CompletionRequest{
		Model:       s.model,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:   summarizeMaxTokens,
		Temperature: summarizeTemperature,
	})
	if err != nil {
		s.log.Warn().Str("kind", string(KindUpstreamUnavailable)).Err(err).Msg("summarization failed")
		if strings.TrimSpace(existing) != "" {
			return existing
		}
		return DefaultSummary
	}

	// Persistence is best-effort: a failed write loses the checkpoint, not
	// the response.
	if err := s.store.Write(SummaryKey, []byte(text), "text/plain"); err != nil {
		s.log.Warn().Str("kind", string(KindStorageUnavailable)).Err(err).Msg("could not save summary")
	}

	return text
}

func (s *Summarizer) loadExisting() string {
	data, ok, err := s.store.Read(SummaryKey)
	if err != nil {
		s.log.Warn().Str("kind", string(KindStorageUnavailable)).Err(err).Msg("could not load existing summary")
		return ""
	}
	if !ok {
		return ""
	}
	return string(data)
}

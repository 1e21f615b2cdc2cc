package prd

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/explohq/chatprd/internal/llm"
)

// Completer is the chat-completion collaborator of the PRD pipeline.
type Completer interface {
	Complete(ctx context.Context, op string, req llm.CompletionRequest) (string, llm.Usage, error)
}

const (
	extractTimeout     = 30 * time.Second
	extractMaxTokens   = 2048
	extractTemperature = 0.15
)

// Extractor asks the LLM to merge the stored PRD sections with new
// conversation text and returns the complete merged section set.
type Extractor struct {
	llm   Completer
	docs  *DocumentStore
	model string
	log   zerolog.Logger
}

func NewExtractor(completer Completer, docs *DocumentStore, model string, log zerolog.Logger) *Extractor {
	return &Extractor{
		llm:   completer,
		docs:  docs,
		model: model,
		log:   log.With().Str("component", "extractor").Logger(),
	}
}

// Extract returns the merged sections for the given conversation text. Any
// failure — upstream, timeout, or unparsable response — degrades to an empty
// map: no update this round, the caller proceeds regardless.
func (e *Extractor) Extract(ctx context.Context, conversationText string) map[string]string {
	existing := e.docs.Load().Sections

	existingJSON := "No existing PRD data"
	if len(existing) > 0 {
		if data, err := json.MarshalIndent(existing, "", "  "); err == nil {
			existingJSON = string(data)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	text, _, err := e.llm.Complete(ctx, "extract", llm.CompletionRequest{
		Model:       e.model,
		Messages:    []llm.Message{{Role: "user", Content: BuildExtractionPrompt(existingJSON, conversationText)}},
		MaxTokens:   extractMaxTokens,
		Temperature: extractTemperature,
	})
	if err != nil {
		e.log.Warn().Str("kind", string(KindUpstreamUnavailable)).Err(err).Msg("extraction failed")
		return map[string]string{}
	}

	// Responses may carry nulls for unknown sections; drop them along with
	// anything UpdateSections would refuse anyway.
	var raw map[string]*string
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
		e.log.Warn().Str("kind", string(KindMalformedUpstream)).Err(err).Msg("extraction returned unparsable JSON")
		return map[string]string{}
	}

	sections := make(map[string]string, len(raw))
	for name, content := range raw {
		if content == nil || !usableSection(*content) {
			continue
		}
		sections[name] = *content
	}

	e.log.Debug().Int("sections", len(sections)).Msg("extraction complete")
	return sections
}

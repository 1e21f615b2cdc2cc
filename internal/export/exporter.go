// Package export generates a complete PRD document from the accumulated
// sections, the narrative summary, and the recent conversation.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/explohq/chatprd/internal/blobstore"
	"github.com/explohq/chatprd/internal/llm"
	"github.com/explohq/chatprd/internal/prd"
)

// ErrNoConversation is returned when an export is requested without any
// conversation messages.
var ErrNoConversation = errors.New("no conversation provided")

const (
	exportTimeout     = 60 * time.Second
	exportMaxTokens   = 4096
	exportTemperature = 0.45
)

// Result describes the stored export artifacts. Artifacts live in the blob
// store; URL signing is the transport layer's concern, not ours.
type Result struct {
	FileName    string `json:"fileName"`
	MarkdownKey string `json:"markdownKey"`
	HTMLKey     string `json:"htmlKey"`
}

type Exporter struct {
	llm   prd.Completer
	store blobstore.Store
	docs  *prd.DocumentStore
	model string
	log   zerolog.Logger

	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

func NewExporter(completer prd.Completer, store blobstore.Store, docs *prd.DocumentStore, model string, log zerolog.Logger) *Exporter {
	return &Exporter{
		llm:      completer,
		store:    store,
		docs:     docs,
		model:    model,
		log:      log.With().Str("component", "export").Logger(),
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:   bluemonday.UGCPolicy(),
	}
}

// Export asks the LLM for a full PRD in Markdown, renders a sanitized HTML
// companion, and stores both under exports/. Unlike the optimize pipeline,
// export failures surface to the caller: there is no degraded document worth
// returning.
func (e *Exporter) Export(ctx context.Context, conversation []llm.Message) (*Result, error) {
	if len(conversation) == 0 {
		return nil, ErrNoConversation
	}

	prompt := e.buildPrompt(conversation)

	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	text, _, err := e.llm.Complete(ctx, "export", llm.CompletionRequest{
		Model:       e.model,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:   exportMaxTokens,
		Temperature: exportTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating PRD: %w", err)
	}

	markdown := stripMarkdownFence(text)

	var html bytes.Buffer
	if err := e.markdown.Convert([]byte(markdown), &html); err != nil {
		return nil, fmt.Errorf("rendering PRD: %w", err)
	}
	sanitized := e.policy.SanitizeBytes(html.Bytes())

	name := "PRD_" + uuid.NewString()
	result := &Result{
		FileName:    name + ".md",
		MarkdownKey: "exports/" + name + ".md",
		HTMLKey:     "exports/" + name + ".html",
	}

	if err := e.store.Write(result.MarkdownKey, []byte(markdown), "text/markdown"); err != nil {
		return nil, fmt.Errorf("storing PRD markdown: %w", err)
	}
	if err := e.store.Write(result.HTMLKey, sanitized, "text/html"); err != nil {
		return nil, fmt.Errorf("storing PRD html: %w", err)
	}

	e.log.Info().Str("file", result.FileName).Int("markdown_bytes", len(markdown)).
		Int("messages", len(conversation)).Msg("PRD exported")
	return result, nil
}

// buildPrompt assembles the accumulated PRD sections, the stored narrative
// summary, and the recent conversation into the generation instruction.
func (e *Exporter) buildPrompt(conversation []llm.Message) string {
	sections := e.docs.Load().Sections

	var summary string
	if data, ok, err := e.store.Read(prd.SummaryKey); err == nil && ok {
		summary = string(data)
	}

	recent := prd.ConversationText(conversation)

	var parts []string
	if len(sections) > 0 {
		if data, err := json.MarshalIndent(sections, "", "  "); err == nil {
			parts = append(parts, "ACCUMULATED PRD SECTIONS:\n"+string(data))
		}
	}
	if summary != "" {
		parts = append(parts, "CONVERSATION HISTORY SUMMARY:\n"+summary)
	}

	if len(parts) == 0 {
		// No accumulated state: generate from the conversation alone.
		return "CONVERSATION DATA:\n" + recent + "\n" + prdTemplate
	}

	if strings.TrimSpace(recent) != "" {
		parts = append(parts, "RECENT CONVERSATION (since last optimization):\n"+recent)
	} else {
		parts = append(parts, "RECENT CONVERSATION: No new messages since last optimization")
	}

	return strings.Join(parts, "\n\n") + `

INSTRUCTIONS: Generate a comprehensive PRD using all the accumulated data above as the foundation. The PRD sections contain specific structured information, while the conversation summary provides broader context. Incorporate any relevant insights from recent conversation. Prioritize structured PRD data but enhance with conversational context.
` + prdTemplate
}

// stripMarkdownFence removes a wrapping ```markdown / ``` fence when the
// model returns the document inside a code block.
func stripMarkdownFence(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```markdown", "```"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
			break
		}
	}
	return s
}

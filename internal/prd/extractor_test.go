package prd

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/explohq/chatprd/internal/blobstore"
	"github.com/explohq/chatprd/internal/llm"
)

func newTestExtractor(store blobstore.Store, fn completerFunc) *Extractor {
	return NewExtractor(fn, newTestDocs(store), "gpt-4.1-mini", zerolog.Nop())
}

func TestExtractParsesResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     map[string]string
	}{
		{
			name:     "plain JSON",
			response: `{"goals": "ship login", "features": "SSO"}`,
			want:     map[string]string{"goals": "ship login", "features": "SSO"},
		},
		{
			name:     "json fenced",
			response: "```json\n{\"goals\": \"ship login\"}\n```",
			want:     map[string]string{"goals": "ship login"},
		},
		{
			name:     "bare fence",
			response: "```\n{\"goals\": \"ship login\"}\n```",
			want:     map[string]string{"goals": "ship login"},
		},
		{
			name:     "null sections dropped",
			response: `{"goals": "ship login", "timeline": null, "outOfScope": "null", "features": ""}`,
			want:     map[string]string{"goals": "ship login"},
		},
		{
			name:     "all null",
			response: `{"goals": null}`,
			want:     map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExtractor(blobstore.NewMemory(), func(op string, req llm.CompletionRequest) (string, error) {
				return tt.response, nil
			})

			got := e.Extract(context.Background(), "USER: we need login")
			if len(got) != len(tt.want) {
				t.Fatalf("Extract() = %v, want %v", got, tt.want)
			}
			for name, content := range tt.want {
				if got[name] != content {
					t.Errorf("section %s = %q, want %q", name, got[name], content)
				}
			}
		})
	}
}

func TestExtractDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		fn   completerFunc
	}{
		{
			name: "upstream failure",
			fn: func(op string, req llm.CompletionRequest) (string, error) {
				return "", errors.New("connection refused")
			},
		},
		{
			name: "non-JSON response",
			fn: func(op string, req llm.CompletionRequest) (string, error) {
				return "I could not produce JSON, sorry!", nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExtractor(blobstore.NewMemory(), tt.fn)

			got := e.Extract(context.Background(), "USER: hello")
			if got == nil {
				t.Fatal("Extract() must return a non-nil map")
			}
			if len(got) != 0 {
				t.Errorf("Extract() = %v, want empty map", got)
			}
		})
	}
}

func TestExtractPromptEmbedsState(t *testing.T) {
	store := blobstore.NewMemory()
	docs := newTestDocs(store)
	if err := docs.UpdateSections(map[string]string{"goals": "previous goal"}, 1); err != nil {
		t.Fatalf("UpdateSections: %v", err)
	}

	var gotPrompt string
	e := newTestExtractor(store, func(op string, req llm.CompletionRequest) (string, error) {
		if op != "extract" {
			t.Errorf("op = %q, want extract", op)
		}
		gotPrompt = req.Messages[0].Content
		return "{}", nil
	})

	e.Extract(context.Background(), "USER: must support SSO")

	if !strings.Contains(gotPrompt, "previous goal") {
		t.Error("prompt should embed the existing sections")
	}
	if !strings.Contains(gotPrompt, "USER: must support SSO") {
		t.Error("prompt should embed the new conversation text")
	}
	for _, name := range SectionNames {
		if !strings.Contains(gotPrompt, name) {
			t.Errorf("prompt should list section %s", name)
		}
	}
}

func TestExtractPromptWithoutExistingData(t *testing.T) {
	var gotPrompt string
	e := newTestExtractor(blobstore.NewMemory(), func(op string, req llm.CompletionRequest) (string, error) {
		gotPrompt = req.Messages[0].Content
		return "{}", nil
	})

	e.Extract(context.Background(), "USER: hi")

	if !strings.Contains(gotPrompt, "No existing PRD data") {
		t.Error("prompt should state that no PRD exists yet")
	}
}

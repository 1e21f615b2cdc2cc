package prd

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/explohq/chatprd/internal/blobstore"
	"github.com/explohq/chatprd/internal/llm"
)

// completerFunc adapts a function to the Completer interface.
type completerFunc func(op string, req llm.CompletionRequest) (string, error)

func (f completerFunc) Complete(_ context.Context, op string, req llm.CompletionRequest) (string, llm.Usage, error) {
	text, err := f(op, req)
	return text, llm.Usage{}, err
}

func newTestDocs(store blobstore.Store) *DocumentStore {
	return NewDocumentStore(store, zerolog.Nop())
}

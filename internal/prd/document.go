package prd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/explohq/chatprd/internal/blobstore"
)

// Fixed blob keys for the two persisted documents.
const (
	DocumentKey = "prd_data/current_prd.json"
	SummaryKey  = "prd_data/conversation_summary.txt"
)

// Document is the versioned structured PRD persisted under DocumentKey.
type Document struct {
	LastUpdated time.Time         `json:"lastUpdated"`
	TotalTokens int               `json:"totalTokens"`
	Version     int               `json:"version"`
	Sections    map[string]string `json:"sections"`
}

// DocumentStore owns the structured-PRD read-modify-write cycle. It holds no
// in-process cache: every call re-fetches current state, and two concurrent
// updates race with last-write-wins semantics over the whole document.
type DocumentStore struct {
	store blobstore.Store
	log   zerolog.Logger
}

func NewDocumentStore(store blobstore.Store, log zerolog.Logger) *DocumentStore {
	return &DocumentStore{
		store: store,
		log:   log.With().Str("component", "prdstore").Logger(),
	}
}

// Load returns the current document. An absent or unreadable document is the
// empty default: this is the safe degradation for storage failures on reads.
func (d *DocumentStore) Load() Document {
	doc := Document{Sections: make(map[string]string)}

	data, ok, err := d.store.Read(DocumentKey)
	if err != nil {
		d.log.Warn().Str("kind", string(KindStorageUnavailable)).Err(err).Msg("could not load PRD document")
		return doc
	}
	if !ok {
		return doc
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		d.log.Warn().Err(err).Msg("stored PRD document is unreadable, starting fresh")
		return Document{Sections: make(map[string]string)}
	}
	if doc.Sections == nil {
		doc.Sections = make(map[string]string)
	}
	return doc
}

// UpdateSections merges newSections into the stored document and writes it
// back: version+1, each usable incoming section replaces its slot wholesale,
// everything else passes through untouched. Null-ish values (empty,
// whitespace, or the literal "null") never overwrite existing content.
func (d *DocumentStore) UpdateSections(newSections map[string]string, totalTokens int) error {
	doc := d.Load()

	doc.LastUpdated = time.Now().UTC()
	doc.TotalTokens = totalTokens
	doc.Version++

	updated := 0
	for name, content := range newSections {
		if !usableSection(content) {
			continue
		}
		doc.Sections[name] = content
		updated++
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling PRD document: %w", err)
	}

	if err := d.store.Write(DocumentKey, data, "application/json"); err != nil {
		return fmt.Errorf("writing PRD document: %w", err)
	}

	d.log.Info().Int("version", doc.Version).Int("updated_sections", updated).
		Int("total_sections", len(doc.Sections)).Msg("PRD document updated")
	return nil
}

// usableSection reports whether an extracted value should replace a section.
func usableSection(content string) bool {
	trimmed := strings.TrimSpace(content)
	return trimmed != "" && !strings.EqualFold(trimmed, "null")
}

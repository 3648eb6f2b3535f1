package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joestump/blockprompt/internal/block"
	"github.com/joestump/blockprompt/internal/registry"
)

// DocumentVersion is written to every exported document.
const DocumentVersion = "1.0"

// Document is the portable form of a session's prompt.
type Document struct {
	Blocks    []block.Instance `json:"blocks"`
	Template  string           `json:"template"`
	Model     string           `json:"model"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version"`
}

// Export returns the session's current block set as a document.
func (s *Session) Export() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Document{
		Blocks:    block.Clone(s.blocks),
		Template:  s.templateID,
		Model:     s.model,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Version:   DocumentVersion,
	}
}

// ParseDocument decodes and checks an exported document.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	if major, _, _ := strings.Cut(doc.Version, "."); major != "1" {
		return Document{}, fmt.Errorf("unsupported document version %q", doc.Version)
	}
	if doc.Blocks == nil {
		return Document{}, fmt.Errorf("document has no blocks")
	}
	for i, b := range doc.Blocks {
		if b.Type == "" || b.Label == "" {
			return Document{}, fmt.Errorf("document block %d: type and label are required", i)
		}
	}
	return doc, nil
}

// Import turns a document into a block set ready for LoadBlocks. Type,
// label, content and enabled state come from the document; display fields
// are refreshed from the registry. An unknown template id resolves to the
// default template id.
func Import(reg *registry.Registry, doc Document) (string, []block.Instance, error) {
	t, _ := reg.Resolve(doc.Template)
	blocks := make([]block.Instance, len(doc.Blocks))
	for i, b := range doc.Blocks {
		spec, err := reg.BlockSpec(b.Type)
		if err != nil {
			return "", nil, fmt.Errorf("document block %d: %w", i, err)
		}
		blocks[i] = block.Instance{
			Type:          b.Type,
			Label:         b.Label,
			Title:         spec.Title,
			Description:   spec.Description,
			Placeholder:   firstNonEmpty(b.Placeholder, spec.Placeholder),
			BestPractices: spec.BestPractices,
			Examples:      spec.Examples,
			Content:       b.Content,
			Enabled:       b.Enabled,
		}
	}
	return t.ID, block.Clone(blocks), nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

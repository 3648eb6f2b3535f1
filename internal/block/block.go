// Package block defines the editable block instances of a prompt and the
// assembler that turns them into the final prompt string.
package block

import (
	"strings"

	"github.com/joestump/blockprompt/internal/registry"
)

// ExamplesType is rendered with its content on the line after the label.
const ExamplesType = "examples"

// Instance is one block of a working prompt. Content and Enabled are
// independent: a disabled block keeps its content.
type Instance struct {
	Type          string   `json:"type"`
	Label         string   `json:"label"`
	Title         string   `json:"title,omitempty"`
	Description   string   `json:"description,omitempty"`
	Placeholder   string   `json:"placeholder,omitempty"`
	BestPractices []string `json:"bestPractices,omitempty"`
	Examples      []string `json:"examples,omitempty"`
	Content       string   `json:"content"`
	Enabled       bool     `json:"enabled"`
}

// IsEmpty reports whether the block has no content worth keeping.
func (b Instance) IsEmpty() bool { return strings.TrimSpace(b.Content) == "" }

// FromTemplate clones t into a fresh working set. Blocks labelled
// "(Optional)" start disabled.
func FromTemplate(reg *registry.Registry, t registry.TemplateSpec) []Instance {
	out := make([]Instance, 0, len(t.Blocks))
	for _, rb := range reg.KnownBlocks(t) {
		out = append(out, fromResolved(rb, !strings.Contains(rb.Ref.Label, "(Optional)") && rb.Ref.Enabled))
	}
	return out
}

// Populate clones t with every block enabled and content taken from
// generated by block type, falling back to the template default.
func Populate(reg *registry.Registry, t registry.TemplateSpec, generated map[string]string) []Instance {
	out := make([]Instance, 0, len(t.Blocks))
	for _, rb := range reg.KnownBlocks(t) {
		b := fromResolved(rb, true)
		if c, ok := generated[b.Type]; ok && strings.TrimSpace(c) != "" {
			b.Content = c
		}
		out = append(out, b)
	}
	return out
}

func fromResolved(rb registry.ResolvedBlock, enabled bool) Instance {
	placeholder := rb.Ref.Placeholder
	if placeholder == "" {
		placeholder = rb.Spec.Placeholder
	}
	return Instance{
		Type:          rb.Ref.Type,
		Label:         rb.Ref.Label,
		Title:         rb.Spec.Title,
		Description:   rb.Spec.Description,
		Placeholder:   placeholder,
		BestPractices: rb.Spec.BestPractices,
		Examples:      rb.Spec.Examples,
		Content:       rb.Ref.Content,
		Enabled:       enabled,
	}
}

// Assemble renders the enabled blocks in order, separated by a blank line.
// It returns "" when no block is enabled.
func Assemble(blocks []Instance) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if !b.Enabled {
			continue
		}
		parts = append(parts, Render(b))
	}
	return strings.Join(parts, "\n\n")
}

// Render formats a single block as it appears in the assembled prompt.
func Render(b Instance) string {
	if b.Type == ExamplesType {
		return b.Label + ":\n" + b.Content
	}
	return b.Label + ": " + b.Content
}

// Clone returns a deep copy of blocks.
func Clone(blocks []Instance) []Instance {
	out := make([]Instance, len(blocks))
	for i, b := range blocks {
		b.BestPractices = append([]string(nil), b.BestPractices...)
		b.Examples = append([]string(nil), b.Examples...)
		out[i] = b
	}
	return out
}

// Equal reports whether a and b have the same type, label, content and
// enabled state per block, in the same order.
func Equal(a, b []Instance) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].Label != b[i].Label ||
			a[i].Content != b[i].Content || a[i].Enabled != b[i].Enabled {
			return false
		}
	}
	return true
}

// Package registry holds the static catalog of block specifications and the
// prompt templates built from them.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

var (
	// ErrTemplateNotFound is returned when a template id does not resolve.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrBlockNotFound is returned when a block type does not resolve.
	ErrBlockNotFound = errors.New("block type not found")
)

// DefaultTemplateID names the template used when no other can be chosen.
const DefaultTemplateID = "general"

// BlockSpec is the static guidance for one block type.
type BlockSpec struct {
	Type          string   `json:"type" yaml:"type"`
	Title         string   `json:"title" yaml:"title"`
	Description   string   `json:"description" yaml:"description"`
	BestPractices []string `json:"bestPractices" yaml:"best_practices"`
	Examples      []string `json:"examples" yaml:"examples"`
	Placeholder   string   `json:"placeholder" yaml:"placeholder"`
}

// BlockRef places a block type inside a template with template-specific
// label, default content and placeholder.
type BlockRef struct {
	Type        string `json:"type" yaml:"type"`
	Label       string `json:"label" yaml:"label"`
	Content     string `json:"content" yaml:"content"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
}

// TemplateSpec is a named, ordered set of blocks. Order defines the order of
// the assembled prompt.
type TemplateSpec struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Blocks      []BlockRef `json:"blocks" yaml:"blocks"`
}

// Registry is an immutable lookup over block specs and templates.
type Registry struct {
	specs     map[string]*BlockSpec
	templates []*TemplateSpec
	byID      map[string]*TemplateSpec
	defaultID string
}

// New validates specs and templates and builds a Registry. Every template
// block must resolve to a known spec and a template may not repeat a block
// type. defaultID falls back to the first template when it does not resolve.
func New(specs []BlockSpec, templates []TemplateSpec, defaultID string) (*Registry, error) {
	if len(templates) == 0 {
		return nil, errors.New("registry: at least one template is required")
	}

	r := &Registry{
		specs: make(map[string]*BlockSpec, len(specs)),
		byID:  make(map[string]*TemplateSpec, len(templates)),
	}
	for i := range specs {
		s := specs[i]
		if s.Type == "" {
			return nil, fmt.Errorf("registry: block spec %d has no type", i)
		}
		if _, dup := r.specs[s.Type]; dup {
			return nil, fmt.Errorf("registry: duplicate block type %q", s.Type)
		}
		r.specs[s.Type] = &s
	}

	for i := range templates {
		t := templates[i]
		if t.ID == "" {
			return nil, fmt.Errorf("registry: template %d has no id", i)
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate template id %q", t.ID)
		}
		seen := make(map[string]bool, len(t.Blocks))
		for _, b := range t.Blocks {
			if _, ok := r.specs[b.Type]; !ok {
				return nil, fmt.Errorf("registry: template %q: %w: %q", t.ID, ErrBlockNotFound, b.Type)
			}
			if seen[b.Type] {
				return nil, fmt.Errorf("registry: template %q repeats block type %q", t.ID, b.Type)
			}
			seen[b.Type] = true
		}
		t.Blocks = append([]BlockRef(nil), t.Blocks...)
		r.templates = append(r.templates, &t)
		r.byID[t.ID] = &t
	}

	r.defaultID = r.templates[0].ID
	if _, ok := r.byID[defaultID]; ok {
		r.defaultID = defaultID
	}
	return r, nil
}

// Templates returns all templates in registry order.
func (r *Registry) Templates() []TemplateSpec {
	out := make([]TemplateSpec, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t.clone())
	}
	return out
}

// Template returns the template with the given id, or ErrTemplateNotFound.
func (r *Registry) Template(id string) (TemplateSpec, error) {
	t, ok := r.byID[id]
	if !ok {
		return TemplateSpec{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	return t.clone(), nil
}

// BlockSpec returns the spec for a block type, or ErrBlockNotFound.
func (r *Registry) BlockSpec(blockType string) (BlockSpec, error) {
	s, ok := r.specs[blockType]
	if !ok {
		return BlockSpec{}, fmt.Errorf("%w: %q", ErrBlockNotFound, blockType)
	}
	return s.clone(), nil
}

// Has reports whether id names a registered template.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// DefaultID returns the id of the fallback template.
func (r *Registry) DefaultID() string { return r.defaultID }

// Default returns the fallback template.
func (r *Registry) Default() TemplateSpec { return r.byID[r.defaultID].clone() }

// Resolve returns the template for id, or the default template when id does
// not resolve. The second value reports whether the fallback was used.
func (r *Registry) Resolve(id string) (TemplateSpec, bool) {
	if t, ok := r.byID[id]; ok {
		return t.clone(), false
	}
	return r.Default(), true
}

// KnownBlocks returns the block refs of t whose type resolves to a spec,
// paired with that spec, in template order.
func (r *Registry) KnownBlocks(t TemplateSpec) []ResolvedBlock {
	out := make([]ResolvedBlock, 0, len(t.Blocks))
	for _, b := range t.Blocks {
		s, ok := r.specs[b.Type]
		if !ok {
			continue
		}
		out = append(out, ResolvedBlock{Ref: b, Spec: s.clone()})
	}
	return out
}

// ResolvedBlock is a template block joined with its spec.
type ResolvedBlock struct {
	Ref  BlockRef
	Spec BlockSpec
}

// Search fuzzy-matches query against template ids, names and descriptions.
// An empty query returns every template.
func (r *Registry) Search(query string) []TemplateSpec {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.Templates()
	}
	haystack := make([]string, len(r.templates))
	for i, t := range r.templates {
		haystack[i] = t.ID + " " + t.Name + " " + t.Description
	}
	matches := fuzzy.Find(query, haystack)
	out := make([]TemplateSpec, 0, len(matches))
	for _, m := range matches {
		out = append(out, r.templates[m.Index].clone())
	}
	return out
}

func (t *TemplateSpec) clone() TemplateSpec {
	c := *t
	c.Blocks = append([]BlockRef(nil), t.Blocks...)
	return c
}

func (s *BlockSpec) clone() BlockSpec {
	c := *s
	c.BestPractices = append([]string(nil), s.BestPractices...)
	c.Examples = append([]string(nil), s.Examples...)
	return c
}

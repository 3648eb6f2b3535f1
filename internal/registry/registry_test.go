package registry_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/joestump/blockprompt/internal/registry"
)

func TestBuiltin_Templates(t *testing.T) {
	r := registry.Builtin()

	want := []string{
		"general", "reasoning", "creative", "technical", "code-generation",
		"data-analysis", "email-drafting", "structured-reasoning", "summarization",
	}
	got := r.Templates()
	if len(got) != len(want) {
		t.Fatalf("len(templates) = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("templates[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestBuiltin_EveryBlockResolves(t *testing.T) {
	r := registry.Builtin()
	for _, tmpl := range r.Templates() {
		if len(r.KnownBlocks(tmpl)) != len(tmpl.Blocks) {
			t.Errorf("template %q has unresolved block types", tmpl.ID)
		}
	}
}

func TestRegistry_TemplateNotFound(t *testing.T) {
	r := registry.Builtin()
	_, err := r.Template("nope")
	if !errors.Is(err, registry.ErrTemplateNotFound) {
		t.Errorf("err = %v, want ErrTemplateNotFound", err)
	}
	_, err = r.BlockSpec("nope")
	if !errors.Is(err, registry.ErrBlockNotFound) {
		t.Errorf("err = %v, want ErrBlockNotFound", err)
	}
}

func TestRegistry_ResolveFallsBackToDefault(t *testing.T) {
	r := registry.Builtin()

	got, fellBack := r.Resolve("does-not-exist")
	if !fellBack {
		t.Error("expected fallback")
	}
	if got.ID != registry.DefaultTemplateID {
		t.Errorf("ID = %q, want %q", got.ID, registry.DefaultTemplateID)
	}

	got, fellBack = r.Resolve("creative")
	if fellBack || got.ID != "creative" {
		t.Errorf("Resolve(creative) = %q, %v", got.ID, fellBack)
	}
}

func TestRegistry_DefaultFallsBackToFirstTemplate(t *testing.T) {
	specs := []registry.BlockSpec{{Type: "task", Title: "Task Block"}}
	templates := []registry.TemplateSpec{
		{ID: "one", Blocks: []registry.BlockRef{{Type: "task", Label: "Task"}}},
		{ID: "two", Blocks: []registry.BlockRef{{Type: "task", Label: "Task"}}},
	}
	r, err := registry.New(specs, templates, "missing")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.DefaultID() != "one" {
		t.Errorf("DefaultID = %q, want %q", r.DefaultID(), "one")
	}
}

func TestNew_Rejects(t *testing.T) {
	specs := []registry.BlockSpec{{Type: "task"}, {Type: "format"}}
	tests := []struct {
		name      string
		specs     []registry.BlockSpec
		templates []registry.TemplateSpec
	}{
		{"no templates", specs, nil},
		{"unknown block type", specs, []registry.TemplateSpec{
			{ID: "a", Blocks: []registry.BlockRef{{Type: "persona"}}},
		}},
		{"duplicate block type", specs, []registry.TemplateSpec{
			{ID: "a", Blocks: []registry.BlockRef{{Type: "task"}, {Type: "task"}}},
		}},
		{"duplicate template id", specs, []registry.TemplateSpec{
			{ID: "a", Blocks: []registry.BlockRef{{Type: "task"}}},
			{ID: "a", Blocks: []registry.BlockRef{{Type: "format"}}},
		}},
		{"duplicate spec", append(specs, registry.BlockSpec{Type: "task"}), []registry.TemplateSpec{
			{ID: "a", Blocks: []registry.BlockRef{{Type: "task"}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := registry.New(tt.specs, tt.templates, ""); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRegistry_TemplateIsACopy(t *testing.T) {
	r := registry.Builtin()
	a, _ := r.Template("general")
	a.Blocks[0].Label = "mutated"

	b, _ := r.Template("general")
	if b.Blocks[0].Label == "mutated" {
		t.Error("mutating a returned template changed the registry")
	}
}

func TestRegistry_Search(t *testing.T) {
	r := registry.Builtin()

	got := r.Search("email")
	if len(got) == 0 {
		t.Fatal("expected at least one match")
	}
	if got[0].ID != "email-drafting" {
		t.Errorf("first match = %q, want %q", got[0].ID, "email-drafting")
	}

	if all := r.Search("  "); len(all) != len(r.Templates()) {
		t.Errorf("empty query returned %d templates, want all", len(all))
	}
}

func TestParse_Overlay(t *testing.T) {
	doc := `
default: release-notes
blocks:
  - type: changelog
    title: Changelog Block
    description: List the changes.
    best_practices: ["Group by area"]
    examples: ["- Fixed login"]
templates:
  - id: release-notes
    name: Release Notes
    description: Notes for a release
    blocks:
      - type: context
        label: Product
      - type: changelog
        label: Changes
        enabled: false
`
	r, err := registry.Parse([]byte(doc), "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.DefaultID() != "release-notes" {
		t.Errorf("DefaultID = %q, want release-notes", r.DefaultID())
	}
	tmpl, err := r.Template("release-notes")
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if !tmpl.Blocks[0].Enabled {
		t.Error("omitted enabled should default to true")
	}
	if tmpl.Blocks[1].Enabled {
		t.Error("explicit enabled: false was ignored")
	}
	spec, err := r.BlockSpec("changelog")
	if err != nil {
		t.Fatalf("BlockSpec: %v", err)
	}
	if len(spec.BestPractices) != 1 {
		t.Errorf("best practices = %v", spec.BestPractices)
	}
	if !r.Has("general") {
		t.Error("builtin templates should survive an overlay")
	}
}

func TestParse_RejectsUnknownBlock(t *testing.T) {
	doc := "templates:\n  - id: x\n    blocks:\n      - type: missing\n        label: M\n"
	_, err := registry.Parse([]byte(doc), "")
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Errorf("err = %v, want unknown block error", err)
	}
}

package generate_test

import (
	"strings"
	"testing"

	"github.com/joestump/blockprompt/internal/generate"
	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/schema"
)

func TestIsEnhancement(t *testing.T) {
	tests := []struct {
		name string
		req  schema.GenerationRequest
		want bool
	}{
		{"no content", schema.GenerationRequest{}, false},
		{"whitespace content", schema.GenerationRequest{ExistingContent: " \n\t"}, false},
		{"content", schema.GenerationRequest{ExistingContent: "draft"}, true},
		{"explicit create", schema.GenerationRequest{ExistingContent: "draft", Mode: schema.ModeCreate}, false},
		{"explicit enhance", schema.GenerationRequest{Mode: schema.ModeEnhance}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := generate.IsEnhancement(tt.req); got != tt.want {
				t.Errorf("IsEnhancement = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuilder_SingleBlock(t *testing.T) {
	reg := registry.Builtin()
	spec, _ := reg.BlockSpec("task")
	b := generate.NewBuilder()

	create, err := b.SingleBlock(spec, schema.GenerationRequest{UserPrompt: "summarize a paper"})
	if err != nil {
		t.Fatalf("SingleBlock: %v", err)
	}
	if create.Enhance {
		t.Error("create request built as enhancement")
	}
	for _, want := range []string{
		"Your task is to create content",
		"Block Purpose:\n" + spec.Description,
		"Best Practices for " + spec.Title + ":\n- " + spec.BestPractices[0],
		"Example Content:\n- " + spec.Examples[0],
		"- Create content that is immediately usable",
	} {
		if !strings.Contains(create.System, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if !strings.HasPrefix(create.System, "You are an AI assistant helping to generate high-quality content.") {
		t.Errorf("system prompt preamble = %q", strings.SplitN(create.System, "\n", 2)[0])
	}
	if !strings.Contains(create.User, "USER REQUEST:\nsummarize a paper") {
		t.Errorf("user prompt = %q", create.User)
	}

	enhance, err := b.SingleBlock(spec, schema.GenerationRequest{
		UserPrompt:      "make it shorter",
		ExistingContent: "Write a long summary.",
		SystemPrompt:    "You are terse.",
	})
	if err != nil {
		t.Fatalf("SingleBlock: %v", err)
	}
	if !enhance.Enhance {
		t.Error("enhancement not detected")
	}
	if !strings.HasPrefix(enhance.System, "You are terse.") {
		t.Error("system prompt override not applied")
	}
	if !strings.Contains(enhance.System, "- Maintain the original intent while improving quality") {
		t.Error("enhance guideline missing")
	}
	if !strings.Contains(enhance.User, "ORIGINAL CONTENT:\nWrite a long summary.") {
		t.Errorf("user prompt = %q", enhance.User)
	}
}

func TestBuilder_AllBlocksDeterministic(t *testing.T) {
	reg := registry.Builtin()
	tmpl, _ := reg.Template("reasoning")
	targets := reg.KnownBlocks(tmpl)
	b := generate.NewBuilder()

	first, err := b.AllBlocks(tmpl, targets, "plan a migration", "")
	if err != nil {
		t.Fatalf("AllBlocks: %v", err)
	}
	second, _ := b.AllBlocks(tmpl, targets, "plan a migration", "")
	if first != second {
		t.Error("AllBlocks output differs between identical calls")
	}

	for _, rb := range targets {
		line := "- " + rb.Ref.Label + " (" + rb.Ref.Type + "): " + rb.Spec.Description
		if !strings.Contains(first.System, line) {
			t.Errorf("system prompt missing target line %q", line)
		}
		if !strings.Contains(first.System, "Block: "+rb.Ref.Label+" ("+rb.Ref.Type+")") {
			t.Errorf("system prompt missing details for %s", rb.Ref.Type)
		}
	}
	if !strings.Contains(first.System, "Template Structure: "+tmpl.Name) {
		t.Error("template name missing")
	}
	if !strings.Contains(first.User, `generatedBlocks`) {
		t.Error("user prompt does not name the wrapper key")
	}
}

func TestBuilder_SelectTemplate(t *testing.T) {
	reg := registry.Builtin()
	p, err := generate.NewBuilder().SelectTemplate("write an email", reg.Templates())
	if err != nil {
		t.Fatalf("SelectTemplate: %v", err)
	}
	for _, tmpl := range reg.Templates() {
		if !strings.Contains(p.User, "- ID: "+tmpl.ID+", Name: "+tmpl.Name) {
			t.Errorf("selection prompt missing %s", tmpl.ID)
		}
	}
}

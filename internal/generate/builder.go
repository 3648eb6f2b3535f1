package generate

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/schema"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

const (
	defaultBlockPreamble = "You are an AI assistant helping to generate high-quality content."
	defaultAllPreamble   = "You are an expert AI assistant specialized in crafting high-quality, structured AI prompts."
)

// Prompts is the text sent to the provider for one call.
type Prompts struct {
	System  string
	User    string
	Enhance bool
}

// Builder renders provider prompts. Output depends only on its inputs.
type Builder struct {
	tmpl *template.Template
}

func NewBuilder() *Builder {
	funcs := template.FuncMap{"bullets": bullets}
	return &Builder{
		tmpl: template.Must(template.New("prompts").Funcs(funcs).ParseFS(promptFS, "prompts/*.tmpl")),
	}
}

// IsEnhancement reports whether req asks to improve existing content. An
// explicit mode wins; otherwise non-blank existing content means enhance.
func IsEnhancement(req schema.GenerationRequest) bool {
	switch req.Mode {
	case schema.ModeEnhance:
		return true
	case schema.ModeCreate:
		return false
	}
	return strings.TrimSpace(req.ExistingContent) != ""
}

type blockData struct {
	Preamble        string
	Enhance         bool
	Spec            registry.BlockSpec
	Goal            string
	ExistingContent string
}

// SingleBlock builds the prompts for creating or enhancing one block.
func (b *Builder) SingleBlock(spec registry.BlockSpec, req schema.GenerationRequest) (Prompts, error) {
	data := blockData{
		Preamble:        preamble(req.SystemPrompt, defaultBlockPreamble),
		Enhance:         IsEnhancement(req),
		Spec:            spec,
		Goal:            req.UserPrompt,
		ExistingContent: req.ExistingContent,
	}
	system, err := b.render("block_system.tmpl", data)
	if err != nil {
		return Prompts{}, err
	}
	user, err := b.render("block_user.tmpl", data)
	if err != nil {
		return Prompts{}, err
	}
	return Prompts{System: system, User: user, Enhance: data.Enhance}, nil
}

type allData struct {
	Preamble string
	Goal     string
	Template registry.TemplateSpec
	Targets  []registry.ResolvedBlock
}

// AllBlocks builds one set of prompts covering every target block of t.
func (b *Builder) AllBlocks(t registry.TemplateSpec, targets []registry.ResolvedBlock, goal, systemPrompt string) (Prompts, error) {
	data := allData{
		Preamble: preamble(systemPrompt, defaultAllPreamble),
		Goal:     goal,
		Template: t,
		Targets:  targets,
	}
	system, err := b.render("all_system.tmpl", data)
	if err != nil {
		return Prompts{}, err
	}
	user, err := b.render("all_user.tmpl", data)
	if err != nil {
		return Prompts{}, err
	}
	return Prompts{System: system, User: user}, nil
}

// SelectTemplate builds the prompts asking the provider to pick a template.
func (b *Builder) SelectTemplate(goal string, templates []registry.TemplateSpec) (Prompts, error) {
	data := struct {
		Goal      string
		Templates []registry.TemplateSpec
	}{goal, templates}
	system, err := b.render("select_system.tmpl", data)
	if err != nil {
		return Prompts{}, err
	}
	user, err := b.render("select_user.tmpl", data)
	if err != nil {
		return Prompts{}, err
	}
	return Prompts{System: system, User: user}, nil
}

func (b *Builder) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func preamble(override, fallback string) string {
	if s := strings.TrimSpace(override); s != "" {
		return s
	}
	return fallback
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

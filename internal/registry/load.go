package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// overlayFile is the on-disk shape of a registry overlay.
type overlayFile struct {
	Default   string            `yaml:"default"`
	Blocks    []BlockSpec       `yaml:"blocks"`
	Templates []overlayTemplate `yaml:"templates"`
}

type overlayTemplate struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Blocks      []overlayBlock `yaml:"blocks"`
}

// overlayBlock uses a pointer so an omitted "enabled" key means enabled.
type overlayBlock struct {
	Type        string `yaml:"type"`
	Label       string `yaml:"label"`
	Content     string `yaml:"content"`
	Placeholder string `yaml:"placeholder"`
	Enabled     *bool  `yaml:"enabled"`
}

// LoadFile reads a YAML overlay and merges it over the builtin registry.
// Block specs and templates with an existing key replace the builtin entry in
// place; new ones are appended. An empty path returns the builtin registry.
func LoadFile(path, defaultID string) (*Registry, error) {
	if path == "" {
		return New(builtinSpecs, builtinTemplates, defaultID)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	return Parse(data, defaultID)
}

// Parse merges a YAML overlay document over the builtin registry.
func Parse(data []byte, defaultID string) (*Registry, error) {
	var f overlayFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode registry file: %w", err)
	}

	specs := BuiltinSpecs()
	for _, s := range f.Blocks {
		specs = upsertSpec(specs, s)
	}

	templates := BuiltinTemplates()
	for _, ot := range f.Templates {
		t := TemplateSpec{ID: ot.ID, Name: ot.Name, Description: ot.Description}
		for _, ob := range ot.Blocks {
			enabled := true
			if ob.Enabled != nil {
				enabled = *ob.Enabled
			}
			t.Blocks = append(t.Blocks, BlockRef{
				Type:        ob.Type,
				Label:       ob.Label,
				Content:     ob.Content,
				Placeholder: ob.Placeholder,
				Enabled:     enabled,
			})
		}
		templates = upsertTemplate(templates, t)
	}

	if f.Default != "" {
		defaultID = f.Default
	}
	return New(specs, templates, defaultID)
}

func upsertSpec(specs []BlockSpec, s BlockSpec) []BlockSpec {
	for i := range specs {
		if specs[i].Type == s.Type {
			specs[i] = s
			return specs
		}
	}
	return append(specs, s)
}

func upsertTemplate(templates []TemplateSpec, t TemplateSpec) []TemplateSpec {
	for i := range templates {
		if templates[i].ID == t.ID {
			templates[i] = t
			return templates
		}
	}
	return append(templates, t)
}

package generate

import (
	"context"
	"errors"
	"log"

	"github.com/joestump/blockprompt/internal/llm"
	"github.com/joestump/blockprompt/internal/metrics"
	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/schema"
)

const selectionTemperature = 0.3

// Selector asks the provider which template best fits a goal.
type Selector struct {
	caller
	reg     *registry.Registry
	builder *Builder
}

// Select never fails: an unknown id, an invalid answer or no answer at all
// yields the registry's default template.
func (s *Selector) Select(ctx context.Context, goal, model string) registry.TemplateSpec {
	prompts, err := s.builder.SelectTemplate(goal, s.reg.Templates())
	if err != nil {
		log.Printf("generate: build selection prompt: %v", err)
		return s.fallback("build_error")
	}

	id, err := invoke(ctx, s.caller, metrics.ModeSelect, llm.Call{
		Model:       model,
		System:      prompts.System,
		Prompt:      prompts.User,
		Schema:      schema.TemplateSelectionJSONSchema,
		Temperature: selectionTemperature,
	}, schema.DecodeTemplateSelection)
	if err != nil {
		reason := "provider_error"
		var gerr *Error
		if errors.As(err, &gerr) && gerr.Outcome == OutcomeSchemaInvalid {
			reason = "invalid_response"
		}
		return s.fallback(reason)
	}

	t, err := s.reg.Template(id)
	if err != nil {
		log.Printf("generate: provider selected unknown template %q", id)
		return s.fallback("unknown_id")
	}
	return t
}

func (s *Selector) fallback(reason string) registry.TemplateSpec {
	metrics.TemplateFallbacksTotal.WithLabelValues(reason).Inc()
	t := s.reg.Default()
	log.Printf("generate: falling back to template %q (%s)", t.ID, reason)
	return t
}

// Package llm is the boundary to the language-model provider: given a system
// prompt, a user prompt and a response schema, a Provider returns the
// complete JSON document the model produced, or fails.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/joestump/blockprompt/internal/config"
)

// ErrEmptyResponse is returned when the provider answers without content.
var ErrEmptyResponse = errors.New("empty response from provider")

// Call is a single request to the provider.
type Call struct {
	Model       string
	System      string
	Prompt      string
	Schema      string // JSON Schema the response must satisfy
	Temperature float32
	MaxTokens   int
}

// Provider completes a Call and returns the full response body. Streaming
// providers buffer until the response is complete; partial output is never
// returned.
type Provider interface {
	Complete(ctx context.Context, call Call) ([]byte, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, call Call) ([]byte, error)

func (f ProviderFunc) Complete(ctx context.Context, call Call) ([]byte, error) {
	return f(ctx, call)
}

// ProviderError is a transport-level failure: the call did not yield a body.
type ProviderError struct {
	Provider   string
	StatusCode int // 0 when unknown
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// New creates a Provider based on the config. Returns nil when the provider
// is unset, meaning generation is disabled.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.LLM.Provider {
	case "":
		return nil, nil
	case "xai":
		return newOpenAIProvider("xai", cfg, defaultXAIBaseURL), nil
	case "openai", "openai-compatible":
		return newOpenAIProvider(cfg.LLM.Provider, cfg, ""), nil
	case "anthropic":
		return newAnthropicProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.LLM.Provider)
	}
}

// Model describes a selectable model.
type Model struct {
	Value       string   `json:"value"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Strengths   []string `json:"strengths"`
}

// Models returns the catalog offered to clients for model selection.
func Models() []Model {
	return []Model{
		{
			Value:       "grok-3-mini",
			Label:       "Grok 3 Mini",
			Description: "Fast and efficient for most prompt building",
			Strengths:   []string{"Speed", "Cost-effective", "General purpose"},
		},
		{
			Value:       "grok-3-beta",
			Label:       "Grok 3",
			Description: "More capable model for complex prompts",
			Strengths:   []string{"Reasoning", "Nuance", "Long-form content"},
		},
	}
}

package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/joestump/blockprompt/internal/config"
	"github.com/liushuangls/go-anthropic/v2"
)

const defaultAnthropicModel = "claude-haiku-4-5-20251001"

type anthropicProvider struct {
	client      *anthropic.Client
	model       string
	maxTokens   int
	temperature float32
}

func newAnthropicProvider(cfg *config.Config) *anthropicProvider {
	model := cfg.LLM.DefaultModel
	if model == "" || strings.HasPrefix(model, "grok-") {
		model = defaultAnthropicModel
	}
	opts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(&http.Client{Timeout: cfg.LLM.Timeout}),
	}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimRight(cfg.LLM.BaseURL, "/")))
	}
	return &anthropicProvider{
		client:      anthropic.NewClient(cfg.LLM.APIKey, opts...),
		model:       model,
		maxTokens:   cfg.LLM.MaxTokens,
		temperature: cfg.LLM.Temperature,
	}
}

func (p *anthropicProvider) Complete(ctx context.Context, call Call) ([]byte, error) {
	model := p.model
	if call.Model != "" && !strings.HasPrefix(call.Model, "grok-") {
		model = call.Model
	}
	temperature := firstPositiveFloat(call.Temperature, p.temperature)

	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(model),
		System:      withSchema(call.System, call.Schema),
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(call.Prompt)},
		MaxTokens:   firstPositive(call.MaxTokens, p.maxTokens),
		Temperature: &temperature,
	})
	if err != nil {
		return nil, &ProviderError{Provider: "anthropic", Err: err}
	}

	body := extractJSON(resp.GetFirstContentText())
	if body == "" {
		return nil, &ProviderError{Provider: "anthropic", Err: ErrEmptyResponse}
	}
	return []byte(body), nil
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/joestump/blockprompt/internal/config"
	"github.com/sashabaranov/go-openai"
)

const (
	defaultXAIBaseURL  = "https://api.x.ai/v1"
	defaultOpenAIModel = "grok-3-mini"
)

// openaiProvider talks to any OpenAI-compatible chat completions API and
// streams the response, accumulating deltas until the stream ends.
type openaiProvider struct {
	name        string
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func newOpenAIProvider(name string, cfg *config.Config, defaultBaseURL string) *openaiProvider {
	model := cfg.LLM.DefaultModel
	if model == "" {
		model = defaultOpenAIModel
	}
	clientCfg := openai.DefaultConfig(cfg.LLM.APIKey)
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.LLM.Timeout}
	baseURL := cfg.LLM.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &openaiProvider{
		name:        name,
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   cfg.LLM.MaxTokens,
		temperature: cfg.LLM.Temperature,
	}
}

func (p *openaiProvider) Complete(ctx context.Context, call Call) ([]byte, error) {
	req := openai.ChatCompletionRequest{
		Model:       firstNonEmpty(call.Model, p.model),
		MaxTokens:   firstPositive(call.MaxTokens, p.maxTokens),
		Temperature: firstPositiveFloat(call.Temperature, p.temperature),
		Stream:      true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: withSchema(call.System, call.Schema)},
			{Role: openai.ChatMessageRoleUser, Content: call.Prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, p.wrap(err)
	}
	defer stream.Close()

	var buf strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, p.wrap(err)
		}
		if len(chunk.Choices) > 0 {
			buf.WriteString(chunk.Choices[0].Delta.Content)
		}
	}

	body := extractJSON(buf.String())
	if body == "" {
		return nil, &ProviderError{Provider: p.name, Err: ErrEmptyResponse}
	}
	return []byte(body), nil
}

func (p *openaiProvider) wrap(err error) error {
	pe := &ProviderError{Provider: p.name, Err: err}
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		pe.StatusCode = reqErr.HTTPStatusCode
	}
	return pe
}

// withSchema appends the response schema to the system prompt so providers
// without native schema support still see it.
func withSchema(system, schema string) string {
	if schema == "" {
		return system
	}
	return fmt.Sprintf("%s\n\nRespond with a single JSON object that satisfies this JSON Schema:\n%s", system, schema)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstPositive(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}

func firstPositiveFloat(a, b float32) float32 {
	if a > 0 {
		return a
	}
	return b
}

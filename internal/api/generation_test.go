package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/joestump/blockprompt/internal/api"
	"github.com/joestump/blockprompt/internal/llm"
	"github.com/joestump/blockprompt/internal/schema"
)

func TestBlockContent_OK(t *testing.T) {
	env := newTestEnv(t, fakeProvider(nil))
	rec := do(t, env, "POST", "/block-content", `{"blockType":"task","blockLabel":"Task","userPrompt":"write release notes"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var resp schema.BlockContent
	decode(t, rec, &resp)
	if resp.Content != "Generated task" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Metadata.BlockType != "task" || resp.Metadata.IsEnhancement {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
}

func TestBlockContent_EmptyGoal(t *testing.T) {
	env := newTestEnv(t, fakeProvider(nil))
	rec := do(t, env, "POST", "/block-content", `{"blockType":"task","blockLabel":"Task","userPrompt":""}`)
	resp := expectError(t, rec, http.StatusBadRequest, "invalid_request")
	details, ok := resp.Details.(map[string]any)
	if !ok {
		t.Fatalf("details = %#v, want field map", resp.Details)
	}
	if _, ok := details["userPrompt"]; !ok {
		t.Errorf("details = %v, want userPrompt entry", details)
	}
}

func TestBlockContent_MalformedBody(t *testing.T) {
	env := newTestEnv(t, fakeProvider(nil))
	rec := do(t, env, "POST", "/block-content", `{"blockType":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestBlockContent_UnknownBlockType(t *testing.T) {
	env := newTestEnv(t, fakeProvider(nil))
	rec := do(t, env, "POST", "/block-content", `{"blockType":"nope","blockLabel":"Nope","userPrompt":"x"}`)
	expectError(t, rec, http.StatusNotFound, "block_type_not_found")
}

func TestBlockContent_NoProvider(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := do(t, env, "POST", "/block-content", `{"blockType":"task","blockLabel":"Task","userPrompt":"x"}`)
	expectError(t, rec, http.StatusServiceUnavailable, "llm_not_configured")
}

func TestBlockContent_InvalidProviderResponse(t *testing.T) {
	provider := llm.ProviderFunc(func(ctx context.Context, call llm.Call) ([]byte, error) {
		return []byte(`{"content":"missing metadata"}`), nil
	})
	env := newTestEnv(t, provider)
	rec := do(t, env, "POST", "/block-content", `{"blockType":"task","blockLabel":"Task","userPrompt":"x"}`)
	expectError(t, rec, http.StatusBadGateway, "llm_invalid_response")
}

func TestBlockContent_ProviderError(t *testing.T) {
	env := newTestEnv(t, failingProvider(errors.New("connection refused")))
	rec := do(t, env, "POST", "/block-content", `{"blockType":"task","blockLabel":"Task","userPrompt":"x"}`)
	expectError(t, rec, http.StatusBadGateway, "llm_error")
}

func TestAllBlocks_OK(t *testing.T) {
	env := newTestEnv(t, fakeProvider(nil))
	rec := do(t, env, "POST", "/all-blocks", `{"templateId":"general","userPrompt":"plan a launch"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.AllBlocksResponse
	decode(t, rec, &resp)
	if resp.GeneratedBlocks["task"] != "Generated task" || resp.GeneratedBlocks["context"] != "Generated context" {
		t.Errorf("generatedBlocks = %v", resp.GeneratedBlocks)
	}
}

func TestAllBlocks_UnknownTemplate(t *testing.T) {
	env := newTestEnv(t, fakeProvider(nil))
	rec := do(t, env, "POST", "/all-blocks", `{"templateId":"missing","userPrompt":"x"}`)
	expectError(t, rec, http.StatusNotFound, "template_not_found")
}

func TestSimplePrompt_SelectsTemplate(t *testing.T) {
	env := newTestEnv(t, fakeProvider(nil))
	rec := do(t, env, "POST", "/simple-prompt", `{"simplePrompt":"why is the build slow","selectedModel":"grok-3-mini"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.QuickStartResponse
	decode(t, rec, &resp)
	if resp.TemplateID != "reasoning" {
		t.Errorf("templateId = %q, want reasoning", resp.TemplateID)
	}
	if len(resp.Blocks) != 4 || resp.Blocks[0].Content != "Generated context" {
		t.Errorf("blocks = %+v", resp.Blocks)
	}
}

func TestSimplePrompt_ProviderDownUsesDefault(t *testing.T) {
	env := newTestEnv(t, failingProvider(errors.New("down")))
	rec := do(t, env, "POST", "/simple-prompt", `{"simplePrompt":"anything","selectedModel":"grok-3-mini"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.QuickStartResponse
	decode(t, rec, &resp)
	if resp.TemplateID != "general" {
		t.Errorf("templateId = %q, want general", resp.TemplateID)
	}
}

func TestSimplePrompt_MissingModel(t *testing.T) {
	env := newTestEnv(t, fakeProvider(nil))
	rec := do(t, env, "POST", "/simple-prompt", `{"simplePrompt":"x"}`)
	expectError(t, rec, http.StatusBadRequest, "invalid_request")
}

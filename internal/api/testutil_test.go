package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/blockprompt/internal/api"
	"github.com/joestump/blockprompt/internal/generate"
	"github.com/joestump/blockprompt/internal/llm"
	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/schema"
	"github.com/joestump/blockprompt/internal/session"
	"github.com/joestump/blockprompt/internal/store"
	"github.com/joestump/blockprompt/internal/testutil"
)

const validBlock = `{"content":"Generated task","metadata":{"blockType":"task","isEnhancement":false,"timestamp":"2025-01-01T00:00:00Z","quality":0.8,"suggestions":[]}}`

// testEnv holds the router and the real stores behind it.
type testEnv struct {
	Router   http.Handler
	Registry *registry.Registry
	Sessions *session.Manager
	Prompts  *store.SavedPromptStore
	History  *store.HistoryStore
}

// newTestEnv wires the full API router over an in-memory SQLite database
// and the built-in registry. A nil provider leaves generation unconfigured.
func newTestEnv(t *testing.T, provider llm.Provider) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	reg := registry.Builtin()

	env := &testEnv{
		Registry: reg,
		Sessions: session.NewManager(),
		Prompts:  store.NewSavedPromptStore(db),
		History:  store.NewHistoryStore(db),
	}
	env.Router = api.NewAPIRouter(api.Deps{
		Registry:     reg,
		Orchestrator: generate.NewOrchestrator(reg, provider, generate.Options{}),
		Sessions:     env.Sessions,
		SavedPrompts: env.Prompts,
		History:      env.History,
		Workspace:    scs.New(),
		DefaultModel: "grok-3-mini",
	})
	return env
}

// fakeProvider answers each kind of call with a fixed valid body.
func fakeProvider(calls *atomic.Int32) llm.Provider {
	return llm.ProviderFunc(func(ctx context.Context, call llm.Call) ([]byte, error) {
		if calls != nil {
			calls.Add(1)
		}
		switch call.Schema {
		case schema.SingleBlockJSONSchema:
			return []byte(validBlock), nil
		case schema.AllBlocksJSONSchema:
			return []byte(`{"generatedBlocks":{"task":"Generated task","context":"Generated context"}}`), nil
		case schema.TemplateSelectionJSONSchema:
			return []byte(`{"templateId":"reasoning"}`), nil
		}
		return nil, errors.New("unexpected call")
	})
}

// failingProvider fails every call with err.
func failingProvider(err error) llm.Provider {
	return llm.ProviderFunc(func(ctx context.Context, call llm.Call) ([]byte, error) {
		return nil, err
	})
}

// do sends a request with an optional JSON body through the router.
func do(t *testing.T, env *testEnv, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a response body, failing the test on error.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v; body: %s", err, rec.Body.String())
	}
}

// expectError checks the status and error code of a failed request.
func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) api.ErrorResponse {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, status, rec.Body.String())
	}
	var resp api.ErrorResponse
	decode(t, rec, &resp)
	if resp.Code != code {
		t.Errorf("code = %q, want %q", resp.Code, code)
	}
	return resp
}

// createSession starts a session on templateID and returns its state.
func createSession(t *testing.T, env *testEnv, templateID string) api.SessionResponse {
	t.Helper()
	rec := do(t, env, "POST", "/sessions", `{"templateId":"`+templateID+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var resp api.SessionResponse
	decode(t, rec, &resp)
	return resp
}

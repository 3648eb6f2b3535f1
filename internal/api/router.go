package api

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/joestump/blockprompt/internal/generate"
	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/session"
	"github.com/joestump/blockprompt/internal/store"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Registry     *registry.Registry
	Orchestrator *generate.Orchestrator
	Sessions     *session.Manager
	SavedPrompts *store.SavedPromptStore
	History      *store.HistoryStore
	// Workspace binds a browser to its session via cookie. Nil disables
	// GET /workspace.
	Workspace    *scs.SessionManager
	DefaultModel string
}

// NewAPIRouter creates a chi sub-router for /api/v1.
func NewAPIRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(jsonContentType)

	registerGenerationRoutes(r, deps.Orchestrator)
	registerTemplateRoutes(r, deps.Registry)

	sessions := &sessionsAPIHandler{
		reg:          deps.Registry,
		orch:         deps.Orchestrator,
		sessions:     deps.Sessions,
		history:      deps.History,
		defaultModel: deps.DefaultModel,
	}
	registerSessionRoutes(r, sessions)
	if deps.Workspace != nil {
		ws := &workspaceAPIHandler{sm: deps.Workspace, sessions: sessions}
		r.With(deps.Workspace.LoadAndSave).Get("/workspace", ws.Get)
	}

	registerPromptRoutes(r, &promptsAPIHandler{
		reg:      deps.Registry,
		sessions: deps.Sessions,
		prompts:  deps.SavedPrompts,
	})
	registerHistoryRoutes(r, &historyAPIHandler{
		reg:      deps.Registry,
		sessions: deps.Sessions,
		history:  deps.History,
	})
	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Package handler assembles the root HTTP router.
package handler

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/joestump/blockprompt/docs/swagger"
	"github.com/joestump/blockprompt/internal/api"
	"github.com/joestump/blockprompt/internal/generate"
	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/session"
	"github.com/joestump/blockprompt/internal/store"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	Registry       *registry.Registry
	Orchestrator   *generate.Orchestrator
	Sessions       *session.Manager
	SavedPrompts   *store.SavedPromptStore
	History        *store.HistoryStore
	DefaultModel   string
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Standard middleware. The cookie session is loaded only on the routes
	// that need it; see api.NewAPIRouter.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", Healthz(deps.Orchestrator))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/docs/*", httpSwagger.WrapHandler)

	apiRouter := api.NewAPIRouter(api.Deps{
		Registry:     deps.Registry,
		Orchestrator: deps.Orchestrator,
		Sessions:     deps.Sessions,
		SavedPrompts: deps.SavedPrompts,
		History:      deps.History,
		Workspace:    deps.SessionManager,
		DefaultModel: deps.DefaultModel,
	})
	r.Mount("/api/v1", apiRouter)

	return r
}

// Healthz reports liveness and whether generation is available.
func Healthz(orch *generate.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if orch != nil && orch.Enabled() {
			w.Write([]byte(`{"status":"ok","llm":"configured"}`))
			return
		}
		w.Write([]byte(`{"status":"ok","llm":"disabled"}`))
	}
}

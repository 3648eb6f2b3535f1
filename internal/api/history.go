package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/session"
	"github.com/joestump/blockprompt/internal/store"
)

// historyAPIHandler serves the copied-prompt history.
type historyAPIHandler struct {
	reg      *registry.Registry
	sessions *session.Manager
	history  *store.HistoryStore
}

func registerHistoryRoutes(r chi.Router, h *historyAPIHandler) {
	r.Get("/history", h.List)
	r.Post("/history/{id}/load", h.Load)
}

// List returns the most recent history entries.
// GET /api/v1/history
//
// @Summary      List history
// @Tags         History
// @Produce      json
// @Param        limit  query     int  false  "Maximum entries (default 50)"
// @Success      200    {array}   store.HistoryEntry
// @Failure      400    {object}  ErrorResponse
// @Router       /history [get]
func (h *historyAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeErrorDetails(w, http.StatusBadRequest, "limit must be a non-negative integer", "invalid_request",
				map[string]string{"limit": "must be a non-negative integer"})
			return
		}
		limit = n
	}
	entries, err := h.history.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []*store.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Load restores a history entry's blocks into a session.
// POST /api/v1/history/{id}/load
//
// @Summary      Load history entry
// @Tags         History
// @Produce      json
// @Param        id       path      string  true  "History entry ID"
// @Param        session  query     string  true  "Session to load into"
// @Success      200      {object}  SessionResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /history/{id}/load [post]
func (h *historyAPIHandler) Load(w http.ResponseWriter, r *http.Request) {
	sess, ok := targetSession(w, r, h.sessions)
	if !ok {
		return
	}
	e, err := h.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	loadInto(w, h.reg, sess, e.TemplateID, e.Model, e.Blocks)
}

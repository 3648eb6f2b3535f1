package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/blockprompt/internal/block"
	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/session"
	"github.com/joestump/blockprompt/internal/store"
)

// promptsAPIHandler provides REST handlers for saved prompts.
type promptsAPIHandler struct {
	reg      *registry.Registry
	sessions *session.Manager
	prompts  *store.SavedPromptStore
}

func registerPromptRoutes(r chi.Router, h *promptsAPIHandler) {
	r.Get("/prompts", h.List)
	r.Post("/prompts", h.Create)
	r.Get("/prompts/{id}", h.Get)
	r.Put("/prompts/{id}", h.Update)
	r.Delete("/prompts/{id}", h.Delete)
	r.Post("/prompts/{id}/load", h.Load)
}

// input turns a save request into store input, reading the content from
// the named session when one is given.
func (h *promptsAPIHandler) input(w http.ResponseWriter, req SavePromptRequest) (store.SavedPromptInput, bool) {
	in := store.SavedPromptInput{
		Name:       req.Name,
		TemplateID: req.Template,
		Model:      req.Model,
		Blocks:     req.Blocks,
		Version:    session.DocumentVersion,
	}
	if req.SessionID != "" {
		sess, err := h.sessions.Get(req.SessionID)
		if err != nil {
			writeDomainError(w, err)
			return in, false
		}
		doc := sess.Export()
		in.TemplateID, in.Model, in.Blocks = doc.Template, doc.Model, doc.Blocks
		return in, true
	}
	if in.Blocks == nil {
		writeErrorDetails(w, http.StatusBadRequest, "blocks or sessionId is required", "invalid_request",
			map[string]string{"blocks": "is required when sessionId is empty"})
		return in, false
	}
	return in, true
}

// List returns all saved prompts.
// GET /api/v1/prompts
//
// @Summary      List saved prompts
// @Tags         Prompts
// @Produce      json
// @Success      200  {array}   store.SavedPrompt
// @Failure      500  {object}  ErrorResponse
// @Router       /prompts [get]
func (h *promptsAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	prompts, err := h.prompts.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if prompts == nil {
		prompts = []*store.SavedPrompt{}
	}
	writeJSON(w, http.StatusOK, prompts)
}

// Create saves a block set under a name.
// POST /api/v1/prompts
//
// @Summary      Save prompt
// @Description  Saves the blocks of sessionId, or the blocks in the body when sessionId is empty
// @Tags         Prompts
// @Accept       json
// @Produce      json
// @Param        request  body      SavePromptRequest  true  "Prompt"
// @Success      201      {object}  store.SavedPrompt
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /prompts [post]
func (h *promptsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SavePromptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, ok := h.input(w, req)
	if !ok {
		return
	}
	p, err := h.prompts.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Get returns one saved prompt.
// GET /api/v1/prompts/{id}
//
// @Summary      Get saved prompt
// @Tags         Prompts
// @Produce      json
// @Param        id   path      string  true  "Prompt ID"
// @Success      200  {object}  store.SavedPrompt
// @Failure      404  {object}  ErrorResponse
// @Router       /prompts/{id} [get]
func (h *promptsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.prompts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update overwrites a saved prompt.
// PUT /api/v1/prompts/{id}
//
// @Summary      Update saved prompt
// @Tags         Prompts
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Prompt ID"
// @Param        request  body      SavePromptRequest  true  "Prompt"
// @Success      200      {object}  store.SavedPrompt
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /prompts/{id} [put]
func (h *promptsAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req SavePromptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, ok := h.input(w, req)
	if !ok {
		return
	}
	p, err := h.prompts.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete removes a saved prompt.
// DELETE /api/v1/prompts/{id}
//
// @Summary      Delete saved prompt
// @Tags         Prompts
// @Param        id   path  string  true  "Prompt ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /prompts/{id} [delete]
func (h *promptsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.prompts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Load replaces a session's blocks with a saved prompt.
// POST /api/v1/prompts/{id}/load
//
// @Summary      Load saved prompt
// @Tags         Prompts
// @Produce      json
// @Param        id       path      string  true  "Prompt ID"
// @Param        session  query     string  true  "Session to load into"
// @Success      200      {object}  SessionResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /prompts/{id}/load [post]
func (h *promptsAPIHandler) Load(w http.ResponseWriter, r *http.Request) {
	sess, ok := targetSession(w, r, h.sessions)
	if !ok {
		return
	}
	p, err := h.prompts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	loadInto(w, h.reg, sess, p.TemplateID, p.Model, p.Blocks)
}

// targetSession resolves the required ?session= query parameter.
func targetSession(w http.ResponseWriter, r *http.Request, sessions *session.Manager) (*session.Session, bool) {
	id := r.URL.Query().Get("session")
	if id == "" {
		writeErrorDetails(w, http.StatusBadRequest, "session is required", "invalid_request",
			map[string]string{"session": "is required"})
		return nil, false
	}
	sess, err := sessions.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return sess, true
}

// loadInto replaces the session's blocks with a stored block set, refreshing
// display fields from the registry the same way an import does.
func loadInto(w http.ResponseWriter, reg *registry.Registry, sess *session.Session, templateID, model string, blocks []block.Instance) {
	resolvedID, refreshed, err := session.Import(reg, session.Document{
		Blocks:   blocks,
		Template: templateID,
		Version:  session.DocumentVersion,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if model != "" {
		sess.SetModel(model)
	}
	writeJSON(w, http.StatusOK, SessionResponse{State: sess.LoadBlocks(resolvedID, refreshed)})
}

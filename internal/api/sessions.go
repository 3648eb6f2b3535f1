package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/blockprompt/internal/block"
	"github.com/joestump/blockprompt/internal/generate"
	"github.com/joestump/blockprompt/internal/metrics"
	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/session"
	"github.com/joestump/blockprompt/internal/store"
)

// sessionsAPIHandler provides REST handlers for editing sessions.
type sessionsAPIHandler struct {
	reg          *registry.Registry
	orch         *generate.Orchestrator
	sessions     *session.Manager
	history      *store.HistoryStore
	defaultModel string
}

func registerSessionRoutes(r chi.Router, h *sessionsAPIHandler) {
	r.Post("/sessions", h.Create)
	r.Post("/sessions/import", h.Import)
	r.Get("/sessions/{id}", h.Get)
	r.Delete("/sessions/{id}", h.Delete)
	r.Put("/sessions/{id}/template", h.LoadTemplate)
	r.Put("/sessions/{id}/model", h.SetModel)
	r.Put("/sessions/{id}/blocks/{index}", h.UpdateBlock)
	r.Post("/sessions/{id}/blocks/{index}/toggle", h.ToggleBlock)
	r.Post("/sessions/{id}/blocks/{index}/generate", h.GenerateBlock)
	r.Post("/sessions/{id}/generate-empty", h.GenerateEmpty)
	r.Get("/sessions/{id}/prompt", h.Prompt)
	r.Post("/sessions/{id}/copy", h.Copy)
	r.Get("/sessions/{id}/export", h.Export)
	r.Get("/sessions/{id}/events", h.Events)
}

// create starts a session on templateID, falling back to the default
// template when it does not resolve.
func (h *sessionsAPIHandler) create(templateID, model string) (*session.Session, bool) {
	t, fellBack := h.reg.Resolve(templateID)
	if fellBack && templateID != "" {
		metrics.TemplateFallbacksTotal.WithLabelValues("unknown_id").Inc()
		log.Printf("api: unknown template %q, using %q", templateID, t.ID)
	}
	if model == "" {
		model = h.defaultModel
	}
	return h.sessions.Create(t.ID, model, block.FromTemplate(h.reg, t)), fellBack && templateID != ""
}

// lookup resolves the {id} path parameter, writing a 404 when it is unknown.
func (h *sessionsAPIHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return sess, true
}

func blockIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "block index must be an integer", "bad_request")
		return 0, false
	}
	return i, true
}

// Create starts a new editing session.
// POST /api/v1/sessions
//
// @Summary      Create session
// @Description  Starts a session on the given template. An unknown or missing template loads the default template.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSessionRequest  false  "Template and model"
// @Success      201      {object}  SessionResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /sessions [post]
func (h *sessionsAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	sess, fellBack := h.create(req.TemplateID, req.Model)
	writeJSON(w, http.StatusCreated, SessionResponse{State: sess.Snapshot(), FellBack: fellBack})
}

// Get returns a session's state.
// GET /api/v1/sessions/{id}
//
// @Summary      Get session
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  SessionResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id} [get]
func (h *sessionsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{State: sess.Snapshot()})
}

// Delete ends a session.
// DELETE /api/v1/sessions/{id}
//
// @Summary      Delete session
// @Tags         Sessions
// @Param        id   path  string  true  "Session ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id} [delete]
func (h *sessionsAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LoadTemplate replaces the session's blocks with a fresh copy of a template.
// PUT /api/v1/sessions/{id}/template
//
// @Summary      Load template
// @Description  Replaces the block set. In-flight generations for the old block set are discarded when they complete.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Session ID"
// @Param        request  body      LoadTemplateRequest  true  "Template"
// @Success      200      {object}  SessionResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /sessions/{id}/template [put]
func (h *sessionsAPIHandler) LoadTemplate(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req LoadTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, fellBack := h.reg.Resolve(req.TemplateID)
	if fellBack {
		metrics.TemplateFallbacksTotal.WithLabelValues("unknown_id").Inc()
		log.Printf("api: session %s: unknown template %q, using %q", sess.ID, req.TemplateID, t.ID)
	}
	writeJSON(w, http.StatusOK, SessionResponse{State: sess.LoadTemplate(h.reg, t), FellBack: fellBack})
}

// SetModel changes the model used for the session's generations.
// PUT /api/v1/sessions/{id}/model
//
// @Summary      Set model
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string           true  "Session ID"
// @Param        request  body      SetModelRequest  true  "Model"
// @Success      200      {object}  SessionResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /sessions/{id}/model [put]
func (h *sessionsAPIHandler) SetModel(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req SetModelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Model == "" {
		writeErrorDetails(w, http.StatusBadRequest, "model is required", "invalid_request",
			map[string]string{"model": "is required"})
		return
	}
	sess.SetModel(req.Model)
	writeJSON(w, http.StatusOK, SessionResponse{State: sess.Snapshot()})
}

// UpdateBlock replaces one block's content.
// PUT /api/v1/sessions/{id}/blocks/{index}
//
// @Summary      Edit block
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Session ID"
// @Param        index    path      int                 true  "Block index"
// @Param        request  body      UpdateBlockRequest  true  "New content"
// @Success      200      {object}  block.Instance
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Router       /sessions/{id}/blocks/{index} [put]
func (h *sessionsAPIHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	index, ok := blockIndex(w, r)
	if !ok {
		return
	}
	var req UpdateBlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == nil {
		writeErrorDetails(w, http.StatusBadRequest, "content is required", "invalid_request",
			map[string]string{"content": "is required"})
		return
	}
	b, err := sess.UpdateBlock(index, *req.Content)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ToggleBlock flips whether a block is included in the assembled prompt.
// POST /api/v1/sessions/{id}/blocks/{index}/toggle
//
// @Summary      Toggle block
// @Tags         Sessions
// @Produce      json
// @Param        id     path      string  true  "Session ID"
// @Param        index  path      int     true  "Block index"
// @Success      200    {object}  block.Instance
// @Failure      404    {object}  ErrorResponse
// @Router       /sessions/{id}/blocks/{index}/toggle [post]
func (h *sessionsAPIHandler) ToggleBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	index, ok := blockIndex(w, r)
	if !ok {
		return
	}
	b, err := sess.ToggleBlock(index)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Prompt returns the assembled prompt without recording it.
// GET /api/v1/sessions/{id}/prompt
//
// @Summary      Assembled prompt
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  PromptResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id}/prompt [get]
func (h *sessionsAPIHandler) Prompt(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PromptResponse{Prompt: sess.Prompt()})
}

// Copy returns the assembled prompt and records it in the history.
// POST /api/v1/sessions/{id}/copy
//
// @Summary      Copy prompt
// @Description  Returns the assembled prompt. Non-empty prompts are recorded in the history.
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  PromptResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id}/copy [post]
func (h *sessionsAPIHandler) Copy(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	blocks, _ := sess.Blocks()
	resp := PromptResponse{Prompt: block.Assemble(blocks)}
	if resp.Prompt != "" && h.history != nil {
		entry, err := h.history.Record(r.Context(), sess.ID, sess.TemplateID(), sess.Model(), resp.Prompt, blocks)
		if err != nil {
			log.Printf("api: session %s: record history: %v", sess.ID, err)
		} else {
			resp.HistoryID = entry.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Export downloads the session's blocks as a JSON document.
// GET /api/v1/sessions/{id}/export
//
// @Summary      Export blocks
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  session.Document
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id}/export [get]
func (h *sessionsAPIHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	doc := sess.Export()
	name := fmt.Sprintf("prompt-blocks-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	writeJSON(w, http.StatusOK, doc)
}

// Import loads an exported document, into ?session= when given or into a
// new session otherwise.
// POST /api/v1/sessions/import
//
// @Summary      Import blocks
// @Description  Loads an exported document. Display fields are refreshed from the registry.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        session   query     string            false  "Existing session to load into"
// @Param        document  body      session.Document  true   "Exported document"
// @Success      200       {object}  SessionResponse
// @Success      201       {object}  SessionResponse
// @Failure      400       {object}  ErrorResponse
// @Failure      404       {object}  ErrorResponse
// @Router       /sessions/import [post]
func (h *sessionsAPIHandler) Import(w http.ResponseWriter, r *http.Request) {
	var sess *session.Session
	if id := r.URL.Query().Get("session"); id != "" {
		var err error
		if sess, err = h.sessions.Get(id); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	doc, err := session.ParseDocument(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_document")
		return
	}
	templateID, blocks, err := session.Import(h.reg, doc)
	if err != nil {
		if errors.Is(err, registry.ErrBlockNotFound) {
			writeError(w, http.StatusBadRequest, err.Error(), "invalid_document")
			return
		}
		writeDomainError(w, err)
		return
	}

	if sess != nil {
		if doc.Model != "" {
			sess.SetModel(doc.Model)
		}
		writeJSON(w, http.StatusOK, SessionResponse{State: sess.LoadBlocks(templateID, blocks)})
		return
	}
	model := doc.Model
	if model == "" {
		model = h.defaultModel
	}
	sess = h.sessions.Create(templateID, model, blocks)
	writeJSON(w, http.StatusCreated, SessionResponse{State: sess.Snapshot()})
}

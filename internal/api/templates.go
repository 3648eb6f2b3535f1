package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/blockprompt/internal/llm"
	"github.com/joestump/blockprompt/internal/registry"
)

// templatesAPIHandler serves read-only registry lookups.
type templatesAPIHandler struct {
	reg *registry.Registry
}

func registerTemplateRoutes(r chi.Router, reg *registry.Registry) {
	h := &templatesAPIHandler{reg: reg}
	r.Get("/templates", h.List)
	r.Get("/templates/{id}", h.Get)
	r.Get("/blocks/{type}", h.BlockSpec)
	r.Get("/models", h.Models)
}

// List returns all templates in registry order, or those matching q.
// GET /api/v1/templates
//
// @Summary      List templates
// @Tags         Registry
// @Produce      json
// @Param        q    query     string  false  "Fuzzy search over id, name and description"
// @Success      200  {array}   registry.TemplateSpec
// @Router       /templates [get]
func (h *templatesAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); q != "" {
		writeJSON(w, http.StatusOK, h.reg.Search(q))
		return
	}
	writeJSON(w, http.StatusOK, h.reg.Templates())
}

// Get returns one template.
// GET /api/v1/templates/{id}
//
// @Summary      Get template
// @Tags         Registry
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  registry.TemplateSpec
// @Failure      404  {object}  ErrorResponse
// @Router       /templates/{id} [get]
func (h *templatesAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.reg.Template(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// BlockSpec returns the guidance for one block type.
// GET /api/v1/blocks/{type}
//
// @Summary      Get block spec
// @Tags         Registry
// @Produce      json
// @Param        type  path      string  true  "Block type"
// @Success      200   {object}  registry.BlockSpec
// @Failure      404   {object}  ErrorResponse
// @Router       /blocks/{type} [get]
func (h *templatesAPIHandler) BlockSpec(w http.ResponseWriter, r *http.Request) {
	spec, err := h.reg.BlockSpec(chi.URLParam(r, "type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

// Models returns the selectable models.
// GET /api/v1/models
//
// @Summary      List models
// @Tags         Registry
// @Produce      json
// @Success      200  {array}  llm.Model
// @Router       /models [get]
func (h *templatesAPIHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, llm.Models())
}

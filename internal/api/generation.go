package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/blockprompt/internal/generate"
	"github.com/joestump/blockprompt/internal/schema"
)

// generationAPIHandler serves the stateless generation endpoints.
type generationAPIHandler struct {
	orch *generate.Orchestrator
}

func registerGenerationRoutes(r chi.Router, orch *generate.Orchestrator) {
	h := &generationAPIHandler{orch: orch}
	r.Post("/block-content", h.BlockContent)
	r.Post("/all-blocks", h.AllBlocks)
	r.Post("/simple-prompt", h.SimplePrompt)
}

// BlockContent generates or enhances the content of a single block.
// POST /api/v1/block-content
//
// @Summary      Generate block content
// @Description  Creates content for one block, or enhances existingContent when it is not blank
// @Tags         Generation
// @Accept       json
// @Produce      json
// @Param        request  body      schema.GenerationRequest  true  "Block and goal"
// @Success      200      {object}  schema.BlockContent
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      502      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /block-content [post]
func (h *generationAPIHandler) BlockContent(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	req, err := schema.DecodeGenerationRequest(body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	content, err := h.orch.BlockContent(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// AllBlocks generates content for every block of a template in one call.
// POST /api/v1/all-blocks
//
// @Summary      Generate all blocks
// @Description  Generates content for every known block of the template, keyed by block type
// @Tags         Generation
// @Accept       json
// @Produce      json
// @Param        request  body      schema.AllBlocksRequest  true  "Template and goal"
// @Success      200      {object}  AllBlocksResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      502      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /all-blocks [post]
func (h *generationAPIHandler) AllBlocks(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	req, err := schema.DecodeAllBlocksRequest(body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	generated, err := h.orch.AllBlocks(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AllBlocksResponse{GeneratedBlocks: generated})
}

// SimplePrompt picks a template for a free-text goal and fills it.
// POST /api/v1/simple-prompt
//
// @Summary      Quick start
// @Description  Selects the best-fit template for the goal and returns it populated. Never fails on a bad template choice; the default template is used instead.
// @Tags         Generation
// @Accept       json
// @Produce      json
// @Param        request  body      schema.QuickStartRequest  true  "Goal and model"
// @Success      200      {object}  QuickStartResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /simple-prompt [post]
func (h *generationAPIHandler) SimplePrompt(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	req, err := schema.DecodeQuickStartRequest(body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	templateID, blocks, err := h.orch.QuickStart(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, QuickStartResponse{TemplateID: templateID, Blocks: blocks})
}

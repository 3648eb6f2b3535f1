package api

import (
	"net/http"

	"github.com/joestump/blockprompt/internal/generate"
	"github.com/joestump/blockprompt/internal/schema"
	"github.com/joestump/blockprompt/internal/session"
)

// GenerateBlock fills or enhances one block of a session.
// POST /api/v1/sessions/{id}/blocks/{index}/generate
//
// @Summary      Generate block
// @Description  Enhances the block when it has content, otherwise creates it. The block is pending and locked until the call completes.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Session ID"
// @Param        index    path      int                 true  "Block index"
// @Param        request  body      schema.GoalRequest  true  "Goal"
// @Success      200      {object}  GenerationResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Failure      502      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /sessions/{id}/blocks/{index}/generate [post]
func (h *sessionsAPIHandler) GenerateBlock(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	index, ok := blockIndex(w, r)
	if !ok {
		return
	}
	req, ok := decodeGoal(w, r)
	if !ok {
		return
	}
	res, err := h.orch.GenerateBlock(r.Context(), sess, index, req)
	writeGenerationResult(w, sess, res, err)
}

// GenerateEmpty fills every enabled, empty block of a session in one call.
// POST /api/v1/sessions/{id}/generate-empty
//
// @Summary      Generate empty blocks
// @Description  Generates content for all enabled blocks that have no content. Blocks with content are never touched.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Session ID"
// @Param        request  body      schema.GoalRequest  true  "Goal"
// @Success      200      {object}  GenerationResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      409      {object}  ErrorResponse
// @Failure      502      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /sessions/{id}/generate-empty [post]
func (h *sessionsAPIHandler) GenerateEmpty(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	req, ok := decodeGoal(w, r)
	if !ok {
		return
	}
	res, err := h.orch.GenerateEmpty(r.Context(), sess, req)
	writeGenerationResult(w, sess, res, err)
}

func decodeGoal(w http.ResponseWriter, r *http.Request) (schema.GoalRequest, bool) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return schema.GoalRequest{}, false
	}
	req, err := schema.DecodeGoalRequest(body)
	if err != nil {
		writeDomainError(w, err)
		return schema.GoalRequest{}, false
	}
	return req, true
}

func writeGenerationResult(w http.ResponseWriter, sess *session.Session, res generate.Result, err error) {
	switch {
	case err != nil:
		writeDomainError(w, err)
	case res.Failed():
		writeGenerationFailure(w, res.Outcome, res.Message)
	case res.Outcome == generate.OutcomeDiscarded:
		writeError(w, http.StatusConflict, "block set was replaced before the result arrived", "stale_generation")
	default:
		writeJSON(w, http.StatusOK, GenerationResponse{Result: res, Session: sess.Snapshot()})
	}
}

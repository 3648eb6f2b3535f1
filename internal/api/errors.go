package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/joestump/blockprompt/internal/generate"
	"github.com/joestump/blockprompt/internal/registry"
	"github.com/joestump/blockprompt/internal/schema"
	"github.com/joestump/blockprompt/internal/session"
	"github.com/joestump/blockprompt/internal/store"
)

const maxBodyBytes = 1 << 20

// writeError writes a JSON error response with the given HTTP status code.
// The message doubles as the human-readable details.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeErrorDetails(w, status, message, code, message)
}

// writeErrorDetails writes a JSON error response whose details carry more
// than the message, such as a field-error map.
func writeErrorDetails(w http.ResponseWriter, status int, message, code string, details any) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: details})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// readBody reads a request body of at most maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// decodeJSON decodes a request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return false
	}
	return true
}

// writeDomainError maps errors from the core packages onto HTTP responses.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		verr *schema.ValidationError
		gerr *generate.Error
	)
	switch {
	case errors.As(err, &verr):
		writeErrorDetails(w, http.StatusBadRequest, verr.Error(), "invalid_request", verr.FieldErrors)
	case errors.Is(err, generate.ErrEmptyGoal):
		writeErrorDetails(w, http.StatusBadRequest, err.Error(), "invalid_request",
			map[string]string{"userPrompt": "must not be empty"})
	case errors.Is(err, generate.ErrNoTargets):
		writeError(w, http.StatusBadRequest, err.Error(), "no_targets")
	case errors.Is(err, registry.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "template_not_found")
	case errors.Is(err, registry.ErrBlockNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "block_type_not_found")
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found", "session_not_found")
	case errors.Is(err, session.ErrIndexOutOfRange):
		writeError(w, http.StatusNotFound, err.Error(), "block_not_found")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found", "not_found")
	case errors.Is(err, store.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error(), "invalid_request")
	case errors.Is(err, session.ErrBlockPending):
		writeError(w, http.StatusConflict, err.Error(), "block_pending")
	case errors.Is(err, session.ErrBulkInFlight):
		writeError(w, http.StatusConflict, err.Error(), "generation_in_flight")
	case errors.Is(err, session.ErrStaleGeneration):
		writeError(w, http.StatusConflict, err.Error(), "stale_generation")
	case errors.Is(err, generate.ErrNoProvider):
		writeError(w, http.StatusServiceUnavailable, "LLM generation not configured", "llm_not_configured")
	case errors.As(err, &gerr):
		writeGenerationFailure(w, gerr.Outcome, "Failed to generate content")
	default:
		log.Printf("api: internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", "internal_error")
	}
}

func writeGenerationFailure(w http.ResponseWriter, outcome generate.Outcome, message string) {
	code := "llm_error"
	if outcome == generate.OutcomeSchemaInvalid {
		code = "llm_invalid_response"
	}
	writeError(w, http.StatusBadGateway, message, code)
}

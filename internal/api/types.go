package api

import (
	"github.com/joestump/blockprompt/internal/block"
	"github.com/joestump/blockprompt/internal/generate"
	"github.com/joestump/blockprompt/internal/session"
)

// ErrorResponse is the body of every non-2xx response. Details is either a
// string or a map of field name to problem.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" swaggertype:"object"`
}

// --- Generation types ---

// QuickStartResponse is the result of POST /api/v1/simple-prompt.
type QuickStartResponse struct {
	TemplateID string           `json:"templateId"`
	Blocks     []block.Instance `json:"blocks"`
}

// AllBlocksResponse is the result of POST /api/v1/all-blocks.
type AllBlocksResponse struct {
	GeneratedBlocks map[string]string `json:"generatedBlocks"`
}

// --- Session types ---

// CreateSessionRequest is the body of POST /api/v1/sessions. Both fields
// are optional; an unknown template falls back to the default.
type CreateSessionRequest struct {
	TemplateID string `json:"templateId,omitempty"`
	Model      string `json:"model,omitempty"`
}

// LoadTemplateRequest is the body of PUT /api/v1/sessions/{id}/template.
type LoadTemplateRequest struct {
	TemplateID string `json:"templateId"`
}

// SetModelRequest is the body of PUT /api/v1/sessions/{id}/model.
type SetModelRequest struct {
	Model string `json:"model"`
}

// UpdateBlockRequest is the body of PUT /api/v1/sessions/{id}/blocks/{index}.
type UpdateBlockRequest struct {
	Content *string `json:"content"`
}

// SessionResponse wraps a session state. FellBack is set when a requested
// template did not exist and the default was loaded instead.
type SessionResponse struct {
	session.State
	FellBack bool `json:"fellBack,omitempty"`
}

// GenerationResponse is the result of a session-scoped generation.
type GenerationResponse struct {
	Result  generate.Result `json:"result"`
	Session session.State   `json:"session"`
}

// PromptResponse carries an assembled prompt.
type PromptResponse struct {
	Prompt    string `json:"prompt"`
	HistoryID string `json:"historyId,omitempty"`
}

// --- Saved prompt types ---

// SavePromptRequest is the body of POST and PUT /api/v1/prompts. When
// SessionID is set the session's current blocks are saved and the other
// content fields are ignored.
type SavePromptRequest struct {
	Name      string           `json:"name"`
	SessionID string           `json:"sessionId,omitempty"`
	Template  string           `json:"template,omitempty"`
	Model     string           `json:"model,omitempty"`
	Blocks    []block.Instance `json:"blocks,omitempty"`
}

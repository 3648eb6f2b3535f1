package api

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
)

// WorkspaceSessionKey is the cookie-session key holding the browser's
// editing session id.
const WorkspaceSessionKey = "session_id"

// workspaceAPIHandler binds a browser to one editing session across page
// loads.
type workspaceAPIHandler struct {
	sm       *scs.SessionManager
	sessions *sessionsAPIHandler
}

// Get returns the browser's editing session, starting one when the cookie
// is missing or its session has expired.
// GET /api/v1/workspace
//
// @Summary      Current workspace
// @Description  Returns the editing session bound to the caller's cookie, creating it on first use
// @Tags         Sessions
// @Produce      json
// @Param        template  query     string  false  "Template for a newly created session"
// @Success      200       {object}  SessionResponse
// @Router       /workspace [get]
func (h *workspaceAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	if id := h.sm.GetString(r.Context(), WorkspaceSessionKey); id != "" {
		if sess, err := h.sessions.sessions.Get(id); err == nil {
			writeJSON(w, http.StatusOK, SessionResponse{State: sess.Snapshot()})
			return
		}
	}
	sess, fellBack := h.sessions.create(r.URL.Query().Get("template"), "")
	h.sm.Put(r.Context(), WorkspaceSessionKey, sess.ID)
	writeJSON(w, http.StatusOK, SessionResponse{State: sess.Snapshot(), FellBack: fellBack})
}

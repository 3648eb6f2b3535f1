package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	eventWriteWait  = 10 * time.Second
	eventPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Events streams a session's generation events over a websocket until the
// client disconnects or the session ends.
// GET /api/v1/sessions/{id}/events
//
// @Summary      Session events
// @Description  Websocket stream of session.Event messages (pending, applied, failed, notice, replaced)
// @Tags         Sessions
// @Param        id   path  string  true  "Session ID"
// @Success      101
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id}/events [get]
func (h *sessionsAPIHandler) Events(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	// Subscribe before the handshake completes so a client that acts on
	// the open connection sees every later event.
	events, cancel := sess.Events.Subscribe()
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: session %s: websocket upgrade: %v", sess.ID, err)
		return
	}
	defer conn.Close()

	// The client never sends anything we act on; reading only detects close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(eventPingPeriod)
	defer ping.Stop()
	for {
		select {
		case ev, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(eventWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(eventWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Lllllllleong/documentrouter/internal/models"
	"github.com/Lllllllleong/documentrouter/internal/status"
)

const writeWait = 10 * time.Second

// handleStatusSocket streams stage changes for one document. The current
// stage is sent on open; afterwards only changes are sent, never Unknown.
// The channel closes once a new terminal stage has been sent.
func (s *Server) handleStatusSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	logCtx := loggerFrom(r.Context()).With("documentId", id)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logCtx.Warn("WebSocket upgrade failed.", "error", err)
		return
	}
	defer conn.Close()

	obs := status.NewChanObserver(16)
	sub := s.store.Subscribe(id, obs)
	defer func() {
		obs.Close()
		sub.Cancel()
	}()
	logCtx.Info("Status channel opened.")

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	last := sub.Initial
	if err := writeText(conn, last.String()); err != nil {
		return
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		var cur models.Stage
		select {
		case <-gone:
			logCtx.Info("Status channel closed by client.")
			return
		case cur = <-obs.C():
		case <-ticker.C:
			// Pushes stop once another channel subscribes to the same id.
			if sub.Active() {
				continue
			}
			cur = s.store.Get(id)
		}
		if cur.Kind == models.StageUnknown || cur == last {
			continue
		}
		if err := writeText(conn, cur.String()); err != nil {
			logCtx.Warn("Failed to send status.", "error", err)
			return
		}
		last = cur
		if cur.Terminal() {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "processing finished")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			logCtx.Info("Status channel closed after terminal stage.", "stage", cur.String())
			return
		}
	}
}

func writeText(conn *websocket.Conn, msg string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

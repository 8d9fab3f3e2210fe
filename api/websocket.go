package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// UpdateMessage is pushed to websocket clients on snapshot refreshes
type UpdateMessage struct {
	Type string `json:"type"`
	At   int64  `json:"at"`
}

// handleUpdates upgrades the connection and pushes a notification each
// time the snapshot cache refreshes, so the UI can re-render without
// polling
func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("API: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := s.snapshotService.SubscribeOnUpdate()
	defer sub.Cancel()

	// Drain client frames so close messages are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Cancel()
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-sub.Chan():
			if !ok {
				return
			}
			msg := UpdateMessage{Type: "snapshot_refresh", At: time.Now().UnixMilli()}
			if err := conn.WriteJSON(msg); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("API: websocket write failed: %v", err)
				}
				return
			}
		}
	}
}

package httpapi

import (
	"sync"

	"chessmonitor/internal/models"

	"github.com/gorilla/websocket"
)

// hub fans each cycle's snapshot out to connected websocket clients. Clients
// that fail a write are dropped; they are expected to reconnect.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *hub) broadcast(snapshot *models.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(snapshot); err != nil {
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

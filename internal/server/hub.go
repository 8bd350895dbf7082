// internal/server/hub.go
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// writeWait bounds each broadcast write to a client.
const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local development server only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub maintains the set of connected clients and broadcasts reload
// messages to them.
type Hub struct {
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	logger  zerolog.Logger
}

func newHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	h.logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("live-reload client connected")
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
		h.logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("live-reload client disconnected")
	}
}

// count returns the number of connected clients.
func (h *Hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcastMessage sends a message to all registered clients.
func (h *Hub) broadcastMessage(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	deadline := time.Now().Add(writeWait)
	for client := range h.clients {
		client.SetWriteDeadline(deadline)
		if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Warn().Err(err).Str("remote", client.RemoteAddr().String()).Msg("error writing to client")
			// Assume the client went away.
			client.Close()
			delete(h.clients, client)
		}
	}
}

// closeAll disconnects every client.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Warn().Err(err).Msg("websocket upgrade error")
		return
	}
	hub.register(conn)

	// Clients never send; reading detects when they go away.
	defer hub.unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Package livereload pushes rebuild and reload notifications from the dev
// server to open browser tabs over a WebSocket.
package livereload

import (
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Message types sent to clients
const (
	TypeReload  = "RELOAD"
	TypeRebuild = "REBUILD"
	TypeError   = "ERROR"
)

// Hub tracks connected clients and broadcasts notifications to them
type Hub struct {
	upgrader websocket.Upgrader

	// mu guards clients and serializes writes to every connection
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	closed  bool
}

// NewHub creates a hub. With allowAllOrigins the upgrader accepts
// connections from any origin, otherwise only same-origin requests.
func NewHub(allowAllOrigins bool) *Hub {
	h := &Hub{clients: make(map[*websocket.Conn]bool)}
	if allowAllOrigins {
		h.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return h
}

// ServeHTTP upgrades the request and serves the client until it disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	if !h.register(conn) {
		return
	}
	defer h.unregister(conn)

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		switch msg["type"] {
		case "HELLO":
			h.mu.Lock()
			err := conn.WriteJSON(map[string]interface{}{"type": "ACK"})
			h.mu.Unlock()
			if err != nil {
				return
			}
		default:
			log.Printf("Unknown WebSocket message type: %v", msg["type"])
		}
	}
}

func (h *Hub) register(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[conn] = true
	return true
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Notify sends {"type": KIND, ...data} to every client and returns the
// number of clients that received it
func (h *Hub) Notify(kind string, data map[string]interface{}) int {
	message := map[string]interface{}{
		"type": strings.ToUpper(kind),
	}
	for k, v := range data {
		if k == "type" {
			continue
		}
		message[k] = v
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for client := range h.clients {
		if err := client.WriteJSON(message); err != nil {
			log.Printf("Failed to send message to client: %v", err)
			continue
		}
		sent++
	}
	return sent
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for client := range h.clients {
		client.WriteMessage(websocket.CloseMessage, msg)
		client.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
}

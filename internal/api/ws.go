package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"smartnav/pkg/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local tool, same-origin UI and curl are the only consumers.
		return true
	},
}

// Hub fans out navigation updates to connected WebSocket clients.
type Hub struct {
	mu        sync.Mutex
	clients   map[*websocket.Conn]bool
	broadcast chan NavResponse
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates the hub and starts its broadcast loop.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan NavResponse, 100),
		done:      make(chan struct{}),
	}
	go h.run()
	return h
}

// Broadcast queues an update for all connected clients. Drops the update
// if the queue is full rather than blocking the fix pipeline.
func (h *Hub) Broadcast(tripID string, u *model.NavUpdate) {
	select {
	case h.broadcast <- NavResponse{NavUpdate: *u, TripID: tripID}:
	default:
		slog.Warn("WS hub: broadcast queue full, dropping update")
	}
}

// Close stops the broadcast loop and disconnects all clients.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
			}
			h.clients = make(map[*websocket.Conn]bool)
			h.mu.Unlock()
			return
		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteJSON(msg); err != nil {
					slog.Debug("WS hub: write failed, dropping client", "error", err)
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// HandleWS upgrades the connection and registers the client.
// GET /api/ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WS hub: upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.mu.Unlock()
	slog.Debug("WS hub: client connected", "clients", count)

	// Reader loop only to detect disconnects; clients never send data.
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

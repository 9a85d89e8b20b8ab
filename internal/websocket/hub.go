package websocket

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub is the notification bus: it maintains the set of open console
// connections and fans each broadcast out to all of them. Delivery is
// fire-and-forget; a connection that cannot take a message is dropped
// from the set, never retried.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound payloads to fan out
	broadcast chan []byte

	// Register requests from new connections
	register chan *Client

	// Unregister requests from closing connections
	unregister chan *Client

	// Mutex to protect clients map
	mu sync.RWMutex

	// Logger
	logger zerolog.Logger
}

// NewHub creates a new Hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger.With().Str("component", "bus").Logger(),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info().
				Str("client_id", client.id).
				Str("agent_id", client.agentID).
				Int("total_clients", total).
				Msg("console connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info().
					Str("client_id", client.id).
					Str("agent_id", client.agentID).
					Int("total_clients", len(h.clients)).
					Msg("console disconnected")
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// Broadcast queues a payload for delivery to every open connection
func (h *Hub) Broadcast(message []byte) {
	h.broadcast <- message
}

// ClientCount returns the number of connected consoles
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// fanOut sends one payload to every client. Failed clients are collected
// during the pass and removed after it, so the set is never mutated while
// being iterated.
func (h *Hub) fanOut(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var dead []*Client
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			dead = append(dead, client)
		}
	}

	for _, client := range dead {
		delete(h.clients, client)
		close(client.send)
		h.logger.Warn().
			Str("client_id", client.id).
			Msg("console send buffer full, dropping connection")
	}
}

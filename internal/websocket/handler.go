package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dialdesk/acd/internal/config"
	"github.com/dialdesk/acd/internal/metrics"
	"github.com/dialdesk/acd/internal/registry"
	"github.com/dialdesk/acd/internal/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now
		// TODO: Implement proper origin checking based on config
		return true
	},
}

// Handler handles WebSocket upgrade requests from agent consoles.
// Each connection is tied to an agent via the wsclient query parameter.
type Handler struct {
	hub      *Hub
	registry *registry.Registry
	config   *config.Config
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, reg *registry.Registry, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		registry: reg,
		config:   cfg,
		logger:   logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	agentID := r.URL.Query().Get("wsclient")
	if !types.ValidAgentID(agentID) {
		http.Error(w, "invalid or missing wsclient", http.StatusBadRequest)
		return
	}

	// The agent's presence record must exist before the console can
	// receive pushes, so the registry side happens ahead of the upgrade.
	loggingIn := types.StatusLoggingIn
	h.registry.Upsert(agentID, registry.Update{Status: &loggingIn})
	h.registry.AdjustConnections(agentID, 1)
	metrics.Get().RecordConnect()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.registry.AdjustConnections(agentID, -1)
		metrics.Get().RecordDisconnect()
		h.logger.Error().Err(err).Str("agent_id", agentID).Msg("failed to upgrade connection")
		return
	}

	client := NewClient(h.hub, conn, agentID, h.config, h.logger, func() {
		h.registry.AdjustConnections(agentID, -1)
		metrics.Get().RecordDisconnect()
	})

	h.hub.register <- client
	client.Start()
}

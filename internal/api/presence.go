package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dialdesk/acd/internal/registry"
	"github.com/dialdesk/acd/internal/types"
)

// PresenceHandler serves the console's presence endpoints. All input is
// validated before it reaches the registry.
type PresenceHandler struct {
	registry        *registry.Registry
	defaultCallerID string
	logger          zerolog.Logger
}

// NewPresenceHandler creates a PresenceHandler
func NewPresenceHandler(reg *registry.Registry, defaultCallerID string, logger zerolog.Logger) *PresenceHandler {
	return &PresenceHandler{
		registry:        reg,
		defaultCallerID: defaultCallerID,
		logger:          logger.With().Str("component", "presence").Logger(),
	}
}

// Track handles POST /track, the console's status report
func (h *PresenceHandler) Track(w http.ResponseWriter, r *http.Request) {
	from := r.FormValue("from")
	raw := r.FormValue("status")

	if !types.ValidAgentID(from) {
		h.logger.Warn().Str("from", from).Msg("invalid agent id for track")
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	status, ok := types.ParseStatus(raw)
	if !ok {
		h.logger.Warn().Str("from", from).Str("status", raw).Msg("unknown status for track")
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	if !h.registry.ReportStatus(from, status) {
		h.logger.Warn().
			Str("from", from).
			Str("status", raw).
			Msg("rejected illegal status transition")
		http.Error(w, "Illegal status transition", http.StatusConflict)
		return
	}

	h.logger.Debug().Str("from", from).Str("status", raw).Msg("agent status updated")
	w.WriteHeader(http.StatusOK)
}

// Status handles GET /status?from=, returning the agent's current status
// as plain text, or Unknown for an agent the registry has never seen
func (h *PresenceHandler) Status(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	if !types.ValidAgentID(from) {
		http.Error(w, "Invalid client name", http.StatusBadRequest)
		return
	}

	agent, ok := h.registry.Get(from)
	if !ok {
		w.Write([]byte("Unknown"))
		return
	}
	w.Write([]byte(string(agent.Status)))
}

// SetCallerID handles POST /setcallerid, storing an agent's outbound
// caller id override
func (h *PresenceHandler) SetCallerID(w http.ResponseWriter, r *http.Request) {
	from := r.FormValue("from")
	callerID := r.FormValue("callerid")

	if !types.ValidAgentID(from) || !types.ValidPhoneNumber(callerID) {
		h.logger.Warn().
			Str("from", from).
			Str("callerid", callerID).
			Msg("invalid parameters for setcallerid")
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	h.registry.Upsert(from, registry.Update{CallerID: &callerID})
	w.WriteHeader(http.StatusOK)
}

// GetCallerID handles GET /getcallerid?from=, returning the agent's
// caller id override or the configured default
func (h *PresenceHandler) GetCallerID(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	if !types.ValidAgentID(from) {
		http.Error(w, "Invalid client name", http.StatusBadRequest)
		return
	}

	callerID := h.defaultCallerID
	if agent, ok := h.registry.Get(from); ok && agent.CallerID != "" {
		callerID = agent.CallerID
	}
	w.Write([]byte(callerID))
}

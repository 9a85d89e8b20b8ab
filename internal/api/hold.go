package api

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/dialdesk/acd/internal/provider"
	"github.com/dialdesk/acd/internal/types"
)

const holdMusicURL = "http://com.twilio.sounds.music.s3.amazonaws.com/ClockworkWaltz.mp3"

// HoldHandler serves the hold flow: an agent parks the customer leg on
// hold music and later pulls it back to their own client.
type HoldHandler struct {
	provider provider.Provider
	logger   zerolog.Logger
}

// NewHoldHandler creates a HoldHandler
func NewHoldHandler(p provider.Provider, logger zerolog.Logger) *HoldHandler {
	return &HoldHandler{
		provider: p,
		logger:   logger.With().Str("component", "hold").Logger(),
	}
}

// RequestHold handles POST /request_hold. For an inbound call the form
// carries the agent leg's sid, so the customer leg is resolved through
// the parent call before the redirect.
func (h *HoldHandler) RequestHold(w http.ResponseWriter, r *http.Request) {
	from := r.FormValue("from")
	callSid := r.FormValue("callsid")
	callType := r.FormValue("calltype")

	if !types.ValidAgentID(from) || callSid == "" || callType == "" {
		h.logger.Warn().Str("from", from).Msg("invalid parameters for hold request")
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	if callType == "Inbound" {
		parent, err := h.provider.ParentCallSid(r.Context(), callSid)
		if err != nil {
			h.logger.Error().Err(err).Str("call_sid", callSid).Msg("failed to resolve parent call")
			http.Error(w, "Error processing hold request", http.StatusInternalServerError)
			return
		}
		if parent != "" {
			callSid = parent
		}
	}

	if err := h.provider.RedirectCall(r.Context(), callSid, baseURL(r)+"/hold"); err != nil {
		h.logger.Error().Err(err).Str("call_sid", callSid).Msg("failed to place call on hold")
		http.Error(w, "Error processing hold request", http.StatusInternalServerError)
		return
	}

	h.logger.Info().Str("call_sid", callSid).Str("agent_id", from).Msg("call placed on hold")
	w.Write([]byte(callSid))
}

// Hold handles POST /hold, playing hold music to the parked caller until
// the next redirect. Loop 0 repeats forever.
func (h *HoldHandler) Hold(w http.ResponseWriter, r *http.Request) {
	response := &provider.TwiML{}
	response.Add(provider.Play{Loop: 0, URL: holdMusicURL})
	writeTwiML(w, h.logger, response)
}

// RequestUnhold handles POST /request_unhold, redirecting the parked
// caller back to the requesting agent's client
func (h *HoldHandler) RequestUnhold(w http.ResponseWriter, r *http.Request) {
	from := r.FormValue("from")
	callSid := r.FormValue("callsid")

	if !types.ValidAgentID(from) || callSid == "" {
		h.logger.Warn().Str("from", from).Msg("invalid parameters for unhold request")
		http.Error(w, "Invalid parameters", http.StatusBadRequest)
		return
	}

	target := baseURL(r) + "/send_to_agent?target_agent=" + url.QueryEscape(from)
	if err := h.provider.RedirectCall(r.Context(), callSid, target); err != nil {
		h.logger.Error().Err(err).Str("call_sid", callSid).Msg("failed to take call off hold")
		http.Error(w, "Error processing unhold request", http.StatusInternalServerError)
		return
	}

	h.logger.Info().Str("call_sid", callSid).Str("agent_id", from).Msg("call taken off hold")
	w.WriteHeader(http.StatusOK)
}

// SendToAgent handles POST /send_to_agent?target_agent=, the instruction
// URL the unhold redirect points at
func (h *HoldHandler) SendToAgent(w http.ResponseWriter, r *http.Request) {
	target := r.FormValue("target_agent")
	if !types.ValidAgentID(target) {
		h.logger.Warn().Str("target_agent", target).Msg("invalid target agent")
		http.Error(w, "Invalid target agent", http.StatusBadRequest)
		return
	}

	response := &provider.TwiML{}
	response.Add(provider.Dial{Client: target})
	writeTwiML(w, h.logger, response)
}

// baseURL reconstructs the externally visible base URL of the request
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host
}

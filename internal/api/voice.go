package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dialdesk/acd/internal/provider"
	"github.com/dialdesk/acd/internal/routing"
	"github.com/dialdesk/acd/internal/types"
)

const (
	waitMessage = "Please wait for the next available agent"

	// Seconds the agent's phone rings before the leg is reported back
	// as no-answer.
	dialTimeout = 10
)

// VoiceHandler serves the provider's call webhooks: the inbound-call
// entry point, the dial-outcome callback, and click-to-dial.
type VoiceHandler struct {
	router    *routing.Router
	queueName string
	logger    zerolog.Logger
}

// NewVoiceHandler creates a VoiceHandler
func NewVoiceHandler(router *routing.Router, queueName string, logger zerolog.Logger) *VoiceHandler {
	return &VoiceHandler{
		router:    router,
		queueName: queueName,
		logger:    logger.With().Str("component", "voice").Logger(),
	}
}

// Voice handles POST /voice, the webhook for a new inbound call. The
// routing decision either dials the chosen agent's client or parks the
// caller in the wait queue.
func (h *VoiceHandler) Voice(w http.ResponseWriter, r *http.Request) {
	callSid := r.FormValue("CallSid")
	caller := r.FormValue("Caller")

	decision := h.router.Inbound(callSid, caller)

	response := &provider.TwiML{}
	if decision.Enqueue {
		response.Add(
			provider.Say{Text: waitMessage},
			provider.Enqueue{Name: h.queueName},
		)
	} else {
		response.Add(provider.Dial{
			Timeout:  dialTimeout,
			Record:   "record-from-answer",
			CallerID: caller,
			Action:   "/handledialcallstatus",
			Method:   "POST",
			Client:   decision.AgentID,
		})
	}

	writeTwiML(w, h.logger, response)
}

// DialCallStatus handles POST /handledialcallstatus, the action callback
// of the agent dial. A no-answer sends the caller back through /voice so
// the next agent can be tried; any other outcome ends the leg.
func (h *VoiceHandler) DialCallStatus(w http.ResponseWriter, r *http.Request) {
	callSid := r.FormValue("CallSid")
	dialStatus := r.FormValue("DialCallStatus")

	decision := h.router.DialOutcome(callSid, dialStatus)

	response := &provider.TwiML{}
	if decision.RedirectVoice {
		response.Add(provider.Redirect{URL: "/voice", Method: "POST"})
	} else {
		response.Add(provider.Hangup{})
	}

	writeTwiML(w, h.logger, response)
}

// Dial handles POST /dial, the click-to-dial webhook for agent-initiated
// outbound calls. Browser-originated legs carry From as "client:<agent id>",
// which lets the agent's stored caller id override apply.
func (h *VoiceHandler) Dial(w http.ResponseWriter, r *http.Request) {
	number := r.FormValue("PhoneNumber")
	if !types.ValidPhoneNumber(number) {
		h.logger.Warn().Str("number", number).Msg("invalid phone number for dial")
		http.Error(w, "Invalid phone number", http.StatusBadRequest)
		return
	}

	agentID := strings.TrimPrefix(r.FormValue("From"), "client:")
	decision := h.router.ClickToDial(number, agentID, r.FormValue("CallerId"))

	response := &provider.TwiML{}
	response.Add(provider.Dial{
		Record:   "record-from-answer",
		CallerID: decision.CallerID,
		Number:   decision.Number,
	})

	writeTwiML(w, h.logger, response)
}

// writeTwiML renders the markup response and writes it as text/xml
func writeTwiML(w http.ResponseWriter, logger zerolog.Logger, response *provider.TwiML) {
	body, err := response.Render()
	if err != nil {
		logger.Error().Err(err).Msg("failed to render voice response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	w.Write([]byte(body))
}

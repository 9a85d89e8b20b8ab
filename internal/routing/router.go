package routing

import (
	"github.com/dialdesk/acd/internal/metrics"
	"github.com/dialdesk/acd/internal/registry"
	"github.com/dialdesk/acd/internal/types"
	"github.com/rs/zerolog"
)

// CallStore is the subset of storage.Store needed by the Router
type CallStore interface {
	SaveCallRecord(record types.CallRecord) error
}

// Config holds the routing policy knobs
type Config struct {
	QueueName string // provider-side wait queue for unroutable calls

	// RouteDeQueuing keeps DeQueuing agents eligible for direct inbound
	// routing. This matches the observed dispatch behavior but can hand an
	// agent a second call while a queue dispatch to them is in flight;
	// disable to route only to Ready agents.
	RouteDeQueuing bool

	DefaultCallerID string

	// AnyCallerID lets click-to-dial honor a caller id supplied in the
	// request, not only the account's verified numbers.
	AnyCallerID bool
}

// Router decides what to do with an inbound call: dial the longest-idle
// eligible agent, or send the caller to the provider-side wait queue.
type Router struct {
	registry *registry.Registry
	calls    *CallLog
	store    CallStore
	cfg      Config
	logger   zerolog.Logger
}

// NewRouter creates a Router
func NewRouter(reg *registry.Registry, calls *CallLog, cfg Config, logger zerolog.Logger) *Router {
	return &Router{
		registry: reg,
		calls:    calls,
		cfg:      cfg,
		logger:   logger.With().Str("component", "routing").Logger(),
	}
}

// SetStore sets the diagnostics store for call records
func (rt *Router) SetStore(store CallStore) {
	rt.store = store
}

// InboundDecision is the routing outcome for one inbound call
type InboundDecision struct {
	AgentID string // non-empty: dial this agent's client directly
	Enqueue bool   // send the caller to the wait queue
}

// Inbound routes an inbound call. The chosen agent is claimed with a
// compare-and-transition into Ringing; losing that race to the drain loop
// (or another call) falls back to the enqueue path rather than retrying.
func (rt *Router) Inbound(callSid, caller string) InboundDecision {
	m := metrics.Get()

	eligible := InboundEligible(rt.cfg.RouteDeQueuing)
	best, found := SelectLongestIdle(rt.registry.SelectEligible(eligible...))
	if found && rt.registry.CompareAndTransition(best.ID, eligible, types.StatusRinging) {
		record := rt.calls.Record(callSid, best.ID, caller)
		rt.saveRecord(record)
		m.RecordCallRouted()

		rt.logger.Debug().
			Str("call_sid", callSid).
			Str("agent_id", best.ID).
			Msg("inbound call routed to agent")
		return InboundDecision{AgentID: best.ID}
	}

	if found {
		rt.logger.Debug().
			Str("call_sid", callSid).
			Str("agent_id", best.ID).
			Msg("lost claim on agent, enqueueing")
	}

	m.RecordCallEnqueued()
	rt.logger.Debug().
		Str("call_sid", callSid).
		Str("queue", rt.cfg.QueueName).
		Msg("no eligible agent, enqueueing call")
	return InboundDecision{Enqueue: true}
}

// OutcomeDecision is the response instruction for a dial-outcome webhook
type OutcomeDecision struct {
	RedirectVoice bool // re-run inbound routing for this caller
}

// DialOutcome handles the provider's report of what happened to a dialed
// call leg. A no-answer marks the call and its agent as Missed and sends
// the caller back through inbound routing; anything else ends the leg.
// The Missed write is a plain upsert: nothing else competes for that exact
// transition window.
func (rt *Router) DialOutcome(callSid, dialStatus string) OutcomeDecision {
	if dialStatus != "no-answer" {
		return OutcomeDecision{}
	}

	record, ok := rt.calls.MarkMissed(callSid)
	if !ok {
		rt.logger.Warn().Str("call_sid", callSid).Msg("no-answer for unknown call")
		return OutcomeDecision{RedirectVoice: true}
	}

	if !rt.registry.SetStatus(record.AgentID, types.StatusMissed) {
		rt.logger.Warn().
			Str("agent_id", record.AgentID).
			Msg("could not mark agent as Missed")
	}
	rt.saveRecord(record)
	metrics.Get().RecordCallMissed()

	rt.logger.Info().
		Str("call_sid", callSid).
		Str("agent_id", record.AgentID).
		Msg("agent missed call, re-routing caller")
	return OutcomeDecision{RedirectVoice: true}
}

// CallerIDFor resolves the outbound caller id for an agent: the agent's
// stored override when set, the configured default otherwise.
func (rt *Router) CallerIDFor(agentID string) string {
	if agent, ok := rt.registry.Get(agentID); ok && agent.CallerID != "" {
		return agent.CallerID
	}
	return rt.cfg.DefaultCallerID
}

// DialDecision is the outbound-leg instruction for a click-to-dial request
type DialDecision struct {
	Number   string
	CallerID string
}

// ClickToDial resolves an agent-initiated outbound call. The caller id
// falls back through: the requested override (honored only under the
// AnyCallerID policy), the agent's stored override, the configured
// default.
func (rt *Router) ClickToDial(number, agentID, requested string) DialDecision {
	callerID := rt.CallerIDFor(agentID)
	if rt.cfg.AnyCallerID && types.ValidPhoneNumber(requested) {
		callerID = requested
	}

	metrics.Get().RecordClickToDial()
	rt.logger.Debug().
		Str("agent_id", agentID).
		Str("number", number).
		Str("caller_id", callerID).
		Msg("click-to-dial placed")
	return DialDecision{Number: number, CallerID: callerID}
}

// saveRecord persists a call record asynchronously, if a store is set
func (rt *Router) saveRecord(record types.CallRecord) {
	if rt.store == nil {
		return
	}
	go func() {
		if err := rt.store.SaveCallRecord(record); err != nil {
			rt.logger.Error().Err(err).Str("call_sid", record.CallSid).Msg("failed to save call record")
		}
	}()
}

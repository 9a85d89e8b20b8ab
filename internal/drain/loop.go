package drain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dialdesk/acd/internal/metrics"
	"github.com/dialdesk/acd/internal/provider"
	"github.com/dialdesk/acd/internal/registry"
	"github.com/dialdesk/acd/internal/routing"
	"github.com/dialdesk/acd/internal/types"
	"github.com/rs/zerolog"
)

// Broadcaster pushes a payload to every open console connection
type Broadcaster interface {
	Broadcast(message []byte)
	ClientCount() int
}

// Loop is the queue-drain loop: a single supervised background task that
// polls the provider-side wait queue once per interval, dispatches the
// head-of-queue caller to the longest-idle Ready agent when one exists,
// and broadcasts queue telemetry to the notification bus every tick.
type Loop struct {
	registry   *registry.Registry
	provider   provider.Provider
	bus        Broadcaster
	dequeueURL string
	interval   time.Duration
	backoff    time.Duration
	logger     zerolog.Logger
}

// NewLoop creates a drain Loop
func NewLoop(reg *registry.Registry, prov provider.Provider, bus Broadcaster, dequeueURL string, interval, backoff time.Duration, logger zerolog.Logger) *Loop {
	return &Loop{
		registry:   reg,
		provider:   prov,
		bus:        bus,
		dequeueURL: dequeueURL,
		interval:   interval,
		backoff:    backoff,
		logger:     logger.With().Str("component", "drain").Logger(),
	}
}

// Start runs the loop until the context is cancelled, which in normal
// operation means process shutdown. The recovery policy is uniform: any
// tick failure, including a panic, is logged and followed by one backoff
// sleep before ticking resumes. The loop itself cannot die.
func (l *Loop) Start(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info().Dur("interval", l.interval).Msg("drain loop started")

	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("drain loop stopped")
			return
		case <-ticker.C:
			if err := l.runTick(ctx); err != nil {
				metrics.Get().RecordDrainError()
				l.logger.Error().Err(err).Dur("backoff", l.backoff).Msg("drain tick failed, backing off")
				select {
				case <-ctx.Done():
				case <-time.After(l.backoff):
				}
			}
		}
	}
}

// runTick wraps tick with panic recovery so one uniform policy covers
// everything a tick can do wrong.
func (l *Loop) runTick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panic: %v", r)
		}
	}()
	return l.tick(ctx)
}

// tick performs one poll-dispatch-broadcast cycle
func (l *Loop) tick(ctx context.Context) error {
	m := metrics.Get()

	status, err := l.provider.QueueStatus(ctx)
	if err != nil {
		// Degrade this tick's reading to an empty queue and keep going;
		// the provider being down must not stop telemetry.
		m.RecordProviderError()
		l.logger.Warn().Err(err).Msg("queue poll failed, treating queue as empty")
		status = provider.QueueStatus{}
	}

	if status.HeadCallSid != "" {
		l.dispatch(ctx, status.HeadCallSid)
	}

	ready := l.registry.CountByStatus(types.StatusReady)
	snapshot := types.QueueSnapshot{QueueSize: status.Size, ReadyAgents: ready}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal queue snapshot: %w", err)
	}

	l.bus.Broadcast(payload)
	m.RecordBroadcast()
	m.RecordDrainTick(snapshot.QueueSize, snapshot.ReadyAgents)

	l.logger.Debug().
		Int("queue_size", snapshot.QueueSize).
		Int("ready_agents", snapshot.ReadyAgents).
		Int("clients", l.bus.ClientCount()).
		Msg("drain tick")
	return nil
}

// dispatch claims the longest-idle Ready agent for the head-of-queue
// caller. Exactly one claim attempt per tick: losing the race to a direct
// inbound route is a no-op, the caller stays queued until the next tick.
func (l *Loop) dispatch(ctx context.Context, headCallSid string) {
	eligible := routing.DrainEligible()

	best, found := routing.SelectLongestIdle(l.registry.SelectEligible(eligible...))
	if !found {
		l.logger.Debug().Msg("callers waiting but no Ready agents")
		return
	}

	if !l.registry.CompareAndTransition(best.ID, eligible, types.StatusDeQueuing) {
		l.logger.Debug().Str("agent_id", best.ID).Msg("lost claim on agent, retrying next tick")
		return
	}

	if err := l.provider.DequeueMember(ctx, headCallSid, l.dequeueURL); err != nil {
		// The agent stays DeQueuing until they report a new status; the
		// caller stays queued and is retried next tick.
		metrics.Get().RecordProviderError()
		l.logger.Error().Err(err).
			Str("call_sid", headCallSid).
			Str("agent_id", best.ID).
			Msg("failed to dequeue caller after claiming agent")
		return
	}

	metrics.Get().RecordCallDequeued()
	l.logger.Info().
		Str("call_sid", headCallSid).
		Str("agent_id", best.ID).
		Msg("dispatched queued caller to agent")
}

package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/dialdesk/acd/internal/types"
)

// Registry is the concurrency-safe store of per-agent presence state. It
// is the only shared mutable resource in the coordination core: request
// handlers and the drain loop all go through its operations, and every
// operation completes under a single critical section so no caller ever
// observes a half-applied update.
type Registry struct {
	agents map[string]*types.Agent
	mu     sync.RWMutex
	now    func() time.Time
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{
		agents: make(map[string]*types.Agent),
		now:    time.Now,
	}
}

// Update describes a partial agent update for Upsert. Nil fields are
// left untouched.
type Update struct {
	Status   *types.Status
	CallerID *string
}

// Get returns a snapshot of the agent, if present
func (r *Registry) Get(id string) (types.AgentSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[id]
	if !ok {
		return types.AgentSnapshot{}, false
	}
	return snapshot(agent), true
}

// Upsert creates the agent if absent and merges the given fields. Status
// writes through Upsert enforce the transition table: an illegal (from, to)
// pair is rejected and reported via the return value, with the rest of the
// update still applied.
func (r *Registry) Upsert(id string, u Update) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent := r.ensure(id)

	statusOK := true
	if u.Status != nil {
		statusOK = r.setStatus(agent, *u.Status)
	}
	if u.CallerID != nil {
		agent.CallerID = *u.CallerID
	}
	return statusOK
}

// ReportStatus applies a console status report. An unknown agent is
// created only when the reported status is legal from the implicit
// LoggedOut starting state; a rejected report leaves no record behind.
func (r *Registry) ReportStatus(id string, status types.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, ok := r.agents[id]
	if !ok {
		if !types.CanTransition(types.StatusLoggedOut, status) {
			return false
		}
		agent = r.ensure(id)
	}
	return r.setStatus(agent, status)
}

// SetStatus changes the agent's status, creating the agent if absent.
// Returns false if the transition is illegal.
func (r *Registry) SetStatus(id string, status types.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.setStatus(r.ensure(id), status)
}

// CompareAndTransition changes the agent's status to next only if the
// current status is one of expected. This is the claim operation: the
// guard and the write happen under one lock hold, so of any number of
// concurrent claimers at most one can win. An absent agent is a failure,
// never an implicit create.
func (r *Registry) CompareAndTransition(id string, expected []types.Status, next types.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, ok := r.agents[id]
	if !ok {
		return false
	}

	matched := false
	for _, st := range expected {
		if agent.Status == st {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	return r.setStatus(agent, next)
}

// AdjustConnections applies a connection-count delta and returns the
// resulting count. The count never goes below zero, and hitting zero
// forces the status to LoggedOut inside the same critical section so no
// reader can observe a zero-connection agent in a routable state.
func (r *Registry) AdjustConnections(id string, delta int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent := r.ensure(id)
	agent.ConnectionCount += delta
	if agent.ConnectionCount < 0 {
		agent.ConnectionCount = 0
	}
	if agent.ConnectionCount == 0 {
		agent.Status = types.StatusLoggedOut
	}
	return agent.ConnectionCount
}

// SelectEligible returns snapshots of all agents whose status is one of
// the given statuses, ordered by identifier for deterministic iteration.
func (r *Registry) SelectEligible(statuses ...types.Status) []types.AgentSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []types.AgentSnapshot
	for _, agent := range r.agents {
		for _, st := range statuses {
			if agent.Status == st {
				out = append(out, snapshot(agent))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CountByStatus returns the number of agents currently in the given status
func (r *Registry) CountByStatus(status types.Status) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, agent := range r.agents {
		if agent.Status == status {
			n++
		}
	}
	return n
}

// ensure returns the agent record for id, creating a LoggedOut record if
// absent. Callers must hold the write lock.
func (r *Registry) ensure(id string) *types.Agent {
	agent, ok := r.agents[id]
	if !ok {
		agent = &types.Agent{ID: id, Status: types.StatusLoggedOut}
		r.agents[id] = agent
	}
	return agent
}

// setStatus applies a status change under the transition table. Every
// accepted write restamps EligibleSince: re-reporting Ready sends an
// agent to the back of the idle ranking, matching how consoles use the
// status endpoint. Callers must hold the write lock.
func (r *Registry) setStatus(agent *types.Agent, next types.Status) bool {
	if !types.CanTransition(agent.Status, next) {
		return false
	}
	agent.Status = next
	agent.EligibleSince = r.now()
	return true
}

func snapshot(agent *types.Agent) types.AgentSnapshot {
	return types.AgentSnapshot{
		ID:              agent.ID,
		Status:          agent.Status,
		EligibleSince:   agent.EligibleSince,
		ConnectionCount: agent.ConnectionCount,
		CallerID:        agent.CallerID,
	}
}

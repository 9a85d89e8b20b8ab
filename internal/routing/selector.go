package routing

import (
	"github.com/dialdesk/acd/internal/types"
)

// InboundEligible is the eligibility predicate for direct inbound routing.
// It intentionally includes DeQueuing agents, preserving the observed
// dispatch behavior; set routeDeQueuing false to exclude them (see the
// ROUTE_DEQUEUING_AGENTS policy switch).
func InboundEligible(routeDeQueuing bool) []types.Status {
	if routeDeQueuing {
		return []types.Status{types.StatusReady, types.StatusDeQueuing}
	}
	return []types.Status{types.StatusReady}
}

// DrainEligible is the eligibility predicate for queue-drain dispatch
func DrainEligible() []types.Status {
	return []types.Status{types.StatusReady}
}

// SelectLongestIdle picks the agent with the earliest EligibleSince from
// the given snapshot. Ties break by identifier so the rule is total and
// reproducible regardless of map iteration or insertion order. Pure: the
// input is never mutated.
func SelectLongestIdle(agents []types.AgentSnapshot) (types.AgentSnapshot, bool) {
	if len(agents) == 0 {
		return types.AgentSnapshot{}, false
	}

	best := agents[0]
	for _, a := range agents[1:] {
		if a.EligibleSince.Before(best.EligibleSince) {
			best = a
			continue
		}
		if a.EligibleSince.Equal(best.EligibleSince) && a.ID < best.ID {
			best = a
		}
	}
	return best, true
}

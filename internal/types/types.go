package types

import "time"

// Status represents the presence status of an agent
type Status string

const (
	StatusLoggingIn Status = "LoggingIn"
	StatusReady     Status = "Ready"
	StatusNotReady  Status = "NotReady"
	StatusRinging   Status = "Ringing"
	StatusOnCall    Status = "OnCall"
	StatusMissed    Status = "Missed"
	StatusDeQueuing Status = "DeQueuing"
	StatusLoggedOut Status = "LoggedOut"
)

// AllStatuses lists every defined agent status
var AllStatuses = []Status{
	StatusLoggingIn,
	StatusReady,
	StatusNotReady,
	StatusRinging,
	StatusOnCall,
	StatusMissed,
	StatusDeQueuing,
	StatusLoggedOut,
}

// ParseStatus returns the Status for s, or false if s is not a defined status
func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// legalTransitions enumerates the allowed (from, to) status pairs.
// LoggingIn is reachable from every state because a fresh connection can
// open at any time. LoggedOut is likewise reachable from everywhere since
// a dropped connection can interrupt any state; the forced demotion at
// zero connections happens in the registry and does not consult this table.
var legalTransitions = map[Status][]Status{
	StatusLoggedOut: {StatusLoggingIn, StatusReady, StatusNotReady},
	StatusLoggingIn: {StatusReady, StatusNotReady, StatusLoggedOut},
	StatusReady:     {StatusLoggingIn, StatusNotReady, StatusRinging, StatusDeQueuing, StatusOnCall, StatusMissed, StatusLoggedOut},
	StatusNotReady:  {StatusLoggingIn, StatusReady, StatusLoggedOut},
	StatusRinging:   {StatusLoggingIn, StatusOnCall, StatusMissed, StatusReady, StatusNotReady, StatusLoggedOut},
	StatusOnCall:    {StatusLoggingIn, StatusReady, StatusNotReady, StatusLoggedOut},
	StatusMissed:    {StatusLoggingIn, StatusReady, StatusNotReady, StatusLoggedOut},
	StatusDeQueuing: {StatusLoggingIn, StatusRinging, StatusOnCall, StatusMissed, StatusReady, StatusNotReady, StatusLoggedOut},
}

// CanTransition reports whether a status change from one status to another
// is legal. A no-op transition (from == to) is always legal.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Routable reports whether s is a status from which eligibleSince is
// meaningful for idle ranking.
func Routable(s Status) bool {
	return s == StatusReady || s == StatusDeQueuing
}

// Agent is the registry's record for a single agent. Agents are never
// deleted; logout is a status, not a removal.
type Agent struct {
	ID              string    `json:"agentId"`
	Status          Status    `json:"status"`
	EligibleSince   time.Time `json:"eligibleSince"`   // set on entry into Ready/DeQueuing
	ConnectionCount int       `json:"connectionCount"` // open push connections, never negative
	CallerID        string    `json:"callerId,omitempty"`
}

// AgentSnapshot is a value copy of an Agent handed out by the registry.
// Callers operate on snapshots and go back through the registry's atomic
// operations for any write.
type AgentSnapshot struct {
	ID              string
	Status          Status
	EligibleSince   time.Time
	ConnectionCount int
	CallerID        string
}

// QueueSnapshot is the telemetry payload pushed to every open console
// connection on each drain tick.
type QueueSnapshot struct {
	QueueSize   int `json:"queuesize"`
	ReadyAgents int `json:"readyagents"`
}

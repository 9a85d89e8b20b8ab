package routing

import (
	"sync"
	"time"

	"github.com/dialdesk/acd/internal/types"
)

// CallLog is the in-process record of calls routed to agents, keyed by
// the provider call sid. The dial-outcome webhook uses it to find which
// agent a no-answer belongs to. It lives for the process only; durable
// copies go to the diagnostics store separately.
type CallLog struct {
	calls map[string]*types.CallRecord
	mu    sync.Mutex
}

// NewCallLog creates an empty CallLog
func NewCallLog() *CallLog {
	return &CallLog{calls: make(map[string]*types.CallRecord)}
}

// Record stores a Ringing record for a call routed to an agent
func (l *CallLog) Record(callSid, agentID, caller string) types.CallRecord {
	now := time.Now()
	rec := types.CallRecord{
		DateKey:   now.Format("2006-01-02"),
		CallSid:   callSid,
		AgentID:   agentID,
		Caller:    caller,
		Status:    types.CallStatusRinging,
		RoutedAt:  now.Format(time.RFC3339),
		Direction: "inbound",
	}

	l.mu.Lock()
	l.calls[callSid] = &rec
	l.mu.Unlock()
	return rec
}

// Get returns a copy of the record for callSid, if present
func (l *CallLog) Get(callSid string) (types.CallRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.calls[callSid]
	if !ok {
		return types.CallRecord{}, false
	}
	return *rec, true
}

// MarkMissed flips the record for callSid to Missed and returns the
// updated copy
func (l *CallLog) MarkMissed(callSid string) (types.CallRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.calls[callSid]
	if !ok {
		return types.CallRecord{}, false
	}
	rec.Status = types.CallStatusMissed
	return *rec, true
}

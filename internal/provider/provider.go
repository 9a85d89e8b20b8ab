package provider

import "context"

// QueueStatus describes the provider-side wait queue at one poll
type QueueStatus struct {
	Size        int    // callers currently waiting
	HeadCallSid string // call sid of the head-of-queue caller, empty when none
}

// Provider is the boundary to the telephony backend. Implementations must
// bound every call with a timeout; failures are recoverable errors, never
// fatal to the caller.
type Provider interface {
	// QueueStatus reports the current depth and head of the wait queue
	QueueStatus(ctx context.Context) (QueueStatus, error)

	// DequeueMember redirects a waiting queue member to the given
	// instruction URL, taking the caller out of the queue
	DequeueMember(ctx context.Context, callSid, url string) error

	// RedirectCall points an in-progress call at a new instruction URL
	RedirectCall(ctx context.Context, callSid, url string) error

	// ParentCallSid resolves the parent leg of a call, or empty when the
	// call has no parent
	ParentCallSid(ctx context.Context, callSid string) (string, error)

	// EnsureQueue finds the named wait queue, creating it if absent, and
	// returns its identifier
	EnsureQueue(ctx context.Context, name string) (string, error)
}

package types

// CallStatus represents the lifecycle status of a routed call
type CallStatus string

const (
	CallStatusRinging CallStatus = "Ringing"
	CallStatusMissed  CallStatus = "Missed"
)

// CallRecord is the diagnostic record created when an inbound call is
// routed to an agent. It is persisted best-effort and never read back
// into routing decisions.
type CallRecord struct {
	DateKey   string     `json:"dateKey" dynamodbav:"DateKey"` // YYYY-MM-DD (partition key)
	CallSid   string     `json:"callSid" dynamodbav:"CallSid"` // sort key
	AgentID   string     `json:"agentId" dynamodbav:"AgentID"`
	Caller    string     `json:"caller" dynamodbav:"Caller"`
	Status    CallStatus `json:"status" dynamodbav:"Status"`
	RoutedAt  string     `json:"routedAt" dynamodbav:"RoutedAt"` // RFC3339
	Direction string     `json:"direction" dynamodbav:"Direction"`
}

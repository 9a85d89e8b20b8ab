package storage

import "github.com/dialdesk/acd/internal/types"

// Store persists call records for diagnostics. Writes are best-effort and
// never feed back into routing decisions.
type Store interface {
	SaveCallRecord(record types.CallRecord) error
	GetCallRecords(dateKey string) ([]types.CallRecord, error)
}

// NoopStore is a no-op implementation when persistence is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveCallRecord(_ types.CallRecord) error             { return nil }
func (s *NoopStore) GetCallRecords(_ string) ([]types.CallRecord, error) { return nil, nil }

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/estategate/server/internal/estategate/store"
)

// AccessLogStore is an in-memory append-only audit log.  It holds a reference
// to the pass store so RecordGrant can run the consume compare-and-swap the
// same way the durable store does inside one transaction.
type AccessLogStore struct {
	mu      sync.Mutex
	passes  *PassStore
	entries []store.AccessLogRecord
}

func NewAccessLogStore(passes *PassStore) *AccessLogStore {
	return &AccessLogStore{passes: passes}
}

func (s *AccessLogStore) RecordGrant(_ context.Context, rec store.AccessLogRecord, now time.Time) (bool, error) {
	consumed := s.passes.consumeIfActive(rec.PassID, now)
	if !consumed {
		rec.Outcome = store.OutcomeDenied
		rec.Reason = "already_used"
	} else {
		rec.Outcome = store.OutcomeGranted
		rec.Reason = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, rec)
	return consumed, nil
}

func (s *AccessLogStore) RecordDenial(_ context.Context, rec store.AccessLogRecord) error {
	rec.Outcome = store.OutcomeDenied

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, rec)
	return nil
}

func (s *AccessLogStore) List(_ context.Context, residentID string) ([]store.AccessLogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.AccessLogRecord
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if residentID == "" || e.ResidentID == residentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *AccessLogStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var deleted int64
	for _, e := range s.entries {
		if e.LoggedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}

// Entries returns a copy of all recorded attempts, oldest first.  Test-only helper.
func (s *AccessLogStore) Entries() []store.AccessLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AccessLogRecord, len(s.entries))
	copy(out, s.entries)
	return out
}

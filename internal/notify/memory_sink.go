package notify

import (
	"context"
	"sync"
)

// MemorySink buffers published events.  Intended for tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event

	// Err, when set, is returned from Publish so tests can exercise the
	// swallow-on-failure path.
	Err error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Publish(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.events = append(s.events, ev)
	return nil
}

// Events returns a copy of everything published so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

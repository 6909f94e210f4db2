package memory

import (
	"context"
	"sync"
	"time"

	"github.com/estategate/server/internal/estategate/store"
)

// PassStore is an in-memory pass store for tests and dev environments.
// The mutex stands in for the conditional-write primitive a real store
// provides: the active-code uniqueness check on insert and the
// Active→Consumed transition both happen under it.
type PassStore struct {
	mu     sync.Mutex
	passes map[string]*store.PassRecord // keyed by pass ID
	order  []string                     // insertion order, oldest first
}

func NewPassStore() *PassStore {
	return &PassStore{
		passes: make(map[string]*store.PassRecord),
	}
}

func (s *PassStore) Insert(ctx context.Context, rec store.PassRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, p := range s.passes {
		if p.AccessCode != rec.AccessCode || p.State != store.StateActive {
			continue
		}
		if now.Before(p.ExpiresAt) {
			return store.ErrCodeTaken
		}
		// Stale active pass holding the code: demote it so the code is free.
		p.State = store.StateExpired
	}

	cp := rec
	s.passes[rec.ID] = &cp
	s.order = append(s.order, rec.ID)
	return nil
}

func (s *PassStore) FindByCode(_ context.Context, code string, now time.Time) (*store.PassRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newest *store.PassRecord
	for i := len(s.order) - 1; i >= 0; i-- {
		p := s.passes[s.order[i]]
		if p.AccessCode != code {
			continue
		}
		if p.Live(now) {
			cp := *p
			return &cp, nil
		}
		if newest == nil {
			newest = p
		}
	}
	if newest == nil {
		return nil, nil
	}
	cp := *newest
	return &cp, nil
}

func (s *PassStore) HasActiveCode(_ context.Context, code string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.passes {
		if p.AccessCode == code && p.Live(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *PassStore) ListByResident(_ context.Context, residentID string) ([]store.PassRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.PassRecord
	for i := len(s.order) - 1; i >= 0; i-- {
		p := s.passes[s.order[i]]
		if p.ResidentID == residentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// consumeIfActive performs the Active→Consumed compare-and-swap.  Returns
// false when the pass is missing, already consumed, or expired at now.
func (s *PassStore) consumeIfActive(passID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.passes[passID]
	if !ok || !p.Live(now) {
		return false
	}
	t := now
	p.State = store.StateConsumed
	p.ConsumedAt = &t
	return true
}

// Get returns a copy of the pass with the given ID.  Test-only helper.
func (s *PassStore) Get(passID string) (store.PassRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.passes[passID]
	if !ok {
		return store.PassRecord{}, false
	}
	return *p, true
}

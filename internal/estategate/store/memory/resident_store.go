package memory

import (
	"context"
	"sync"

	"github.com/estategate/server/internal/estategate/store"
)

type ResidentStore struct {
	mu        sync.RWMutex
	residents map[string]store.ResidentRecord
}

func NewResidentStore(residents []store.ResidentRecord) *ResidentStore {
	m := make(map[string]store.ResidentRecord, len(residents))
	for _, r := range residents {
		if r.ID != "" {
			m[r.ID] = r
		}
	}
	return &ResidentStore{residents: m}
}

func (s *ResidentStore) Get(_ context.Context, residentID string) (*store.ResidentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.residents[residentID]
	if !ok {
		return nil, nil
	}
	cp := r
	return &cp, nil
}

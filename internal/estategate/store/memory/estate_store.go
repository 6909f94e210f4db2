package memory

import (
	"context"
	"sync"

	"github.com/estategate/server/internal/estategate/store"
)

type EstateStore struct {
	mu      sync.RWMutex
	estates map[string]store.EstateRecord
}

func NewEstateStore(estates []store.EstateRecord) *EstateStore {
	m := make(map[string]store.EstateRecord, len(estates))
	for _, e := range estates {
		if e.ID != "" {
			m[e.ID] = e
		}
	}
	return &EstateStore{estates: m}
}

func (s *EstateStore) Get(_ context.Context, estateID string) (*store.EstateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.estates[estateID]
	if !ok {
		return nil, nil
	}
	cp := e
	return &cp, nil
}

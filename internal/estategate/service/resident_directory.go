package service

import (
	"context"
	"strings"

	"github.com/estategate/server/internal/estategate/store"
)

// ResidentDirectory fronts the admin-owned resident store for the access
// path.  Lookups with blank IDs short-circuit to "not found".
type ResidentDirectory struct {
	store store.ResidentStore
}

func NewResidentDirectory(st store.ResidentStore) *ResidentDirectory {
	return &ResidentDirectory{store: st}
}

func (d *ResidentDirectory) Get(ctx context.Context, residentID string) (*store.ResidentRecord, error) {
	residentID = strings.TrimSpace(residentID)
	if residentID == "" {
		return nil, nil
	}
	return d.store.Get(ctx, residentID)
}

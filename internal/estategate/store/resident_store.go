package store

import (
	"context"
)

type ResidentRecord struct {
	ID        string
	EstateID  string
	Name      string
	Apartment string
	Phone     string
}

// ResidentStore is the read-only directory of residents.  Rows are owned by
// the admin console; this subsystem never writes them.
type ResidentStore interface {
	// Get returns nil when the resident does not exist.
	Get(ctx context.Context, residentID string) (*ResidentRecord, error)
}

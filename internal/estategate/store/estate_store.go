package store

import (
	"context"
	"time"
)

type EstateRecord struct {
	ID      string
	Name    string
	Address string

	// VisitorTTL overrides the server default when > 0.
	VisitorTTL time.Duration
}

// EstateStore is the read-only directory of estates, consumed only by the
// expiry policy.
type EstateStore interface {
	// Get returns nil when the estate does not exist.
	Get(ctx context.Context, estateID string) (*EstateRecord, error)
}

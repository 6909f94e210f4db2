package service

import (
	"context"
	"time"

	"github.com/estategate/server/internal/estategate/store"
)

// DefaultCodeTTL applies when neither the server config nor the estate sets
// a visitor TTL.
const DefaultCodeTTL = 30 * time.Minute

// ComputeExpiry stamps the absolute expiry for a pass created at createdAt.
// Callers are responsible for rejecting non-positive TTLs before calling.
func ComputeExpiry(createdAt time.Time, ttl time.Duration) time.Time {
	return createdAt.Add(ttl)
}

// ExpiryPolicy resolves the TTL for a new pass: the estate's override when
// set, otherwise the server default.
type ExpiryPolicy struct {
	estates    store.EstateStore
	defaultTTL time.Duration
}

func NewExpiryPolicy(estates store.EstateStore, defaultTTL time.Duration) *ExpiryPolicy {
	if defaultTTL <= 0 {
		defaultTTL = DefaultCodeTTL
	}
	return &ExpiryPolicy{estates: estates, defaultTTL: defaultTTL}
}

// TTLFor returns the TTL for passes in the given estate.  An empty or
// unknown estate falls back to the server default rather than failing —
// registration should not break because tenancy metadata is incomplete.
func (p *ExpiryPolicy) TTLFor(ctx context.Context, estateID string) (time.Duration, error) {
	if estateID == "" {
		return p.defaultTTL, nil
	}
	est, err := p.estates.Get(ctx, estateID)
	if err != nil {
		return 0, err
	}
	if est == nil || est.VisitorTTL <= 0 {
		return p.defaultTTL, nil
	}
	return est.VisitorTTL, nil
}

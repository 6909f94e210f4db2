package store

import (
	"context"
	"errors"
	"time"
)

// Pass lifecycle states as stored.  A pass whose expires_at is in the past is
// treated as expired regardless of the stored state; StateExpired is only
// written back when an insert needs to reclaim the code.
const (
	StateActive   = "active"
	StateConsumed = "consumed"
	StateExpired  = "expired"
)

// ErrCodeTaken is returned by Insert when another active pass already holds
// the access code.  The store's own uniqueness check is the final authority;
// callers retry with a fresh code.
var ErrCodeTaken = errors.New("access code already held by an active pass")

// PassRecord is a visitor pass.  AccessCode and VisitorName are immutable
// after creation; only State and ConsumedAt ever change.
type PassRecord struct {
	ID               string
	VisitorName      string
	AccessCode       string
	ResidentID       string
	EstateID         string
	Purpose          string
	Phone            string
	State            string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	ScheduledVisitAt *time.Time
	ConsumedAt       *time.Time
}

// Live reports whether the pass would be honored at the gate at time now.
func (p PassRecord) Live(now time.Time) bool {
	return p.State == StateActive && now.Before(p.ExpiresAt)
}

type PassStore interface {
	// Insert persists a new pass, enforcing access-code uniqueness over the
	// active subset.  Returns ErrCodeTaken on a collision.
	Insert(ctx context.Context, rec PassRecord) error

	// FindByCode returns the pass a verifier should be judged against:
	// the live pass holding code if one exists, otherwise the most recently
	// created stale pass with that code (so recycled codes deny with the
	// right reason).  Returns nil when no pass has ever used the code.
	FindByCode(ctx context.Context, code string, now time.Time) (*PassRecord, error)

	// HasActiveCode is the generator's existence check.
	HasActiveCode(ctx context.Context, code string, now time.Time) (bool, error)

	// ListByResident returns a resident's passes, newest first.
	ListByResident(ctx context.Context, residentID string) ([]PassRecord, error)
}

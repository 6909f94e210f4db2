package store

import (
	"context"
	"time"
)

// Verification methods and outcomes recorded in the audit log.
const (
	MethodCodeEntry = "code-entry"
	MethodQRScan    = "qr-scan"

	OutcomeGranted = "granted"
	OutcomeDenied  = "denied"
)

// AccessLogRecord is one verification attempt.  Rows are append-only and are
// never updated; PassID and ResidentID are empty for not-found denials.
type AccessLogRecord struct {
	ID         string
	PassID     string
	ResidentID string
	VerifierID string
	AccessCode string
	Method     string
	Outcome    string
	Reason     string
	LoggedAt   time.Time
}

// AccessLogStore persists verification attempts as an append-only audit log.
type AccessLogStore interface {
	// RecordGrant commits the Active→Consumed transition on rec.PassID and
	// the audit row together.  The transition is a conditional write guarded
	// on the pass still being active and unexpired at now; when the guard
	// fails (a racing verifier got there first) the appended row records a
	// denial instead, and RecordGrant returns false.  Exactly one of two
	// concurrent grants on the same pass can return true.
	RecordGrant(ctx context.Context, rec AccessLogRecord, now time.Time) (bool, error)

	// RecordDenial appends a denial row.  No pass state is touched.
	RecordDenial(ctx context.Context, rec AccessLogRecord) error

	// List returns audit rows newest first, optionally filtered by resident
	// (empty residentID = all rows).
	List(ctx context.Context, residentID string) ([]AccessLogRecord, error)

	// PruneOlderThan deletes audit rows logged before cutoff, returning the
	// number of rows removed.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/estategate/server/internal/db"
	"github.com/estategate/server/internal/estategate/store"
)

type AccessLogStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessLogStore(db *sql.DB, writer *dbpkg.Worker) *AccessLogStore {
	return &AccessLogStore{db: db, writer: writer}
}

// RecordGrant runs the Active→Consumed compare-and-swap and the audit insert
// in one transaction.  The UPDATE is guarded on state='active' and an
// unexpired expiry, so of two racing verifiers exactly one sees a row
// change; the loser's audit row is written as a denial.
func (s *AccessLogStore) RecordGrant(ctx context.Context, rec store.AccessLogRecord, now time.Time) (bool, error) {
	if rec.LoggedAt.IsZero() {
		rec.LoggedAt = now
	}
	nowMs := now.UTC().UnixMilli()

	var consumed bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE visitor_passes
SET state = 'consumed', consumed_at_ms = ?
WHERE pass_id = ? AND state = 'active' AND expires_at_ms > ?;
`, nowMs, rec.PassID, nowMs)
		if err != nil {
			return fmt.Errorf("RecordGrant consume: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("RecordGrant rows: %w", err)
		}
		consumed = n == 1

		outcome := store.OutcomeGranted
		reason := ""
		if !consumed {
			outcome = store.OutcomeDenied
			reason = "already_used"
		}

		if err := insertLog(ctx, tx, rec, outcome, reason); err != nil {
			return fmt.Errorf("RecordGrant insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return consumed, nil
}

func (s *AccessLogStore) RecordDenial(ctx context.Context, rec store.AccessLogRecord) error {
	if rec.LoggedAt.IsZero() {
		rec.LoggedAt = time.Now().UTC()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := insertLog(ctx, tx, rec, store.OutcomeDenied, rec.Reason); err != nil {
			return fmt.Errorf("RecordDenial insert: %w", err)
		}
		return nil
	})
}

func insertLog(ctx context.Context, tx *sql.Tx, rec store.AccessLogRecord, outcome, reason string) error {
	var passID any
	if rec.PassID != "" {
		passID = rec.PassID
	}
	var residentID any
	if rec.ResidentID != "" {
		residentID = rec.ResidentID
	}

	_, err := tx.ExecContext(ctx, `
INSERT INTO access_logs(
  log_id, pass_id, resident_id, verifier_id, access_code,
  method, outcome, reason, logged_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		rec.ID, passID, residentID, rec.VerifierID, rec.AccessCode,
		rec.Method, outcome, reason, rec.LoggedAt.UTC().UnixMilli(),
	)
	return err
}

func (s *AccessLogStore) List(ctx context.Context, residentID string) ([]store.AccessLogRecord, error) {
	q := `
SELECT log_id, pass_id, resident_id, verifier_id, access_code,
       method, outcome, reason, logged_at_ms
FROM access_logs
`
	args := []any{}
	if residentID != "" {
		q += "WHERE resident_id = ?\n"
		args = append(args, residentID)
	}
	q += "ORDER BY logged_at_ms DESC;"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("List query: %w", err)
	}
	defer rows.Close()

	var out []store.AccessLogRecord
	for rows.Next() {
		var (
			rec      store.AccessLogRecord
			passID   sql.NullString
			resident sql.NullString
			loggedMs int64
		)
		if err := rows.Scan(
			&rec.ID, &passID, &resident, &rec.VerifierID, &rec.AccessCode,
			&rec.Method, &rec.Outcome, &rec.Reason, &loggedMs,
		); err != nil {
			return nil, fmt.Errorf("List scan: %w", err)
		}
		rec.PassID = passID.String
		rec.ResidentID = resident.String
		rec.LoggedAt = time.UnixMilli(loggedMs).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List rows: %w", err)
	}
	return out, nil
}

// PruneOlderThan deletes audit rows logged before the cutoff.  Uses the
// idx_access_logs_time index for an efficient range scan.
func (s *AccessLogStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM access_logs
WHERE logged_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

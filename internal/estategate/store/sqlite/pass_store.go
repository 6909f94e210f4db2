package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/estategate/server/internal/db"
	"github.com/estategate/server/internal/estategate/store"
)

type PassStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewPassStore(db *sql.DB, writer *dbpkg.Worker) *PassStore {
	return &PassStore{db: db, writer: writer}
}

// Insert persists the pass.  Active-code uniqueness rests on the partial
// unique index ux_passes_active_code; before inserting we demote any stale
// active pass whose expiry has lapsed so its code can be recycled.  A
// constraint hit from a genuinely live holder maps to store.ErrCodeTaken.
func (s *PassStore) Insert(ctx context.Context, rec store.PassRecord) error {
	if rec.State == "" {
		rec.State = store.StateActive
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var scheduledMs any
	if rec.ScheduledVisitAt != nil {
		scheduledMs = rec.ScheduledVisitAt.UTC().UnixMilli()
	}

	var estateID any
	if rec.EstateID != "" {
		estateID = rec.EstateID
	}

	nowMs := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
UPDATE visitor_passes
SET state = 'expired'
WHERE access_code = ? AND state = 'active' AND expires_at_ms <= ?;
`, rec.AccessCode, nowMs); err != nil {
			return fmt.Errorf("Insert demote stale: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO visitor_passes(
  pass_id, visitor_name, access_code, resident_id, estate_id,
  purpose, phone, state, created_at_ms, expires_at_ms, scheduled_visit_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
			rec.ID, rec.VisitorName, rec.AccessCode, rec.ResidentID, estateID,
			rec.Purpose, rec.Phone, rec.State,
			rec.CreatedAt.UTC().UnixMilli(), rec.ExpiresAt.UTC().UnixMilli(), scheduledMs,
		); err != nil {
			if isUniqueViolation(err) {
				return store.ErrCodeTaken
			}
			return fmt.Errorf("Insert pass: %w", err)
		}

		return nil
	})
}

func (s *PassStore) FindByCode(ctx context.Context, code string, now time.Time) (*store.PassRecord, error) {
	nowMs := now.UTC().UnixMilli()

	// Prefer the live pass; otherwise the newest stale record with the code,
	// so recycled codes deny with the right reason instead of "not found".
	row := s.db.QueryRowContext(ctx, `
SELECT pass_id, visitor_name, access_code, resident_id, estate_id,
       purpose, phone, state, created_at_ms, expires_at_ms,
       scheduled_visit_at_ms, consumed_at_ms
FROM visitor_passes
WHERE access_code = ?
ORDER BY (state = 'active' AND expires_at_ms > ?) DESC, created_at_ms DESC
LIMIT 1;
`, code, nowMs)

	rec, err := scanPass(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindByCode: %w", err)
	}
	return rec, nil
}

func (s *PassStore) HasActiveCode(ctx context.Context, code string, now time.Time) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
SELECT 1 FROM visitor_passes
WHERE access_code = ? AND state = 'active' AND expires_at_ms > ?
LIMIT 1;
`, code, now.UTC().UnixMilli()).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("HasActiveCode: %w", err)
	}
	return true, nil
}

func (s *PassStore) ListByResident(ctx context.Context, residentID string) ([]store.PassRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT pass_id, visitor_name, access_code, resident_id, estate_id,
       purpose, phone, state, created_at_ms, expires_at_ms,
       scheduled_visit_at_ms, consumed_at_ms
FROM visitor_passes
WHERE resident_id = ?
ORDER BY created_at_ms DESC;
`, residentID)
	if err != nil {
		return nil, fmt.Errorf("ListByResident query: %w", err)
	}
	defer rows.Close()

	var out []store.PassRecord
	for rows.Next() {
		rec, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByResident scan: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByResident rows: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPass(r rowScanner) (*store.PassRecord, error) {
	var (
		rec         store.PassRecord
		estateID    sql.NullString
		createdMs   int64
		expiresMs   int64
		scheduledMs sql.NullInt64
		consumedMs  sql.NullInt64
	)

	err := r.Scan(
		&rec.ID, &rec.VisitorName, &rec.AccessCode, &rec.ResidentID, &estateID,
		&rec.Purpose, &rec.Phone, &rec.State, &createdMs, &expiresMs,
		&scheduledMs, &consumedMs,
	)
	if err != nil {
		return nil, err
	}

	rec.EstateID = estateID.String
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	rec.ExpiresAt = time.UnixMilli(expiresMs).UTC()
	if scheduledMs.Valid {
		t := time.UnixMilli(scheduledMs.Int64).UTC()
		rec.ScheduledVisitAt = &t
	}
	if consumedMs.Valid {
		t := time.UnixMilli(consumedMs.Int64).UTC()
		rec.ConsumedAt = &t
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type SeedDevOptions struct {
	// DefaultTTLMillis, when > 0, is written as the seeded estate's visitor
	// TTL override so dev behaves like a configured tenant.
	DefaultTTLMillis int64
}

// SeedDev inserts a starter estate and two residents so the register/verify
// flow works out of the box in dev.  Safe to run repeatedly.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	now := time.Now().UTC().UnixMilli()

	var ttl any
	if opt.DefaultTTLMillis > 0 {
		ttl = opt.DefaultTTLMillis
	}

	if _, err := db.ExecContext(ctx, `
INSERT INTO estates(estate_id, name, address, visitor_ttl_ms, created_at_ms, updated_at_ms)
VALUES ('estate_dev', 'Greenfield Court', '12 Dev Lane', ?, ?, ?)
ON CONFLICT(estate_id) DO UPDATE SET
  visitor_ttl_ms = excluded.visitor_ttl_ms,
  updated_at_ms  = excluded.updated_at_ms;
`, ttl, now, now); err != nil {
		return fmt.Errorf("seed estate: %w", err)
	}

	residents := []struct {
		id, name, apartment, phone string
	}{
		{"resident-001", "Ada Obi", "A-14", "+2348012345678"},
		{"resident-002", "Tunde Bello", "B-03", ""},
	}

	for _, r := range residents {
		if _, err := db.ExecContext(ctx, `
INSERT INTO residents(resident_id, estate_id, name, apartment, phone, created_at_ms, updated_at_ms)
VALUES (?, 'estate_dev', ?, ?, ?, ?, ?)
ON CONFLICT(resident_id) DO UPDATE SET
  name          = excluded.name,
  apartment     = excluded.apartment,
  phone         = excluded.phone,
  updated_at_ms = excluded.updated_at_ms;
`, r.id, r.name, r.apartment, r.phone, now, now); err != nil {
			return fmt.Errorf("seed resident %s: %w", r.id, err)
		}
	}

	return nil
}

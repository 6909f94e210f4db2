package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/estategate/server/internal/estategate/store"
)

// EstateStore reads the admin-owned estates directory.
type EstateStore struct {
	db *sql.DB
}

func NewEstateStore(db *sql.DB) *EstateStore {
	return &EstateStore{db: db}
}

func (s *EstateStore) Get(ctx context.Context, estateID string) (*store.EstateRecord, error) {
	estateID = strings.TrimSpace(estateID)
	if estateID == "" {
		return nil, nil
	}

	var (
		rec   store.EstateRecord
		ttlMs sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT estate_id, name, address, visitor_ttl_ms
FROM estates
WHERE estate_id = ?;
`, estateID).Scan(&rec.ID, &rec.Name, &rec.Address, &ttlMs)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get estate: %w", err)
	}

	if ttlMs.Valid && ttlMs.Int64 > 0 {
		rec.VisitorTTL = time.Duration(ttlMs.Int64) * time.Millisecond
	}
	return &rec, nil
}

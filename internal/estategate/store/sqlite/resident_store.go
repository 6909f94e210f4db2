package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/estategate/server/internal/estategate/store"
)

// ResidentStore reads the admin-owned residents directory.  This subsystem
// never writes resident rows, so no worker is needed.
type ResidentStore struct {
	db *sql.DB
}

func NewResidentStore(db *sql.DB) *ResidentStore {
	return &ResidentStore{db: db}
}

func (s *ResidentStore) Get(ctx context.Context, residentID string) (*store.ResidentRecord, error) {
	residentID = strings.TrimSpace(residentID)
	if residentID == "" {
		return nil, nil
	}

	var (
		rec      store.ResidentRecord
		estateID sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT resident_id, estate_id, name, apartment, phone
FROM residents
WHERE resident_id = ?;
`, residentID).Scan(&rec.ID, &estateID, &rec.Name, &rec.Apartment, &rec.Phone)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get resident: %w", err)
	}

	rec.EstateID = estateID.String
	return &rec, nil
}

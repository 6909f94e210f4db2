package service

import (
	"context"
	"strings"
	"time"

	"github.com/estategate/server/internal/estategate/store"
	"github.com/estategate/server/internal/estategate/types"
)

// LogService exposes the audit trail to security staff (all rows) and to
// residents (their own rows).
type LogService struct {
	logs store.AccessLogStore
}

func NewLogService(logs store.AccessLogStore) *LogService {
	return &LogService{logs: logs}
}

func (s *LogService) List(ctx context.Context, residentID string) (types.AccessLogListResponse, error) {
	recs, err := s.logs.List(ctx, strings.TrimSpace(residentID))
	if err != nil {
		return types.AccessLogListResponse{}, err
	}

	out := make([]types.AccessLogView, 0, len(recs))
	for _, r := range recs {
		out = append(out, types.AccessLogView{
			ID:         r.ID,
			PassID:     r.PassID,
			ResidentID: r.ResidentID,
			VerifierID: r.VerifierID,
			AccessCode: r.AccessCode,
			Method:     r.Method,
			Outcome:    r.Outcome,
			Reason:     r.Reason,
			LoggedAt:   r.LoggedAt.Format(time.RFC3339),
		})
	}

	return types.AccessLogListResponse{OK: true, Count: len(out), Logs: out}, nil
}

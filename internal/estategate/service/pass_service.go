package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/estategate/server/internal/estategate/store"
	"github.com/estategate/server/internal/estategate/types"
	"github.com/estategate/server/internal/metrics"
	"github.com/estategate/server/internal/notify"
)

var (
	ErrInvalidVisitorName = errors.New("visitor_name is required")
	ErrInvalidResidentID  = errors.New("resident_id is required")
	ErrUnknownResident    = errors.New("resident not found")
)

const defaultPurpose = "Visit"

type PassService struct {
	passes    store.PassStore
	residents *ResidentDirectory
	expiry    *ExpiryPolicy
	gen       *CodeGenerator
	sink      notify.Sink
	metrics   *metrics.Metrics
	logger    *log.Logger
}

func NewPassService(
	passes store.PassStore,
	residents *ResidentDirectory,
	expiry *ExpiryPolicy,
	gen *CodeGenerator,
	sink notify.Sink,
	m *metrics.Metrics,
	logger *log.Logger,
) *PassService {
	return &PassService{
		passes:    passes,
		residents: residents,
		expiry:    expiry,
		gen:       gen,
		sink:      sink,
		metrics:   m,
		logger:    logger,
	}
}

// Register creates a visitor pass: resolves the owning resident, stamps the
// expiry from estate policy, generates a unique code and persists the pass.
// A write-time code collision (another registration won the race between our
// existence check and the insert) gets exactly one retry with a fresh code.
func (s *PassService) Register(ctx context.Context, req types.RegisterPassRequest) (types.RegisterPassResponse, error) {
	now := time.Now().UTC()

	name := strings.TrimSpace(req.VisitorName)
	if name == "" {
		return types.RegisterPassResponse{}, ErrInvalidVisitorName
	}
	residentID := strings.TrimSpace(req.ResidentID)
	if residentID == "" {
		return types.RegisterPassResponse{}, ErrInvalidResidentID
	}

	resident, err := s.residents.Get(ctx, residentID)
	if err != nil {
		return types.RegisterPassResponse{}, err
	}
	if resident == nil {
		return types.RegisterPassResponse{}, ErrUnknownResident
	}

	// Denormalize the estate onto the pass; it is only ever used to pick
	// the expiry policy.
	estateID := strings.TrimSpace(req.EstateID)
	if estateID == "" {
		estateID = resident.EstateID
	}

	ttl, err := s.expiry.TTLFor(ctx, estateID)
	if err != nil {
		return types.RegisterPassResponse{}, err
	}

	purpose := strings.TrimSpace(req.Purpose)
	if purpose == "" {
		purpose = defaultPurpose
	}

	rec := store.PassRecord{
		VisitorName:      name,
		ResidentID:       residentID,
		EstateID:         estateID,
		Purpose:          purpose,
		Phone:            strings.TrimSpace(req.Phone),
		State:            store.StateActive,
		CreatedAt:        now,
		ExpiresAt:        ComputeExpiry(now, ttl),
		ScheduledVisitAt: parseOptionalTimestamp(req.ScheduledVisitAt),
	}

	exists := func(ctx context.Context, code string) (bool, error) {
		return s.passes.HasActiveCode(ctx, code, now)
	}

	for attempt := 0; ; attempt++ {
		code, fallback, err := s.gen.Generate(ctx, exists)
		if err != nil {
			return types.RegisterPassResponse{}, err
		}
		if fallback {
			s.metrics.CodeFallbacks.Inc()
			s.logger.Printf("access code generator exhausted retries; using timestamp fallback")
		}

		rec.ID = uuid.NewString()
		rec.AccessCode = code

		err = s.passes.Insert(ctx, rec)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrCodeTaken) && attempt == 0 {
			s.metrics.InsertConflicts.Inc()
			continue
		}
		return types.RegisterPassResponse{}, err
	}

	s.metrics.CodesGenerated.Inc()

	emit(ctx, s.sink, s.logger, notify.Event{
		Name: notify.EventPassCreated,
		At:   now,
		Fields: map[string]any{
			"pass_id":     rec.ID,
			"resident_id": rec.ResidentID,
			"estate_id":   rec.EstateID,
			"expires_at":  rec.ExpiresAt.Format(time.RFC3339),
		},
	})

	return types.RegisterPassResponse{
		OK:         true,
		ID:         rec.ID,
		AccessCode: rec.AccessCode,
		ExpiresAt:  rec.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// ListByResident returns the resident's passes, newest first.  The displayed
// state reflects computed expiry: a stored-active pass past its expiry shows
// as expired even though no sweep ever rewrote the row.
func (s *PassService) ListByResident(ctx context.Context, residentID string) (types.PassListResponse, error) {
	residentID = strings.TrimSpace(residentID)
	if residentID == "" {
		return types.PassListResponse{}, ErrInvalidResidentID
	}

	recs, err := s.passes.ListByResident(ctx, residentID)
	if err != nil {
		return types.PassListResponse{}, err
	}

	now := time.Now().UTC()
	out := make([]types.PassSummary, 0, len(recs))
	for _, p := range recs {
		state := p.State
		if state == store.StateActive && !now.Before(p.ExpiresAt) {
			state = store.StateExpired
		}
		sum := types.PassSummary{
			ID:          p.ID,
			VisitorName: p.VisitorName,
			AccessCode:  p.AccessCode,
			Purpose:     p.Purpose,
			State:       state,
			CreatedAt:   p.CreatedAt.Format(time.RFC3339),
			ExpiresAt:   p.ExpiresAt.Format(time.RFC3339),
		}
		if p.ScheduledVisitAt != nil {
			sum.ScheduledVisitAt = p.ScheduledVisitAt.Format(time.RFC3339)
		}
		out = append(out, sum)
	}

	return types.PassListResponse{OK: true, Count: len(out), Passes: out}, nil
}

// emit publishes an event and swallows any sink failure — downstream
// delivery must never fail the operation that produced the event.
func emit(ctx context.Context, sink notify.Sink, logger *log.Logger, ev notify.Event) {
	if sink == nil {
		return
	}
	if err := sink.Publish(ctx, ev); err != nil {
		logger.Printf("event publish %s failed: %v", ev.Name, err)
	}
}

// parseOptionalTimestamp attempts to parse a client-supplied timestamp.
// Returns nil if the string is empty or unparseable.
func parseOptionalTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		u := t.UTC()
		return &u
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		u := t.UTC()
		return &u
	}
	return nil
}

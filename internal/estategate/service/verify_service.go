package service

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/estategate/server/internal/estategate/store"
	"github.com/estategate/server/internal/estategate/types"
	"github.com/estategate/server/internal/metrics"
	"github.com/estategate/server/internal/notify"
)

var (
	ErrInvalidCode       = errors.New("code must be exactly 4 digits")
	ErrInvalidVerifierID = errors.New("verifier_id is required")
	ErrInvalidMethod     = errors.New(`method must be "code-entry" or "qr-scan"`)
)

// Denial reasons.  These are business outcomes, not errors.
const (
	ReasonNotFound    = "not_found"
	ReasonExpired     = "expired"
	ReasonAlreadyUsed = "already_used"
)

const (
	placeholderNotProvided = "Not provided"
	placeholderUnknown     = "Unknown"
)

var codePattern = regexp.MustCompile(`^\d{4}$`)

type VerifyService struct {
	passes    store.PassStore
	logs      store.AccessLogStore
	residents *ResidentDirectory
	sink      notify.Sink
	metrics   *metrics.Metrics
	logger    *log.Logger
}

func NewVerifyService(
	passes store.PassStore,
	logs store.AccessLogStore,
	residents *ResidentDirectory,
	sink notify.Sink,
	m *metrics.Metrics,
	logger *log.Logger,
) *VerifyService {
	return &VerifyService{
		passes:    passes,
		logs:      logs,
		residents: residents,
		sink:      sink,
		metrics:   m,
		logger:    logger,
	}
}

// Verify decides a gate request.  Denials (not found, expired, already used)
// are normal outcomes carried in the response; only malformed input or a
// store failure returns an error.  Every attempt, whichever way it goes,
// lands exactly one audit row; on a grant the row and the pass's
// Active→Consumed transition commit together, so two verifiers racing on the
// same code cannot both be granted.
func (s *VerifyService) Verify(ctx context.Context, req types.VerifyRequest) (types.VerifyResponse, error) {
	now := time.Now().UTC()

	code := strings.TrimSpace(req.Code)
	if !codePattern.MatchString(code) {
		return types.VerifyResponse{}, ErrInvalidCode
	}
	verifier := strings.TrimSpace(req.VerifierID)
	if verifier == "" {
		return types.VerifyResponse{}, ErrInvalidVerifierID
	}
	method := strings.TrimSpace(req.Method)
	if method != store.MethodCodeEntry && method != store.MethodQRScan {
		return types.VerifyResponse{}, ErrInvalidMethod
	}

	pass, err := s.passes.FindByCode(ctx, code, now)
	if err != nil {
		return types.VerifyResponse{}, err
	}

	if pass == nil {
		return s.deny(ctx, nil, code, verifier, method, ReasonNotFound, now)
	}
	if !now.Before(pass.ExpiresAt) {
		return s.deny(ctx, pass, code, verifier, method, ReasonExpired, now)
	}
	if pass.State != store.StateActive {
		return s.deny(ctx, pass, code, verifier, method, ReasonAlreadyUsed, now)
	}

	granted, err := s.logs.RecordGrant(ctx, store.AccessLogRecord{
		ID:         uuid.NewString(),
		PassID:     pass.ID,
		ResidentID: pass.ResidentID,
		VerifierID: verifier,
		AccessCode: code,
		Method:     method,
		LoggedAt:   now,
	}, now)
	if err != nil {
		return types.VerifyResponse{}, err
	}
	if !granted {
		// A racing verifier consumed the pass between our read and the
		// conditional write; the store already logged the denial.
		s.observe(ctx, pass.ID, verifier, store.OutcomeDenied, ReasonAlreadyUsed, now)
		return deniedResponse(ReasonAlreadyUsed, now), nil
	}

	s.observe(ctx, pass.ID, verifier, store.OutcomeGranted, "", now)

	return types.VerifyResponse{
		OK:         true,
		Outcome:    store.OutcomeGranted,
		ServerTime: now.Format(time.RFC3339Nano),
		Visitor: &types.VisitorView{
			Name:       pass.VisitorName,
			Phone:      orPlaceholder(pass.Phone, placeholderNotProvided),
			Purpose:    orPlaceholder(pass.Purpose, defaultPurpose),
			AccessCode: pass.AccessCode,
			ExpiresAt:  pass.ExpiresAt.Format(time.RFC3339),
		},
		Resident: s.redactedResident(ctx, pass.ResidentID),
	}, nil
}

func (s *VerifyService) deny(
	ctx context.Context,
	pass *store.PassRecord,
	code, verifier, method, reason string,
	now time.Time,
) (types.VerifyResponse, error) {
	entry := store.AccessLogRecord{
		ID:         uuid.NewString(),
		VerifierID: verifier,
		AccessCode: code,
		Method:     method,
		Reason:     reason,
		LoggedAt:   now,
	}
	passID := ""
	if pass != nil {
		entry.PassID = pass.ID
		entry.ResidentID = pass.ResidentID
		passID = pass.ID
	}

	// An audit append failure is an infrastructure failure for the whole
	// request: the caller retries the verification, which is safe because
	// denial paths are idempotent.
	if err := s.logs.RecordDenial(ctx, entry); err != nil {
		return types.VerifyResponse{}, err
	}

	s.observe(ctx, passID, verifier, store.OutcomeDenied, reason, now)
	return deniedResponse(reason, now), nil
}

func (s *VerifyService) observe(ctx context.Context, passID, verifier, outcome, reason string, now time.Time) {
	s.metrics.ObserveVerification(outcome, reason)
	emit(ctx, s.sink, s.logger, notify.Event{
		Name: notify.EventPassVerified,
		At:   now,
		Fields: map[string]any{
			"pass_id":     passID,
			"verifier_id": verifier,
			"outcome":     outcome,
			"reason":      reason,
		},
	})
}

// redactedResident builds the owner view shown to security staff.  The grant
// is already durable by the time this runs, so a directory failure degrades
// to placeholders instead of failing the request.
func (s *VerifyService) redactedResident(ctx context.Context, residentID string) *types.ResidentView {
	rec, err := s.residents.Get(ctx, residentID)
	if err != nil {
		s.logger.Printf("resident lookup after grant failed: %v", err)
		rec = nil
	}
	if rec == nil {
		return &types.ResidentView{
			Name:      placeholderUnknown,
			Apartment: placeholderUnknown,
			Phone:     placeholderNotProvided,
		}
	}
	return &types.ResidentView{
		Name:      orPlaceholder(rec.Name, placeholderUnknown),
		Apartment: orPlaceholder(rec.Apartment, placeholderUnknown),
		Phone:     orPlaceholder(rec.Phone, placeholderNotProvided),
	}
}

func deniedResponse(reason string, now time.Time) types.VerifyResponse {
	return types.VerifyResponse{
		OK:         true,
		Outcome:    store.OutcomeDenied,
		Reason:     reason,
		ServerTime: now.Format(time.RFC3339Nano),
	}
}

func orPlaceholder(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/estategate/server/internal/estategate/service"
	"github.com/estategate/server/internal/estategate/types"
)

type Dependencies struct {
	Logger        *log.Logger
	Addr          string
	PassService   *service.PassService
	VerifyService *service.VerifyService
	LogService    *service.LogService
}

type Server struct {
	httpServer    *http.Server
	logger        *log.Logger
	mux           *http.ServeMux
	passService   *service.PassService
	verifyService *service.VerifyService
	logService    *service.LogService
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:        d.Logger,
		mux:           mux,
		passService:   d.PassService,
		verifyService: d.VerifyService,
		logService:    d.LogService,
	}

	mux.HandleFunc("POST /v1/passes", s.handleRegisterPass)
	mux.HandleFunc("GET /v1/passes", s.handleListPasses)
	mux.HandleFunc("POST /v1/passes/verify", s.handleVerify)
	mux.HandleFunc("GET /v1/logs", s.handleListLogs)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRegisterPass(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterPassRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	resp, err := s.passService.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVisitorName):
			writeError(w, http.StatusBadRequest, "invalid_visitor_name", err.Error())
		case errors.Is(err, service.ErrInvalidResidentID):
			writeError(w, http.StatusBadRequest, "invalid_resident_id", err.Error())
		case errors.Is(err, service.ErrUnknownResident):
			writeError(w, http.StatusNotFound, "unknown_resident", err.Error())
		default:
			s.logger.Printf("register pass error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPasses(w http.ResponseWriter, r *http.Request) {
	residentID := r.URL.Query().Get("resident_id")

	resp, err := s.passService.ListByResident(r.Context(), residentID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResidentID) {
			writeError(w, http.StatusBadRequest, "invalid_resident_id", err.Error())
			return
		}
		s.logger.Printf("list passes error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req types.VerifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	resp, err := s.verifyService.Verify(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			writeError(w, http.StatusBadRequest, "invalid_code", err.Error())
		case errors.Is(err, service.ErrInvalidVerifierID):
			writeError(w, http.StatusBadRequest, "invalid_verifier_id", err.Error())
		case errors.Is(err, service.ErrInvalidMethod):
			writeError(w, http.StatusBadRequest, "invalid_method", err.Error())
		default:
			s.logger.Printf("verify error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	// Business denials are 200 with outcome=denied in the body; only
	// malformed input and infrastructure failures are HTTP errors.
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	residentID := r.URL.Query().Get("resident_id")

	resp, err := s.logService.List(r.Context(), residentID)
	if err != nil {
		s.logger.Printf("list logs error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

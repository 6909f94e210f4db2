package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/estategate/server/internal/estategate/service"
	"github.com/estategate/server/internal/estategate/store"
	"github.com/estategate/server/internal/estategate/store/memory"
	"github.com/estategate/server/internal/estategate/types"
	"github.com/estategate/server/internal/httpapi"
	"github.com/estategate/server/internal/metrics"
	"github.com/estategate/server/internal/notify"
)

// newTestServer wires up the full dependency graph using in-memory stores
// and returns an httptest.Server whose URL can be hit with a plain http.Client.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := log.New(io.Discard, "", 0)
	passes := memory.NewPassStore()
	logs := memory.NewAccessLogStore(passes)

	residents := service.NewResidentDirectory(memory.NewResidentStore([]store.ResidentRecord{
		{ID: "resident-1", EstateID: "estate-1", Name: "Ada Obi", Apartment: "A-14", Phone: "+2348012345678"},
	}))
	expiry := service.NewExpiryPolicy(memory.NewEstateStore([]store.EstateRecord{
		{ID: "estate-1", Name: "Greenfield Court"},
	}), 30*time.Minute)

	m := metrics.NewWith(prometheus.NewRegistry())
	sink := notify.NewMemorySink()

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:        logger,
		Addr:          ":0",
		PassService:   service.NewPassService(passes, residents, expiry, service.NewCodeGenerator(nil), sink, m, logger),
		VerifyService: service.NewVerifyService(passes, logs, residents, sink, m, logger),
		LogService:    service.NewLogService(logs),
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func createPass(t *testing.T, ts *httptest.Server) types.RegisterPassResponse {
	t.Helper()

	resp := postJSON(t, ts.URL+"/v1/passes",
		`{"visitor_name":"Chidi Eze","resident_id":"resident-1","purpose":"Delivery"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var out types.RegisterPassResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

// ── Pass registration ────────────────────────────────────────────────────────

func TestRegisterPass_Created(t *testing.T) {
	ts := newTestServer(t)

	out := createPass(t, ts)
	if !out.OK {
		t.Error("expected ok=true")
	}
	if out.ID == "" {
		t.Error("expected a pass id")
	}
	if len(out.AccessCode) != 4 {
		t.Errorf("expected a 4-digit code, got %q", out.AccessCode)
	}
	if _, err := time.Parse(time.RFC3339, out.ExpiresAt); err != nil {
		t.Errorf("expires_at not RFC3339: %q", out.ExpiresAt)
	}
}

func TestRegisterPass_MissingName_BadRequest(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/passes", `{"resident_id":"resident-1"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRegisterPass_UnknownResident_NotFound(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/passes",
		`{"visitor_name":"Chidi Eze","resident_id":"resident-missing"}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRegisterPass_UnknownField_BadRequest(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/passes",
		`{"visitor_name":"Chidi Eze","resident_id":"resident-1","surprise":true}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.StatusCode)
	}
}

// ── Verification ─────────────────────────────────────────────────────────────

func TestVerify_Granted(t *testing.T) {
	ts := newTestServer(t)
	pass := createPass(t, ts)

	resp := postJSON(t, ts.URL+"/v1/passes/verify",
		`{"code":"`+pass.AccessCode+`","verifier_id":"guard-7","method":"code-entry"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out types.VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Outcome != "granted" {
		t.Fatalf("expected granted, got %q (%s)", out.Outcome, out.Reason)
	}
	if out.Visitor == nil || out.Visitor.Name != "Chidi Eze" {
		t.Errorf("expected visitor view, got %+v", out.Visitor)
	}
	if out.Resident == nil || out.Resident.Name != "Ada Obi" {
		t.Errorf("expected resident view, got %+v", out.Resident)
	}
}

func TestVerify_UnknownCode_DeniedWith200(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/passes/verify",
		`{"code":"9999","verifier_id":"guard-7","method":"code-entry"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("denials are business outcomes: expected 200, got %d", resp.StatusCode)
	}

	var out types.VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Outcome != "denied" || out.Reason != "not_found" {
		t.Errorf("expected denied/not_found, got %q/%q", out.Outcome, out.Reason)
	}
}

func TestVerify_MalformedCode_BadRequest(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/passes/verify",
		`{"code":"12","verifier_id":"guard-7","method":"code-entry"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ── Listings ─────────────────────────────────────────────────────────────────

func TestListPasses_ByResident(t *testing.T) {
	ts := newTestServer(t)
	createPass(t, ts)
	createPass(t, ts)

	resp, err := http.Get(ts.URL + "/v1/passes?resident_id=resident-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out types.PassListResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 || len(out.Passes) != 2 {
		t.Errorf("expected 2 passes, got count=%d len=%d", out.Count, len(out.Passes))
	}
}

func TestListPasses_MissingResidentID_BadRequest(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/passes")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListLogs_ReturnsAttempts(t *testing.T) {
	ts := newTestServer(t)
	pass := createPass(t, ts)

	// One grant and one denial.
	postJSON(t, ts.URL+"/v1/passes/verify",
		`{"code":"`+pass.AccessCode+`","verifier_id":"guard-7","method":"code-entry"}`)
	postJSON(t, ts.URL+"/v1/passes/verify",
		`{"code":"`+pass.AccessCode+`","verifier_id":"guard-7","method":"code-entry"}`)

	resp, err := http.Get(ts.URL + "/v1/logs")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out types.AccessLogListResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 {
		t.Fatalf("expected 2 log entries, got %d", out.Count)
	}
}

// ── Metrics endpoint ─────────────────────────────────────────────────────────

func TestMetricsEndpoint_Serves(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

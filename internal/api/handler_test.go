package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/flowboard/aicore"
	"github.com/flowboard/aicore/internal/feature"
	"github.com/flowboard/aicore/internal/observability"
	"github.com/flowboard/aicore/providers/offline"
)

func newTestServer(t *testing.T, opts ...aicore.Option) *httptest.Server {
	t.Helper()

	all := append([]aicore.Option{aicore.WithProvider(offline.New())}, opts...)
	client, err := aicore.New(all...)
	if err != nil {
		t.Fatalf("aicore.New: %v", err)
	}
	t.Cleanup(client.Close)

	store := feature.NewMemoryStore()
	due := time.Now().Add(24 * time.Hour)
	store.Put(&feature.Task{
		ID:            "t1",
		ProjectID:     "p1",
		Title:         "Ship billing export",
		Status:        "in_progress",
		Priority:      "medium",
		DueDate:       &due,
		EstimateHours: 12,
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(client, feature.Deps{AI: client, Store: store, Logger: logger}, logger)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := httptest.NewServer(observability.RequestIDMiddleware(AccessLog(logger, mux)))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, caller string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, http.NoBody)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestRiskEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/v1/tasks/t1/risk", "alice")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get(observability.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}

	var body feature.RiskAssessment
	decodeBody(t, resp, &body)
	if body.TaskID != "t1" || body.Source == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestBreakdownEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/v1/tasks/t1/breakdown", "alice")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body feature.BreakdownResult
	decodeBody(t, resp, &body)
	if len(body.Subtasks) == 0 {
		t.Errorf("body = %+v, want subtasks", body)
	}
}

func TestPriorityEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/v1/tasks/t1/priority", "alice")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body feature.PriorityRecommendation
	decodeBody(t, resp, &body)
	if body.Priority == "" || body.Source == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestMissingTaskReturns404(t *testing.T) {
	srv := newTestServer(t)

	resp := post(t, srv.URL+"/v1/tasks/ghost/risk", "alice")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	var body ErrorResponse
	decodeBody(t, resp, &body)
	if body.Error.Type != "not_found" {
		t.Errorf("error type = %q, want not_found", body.Error.Type)
	}
}

func TestDisabledReturns503(t *testing.T) {
	srv := newTestServer(t, aicore.WithEnabled(false))

	resp := post(t, srv.URL+"/v1/tasks/t1/breakdown", "alice")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}

	var body ErrorResponse
	decodeBody(t, resp, &body)
	if body.Error.Type != "ai_disabled" {
		t.Errorf("error type = %q, want ai_disabled", body.Error.Type)
	}
}

func TestQuotaExceededReturns429(t *testing.T) {
	srv := newTestServer(t, aicore.WithDailyQuota(1))

	if resp := post(t, srv.URL+"/v1/tasks/t1/risk", "bob"); resp.StatusCode != http.StatusOK {
		t.Fatalf("first call status = %d", resp.StatusCode)
	}

	resp := post(t, srv.URL+"/v1/tasks/t1/risk", "bob")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}

	var body ErrorResponse
	decodeBody(t, resp, &body)
	if body.Error.Type != "quota_exceeded" {
		t.Errorf("error type = %q, want quota_exceeded", body.Error.Type)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body aicore.Health
	decodeBody(t, resp, &body)
	if !body.Enabled || body.Provider != offline.ProviderName {
		t.Errorf("health = %+v", body)
	}
}

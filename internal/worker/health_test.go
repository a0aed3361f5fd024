package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestHealthEndpoints(t *testing.T) {
	hs := NewHealthServer(0, zap.NewNop())
	hs.AddCheck("redis", func(ctx context.Context) error { return nil })

	srv := httptest.NewServer(hs.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" || body.Checks["redis"] != "healthy" {
		t.Errorf("unexpected body: %+v", body)
	}

	ready, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	ready.Body.Close()
	if ready.StatusCode != http.StatusOK {
		t.Errorf("ready status = %d", ready.StatusCode)
	}
}

func TestHealthUnhealthy(t *testing.T) {
	hs := NewHealthServer(0, zap.NewNop())
	hs.AddCheck("redis", func(ctx context.Context) error { return nil })
	hs.AddCheck("telegram", func(ctx context.Context) error { return errors.New("unauthorized") })

	rec := httptest.NewRecorder()
	hs.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}

	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Checks["telegram"] != "unhealthy: unauthorized" || body.Checks["redis"] != "healthy" {
		t.Errorf("unexpected checks: %+v", body.Checks)
	}

	rec = httptest.NewRecorder()
	hs.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d", rec.Code)
	}
}

func TestHealthServerStopWithoutStart(t *testing.T) {
	if err := NewHealthServer(0, zap.NewNop()).Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Driver() string             { return "stub" }
func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthCheck(t *testing.T) {
	hc := NewHealthController(stubPinger{})
	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()

	hc.HealthCheck(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var body HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Store != "stub" {
		t.Errorf("unexpected body %+v", body)
	}

	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %v", rr.Header().Get("Content-Type"))
	}
}

func TestHealthCheckStoreDown(t *testing.T) {
	hc := NewHealthController(stubPinger{err: errors.New("connection refused")})
	rr := httptest.NewRecorder()

	hc.HealthCheck(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

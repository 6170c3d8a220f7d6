package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bargen/bargen-backend/pkg/config"
)

type pingFunc func(ctx context.Context) error

func (p pingFunc) Ping(ctx context.Context) error { return p(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	resp := httptest.NewRecorder()
	HealthReady(cfg, testLogger(), map[string]Pinger{"db": ok, "redis": ok, "gcs": nil})(resp, newRequest(http.MethodGet, "/health/ready", ""))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Header().Get("X-Bargen-Env") != "test" {
		t.Fatal("missing env header")
	}

	resp = httptest.NewRecorder()
	HealthReady(cfg, testLogger(), map[string]Pinger{"db": ok, "redis": down})(resp, newRequest(http.MethodGet, "/health/ready", ""))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	if code := errorCode(t, resp); code != "DEPENDENCY_ERROR" {
		t.Fatalf("unexpected code %s", code)
	}
}

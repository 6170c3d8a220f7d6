package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
)

type counterStore struct {
	counts map[string]int64
}

func (c *counterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.counts[key]++
	return c.counts[key], nil
}

func TestWriteRateLimitBlocksAfterLimit(t *testing.T) {
	store := &counterStore{counts: map[string]int64{}}
	mw := WriteRateLimit(NewWriteRateLimitPolicy(time.Minute, 2), store, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	send := func(method string, who types.Principal) int {
		req := httptest.NewRequest(method, "/api/v1/messages", nil)
		req = req.WithContext(WithCaller(req.Context(), auth.Caller{Principal: who, Role: enums.UserRoleUser}))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp.Code
	}

	if code := send(http.MethodPost, "alice"); code != http.StatusOK {
		t.Fatalf("first write: %d", code)
	}
	if code := send(http.MethodPost, "alice"); code != http.StatusOK {
		t.Fatalf("second write: %d", code)
	}
	if code := send(http.MethodPost, "alice"); code != http.StatusTooManyRequests {
		t.Fatalf("third write should be throttled, got %d", code)
	}
	if code := send(http.MethodGet, "alice"); code != http.StatusOK {
		t.Fatalf("reads are never throttled, got %d", code)
	}
	if code := send(http.MethodPost, "bob"); code != http.StatusOK {
		t.Fatalf("other callers have their own bucket, got %d", code)
	}
}

func TestWriteRateLimitDisabledPassesThrough(t *testing.T) {
	mw := WriteRateLimit(NewWriteRateLimitPolicy(0, 0), &counterStore{counts: map[string]int64{}}, nil)
	resp := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) })).
		ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected passthrough, got %d", resp.Code)
	}
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/config"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

type stubRoles map[types.Principal]enums.UserRole

func (s stubRoles) ResolveRole(_ context.Context, p types.Principal) (enums.UserRole, error) {
	if role, ok := s[p]; ok {
		return role, nil
	}
	return enums.UserRoleUser, nil
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(_ context.Context, _ string, _ types.Principal) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, principal types.Principal) string {
	t.Helper()
	token, _, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{Principal: principal})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func captureCaller(dst *auth.Caller) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*dst = CallerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateTreatsMissingTokenAsGuest(t *testing.T) {
	var caller auth.Caller
	handler := Authenticate(testJWT, stubSessionVerifier{ok: true}, stubRoles{}, nil)(captureCaller(&caller))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if caller.IsAuthenticated() || caller.Role != enums.UserRoleGuest {
		t.Fatalf("expected guest caller, got %+v", caller)
	}
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	var caller auth.Caller
	handler := Authenticate(testJWT, stubSessionVerifier{ok: true}, stubRoles{}, nil)(captureCaller(&caller))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthenticateResolvesRole(t *testing.T) {
	token := mintTestToken(t, testJWT, "admin-1")
	var caller auth.Caller
	handler := Authenticate(testJWT, stubSessionVerifier{ok: true}, stubRoles{"admin-1": enums.UserRoleAdmin}, nil)(captureCaller(&caller))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if caller.Principal != "admin-1" || !caller.IsAdmin() {
		t.Fatalf("unexpected caller %+v", caller)
	}
}

func TestAuthenticateRejectsRevokedSession(t *testing.T) {
	token := mintTestToken(t, testJWT, "bob")
	var caller auth.Caller
	handler := Authenticate(testJWT, stubSessionVerifier{ok: false}, stubRoles{}, nil)(captureCaller(&caller))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthenticateSessionStoreFailureIsDependency(t *testing.T) {
	token := mintTestToken(t, testJWT, "bob")
	var caller auth.Caller
	handler := Authenticate(testJWT, stubSessionVerifier{err: errors.New("redis down")}, stubRoles{}, nil)(captureCaller(&caller))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestRequireAuthAndAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	cases := []struct {
		name     string
		caller   auth.Caller
		mw       func(http.Handler) http.Handler
		wantCode int
	}{
		{"guest needs auth", auth.Guest(), RequireAuth(nil), http.StatusUnauthorized},
		{"user passes auth", auth.Caller{Principal: "u", Role: enums.UserRoleUser}, RequireAuth(nil), http.StatusNoContent},
		{"guest on admin", auth.Guest(), RequireAdmin(nil), http.StatusUnauthorized},
		{"user on admin", auth.Caller{Principal: "u", Role: enums.UserRoleUser}, RequireAdmin(nil), http.StatusForbidden},
		{"admin on admin", auth.Caller{Principal: "a", Role: enums.UserRoleAdmin}, RequireAdmin(nil), http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithCaller(req.Context(), tc.caller))
			resp := httptest.NewRecorder()
			tc.mw(ok).ServeHTTP(resp, req)
			if resp.Code != tc.wantCode {
				t.Fatalf("expected %d got %d", tc.wantCode, resp.Code)
			}
		})
	}
}

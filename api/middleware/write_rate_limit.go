package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bargen/bargen-backend/api/responses"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// WriteRateLimitPolicy caps mutating requests per caller in a fixed window.
type WriteRateLimitPolicy struct {
	window time.Duration
	limit  int
}

func NewWriteRateLimitPolicy(window time.Duration, limit int) WriteRateLimitPolicy {
	return WriteRateLimitPolicy{window: window, limit: limit}
}

func (p WriteRateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

// key buckets signed-in callers by principal and guests by client IP.
func (p WriteRateLimitPolicy) key(r *http.Request) string {
	caller := CallerFromContext(r.Context())
	if caller.IsAuthenticated() {
		return fmt.Sprintf("rl:write:principal:%s", caller.Principal)
	}
	if ip := clientIP(r); ip != "" {
		return fmt.Sprintf("rl:write:ip:%s", ip)
	}
	return ""
}

// WriteRateLimit throttles POST, PUT, PATCH and DELETE. Reads pass through.
func WriteRateLimit(policy WriteRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isWrite(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			key := policy.key(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			count, err := store.IncrWithTTL(ctx, key, policy.window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if count > int64(policy.limit) {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"attempts":       count,
						"limit":          policy.limit,
						"window_seconds": int(policy.window.Seconds()),
					})
					logg.Warn(logCtx, "write.rate_limit.blocked")
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(policy.window.Seconds())))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many changes, slow down"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

package middleware

import (
	"context"

	"github.com/bargen/bargen-backend/pkg/auth"
)

type contextKey string

const ctxCaller contextKey = "caller"

// CallerFromContext returns the resolved caller, or a guest when the request
// carried no credentials.
func CallerFromContext(ctx context.Context) auth.Caller {
	if ctx == nil {
		return auth.Guest()
	}
	if v, ok := ctx.Value(ctxCaller).(auth.Caller); ok {
		return v
	}
	return auth.Guest()
}

// WithCaller injects the caller, mostly for controller tests.
func WithCaller(ctx context.Context, caller auth.Caller) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCaller, caller)
}

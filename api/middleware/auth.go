package middleware

import (
	"net/http"
	"strings"

	"github.com/bargen/bargen-backend/api/responses"
	"github.com/bargen/bargen-backend/internal/users"
	pkgAuth "github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/auth/session"
	"github.com/bargen/bargen-backend/pkg/config"
	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
)

// Authenticate resolves the caller once per request. Requests without an
// Authorization header continue as guests; a presented but invalid token is
// rejected.
func Authenticate(cfg config.JWTConfig, verifier session.AccessSessionChecker, roles users.RoleResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if strings.TrimSpace(header) == "" {
				next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), pkgAuth.Guest())))
				return
			}
			token, ok := pkgAuth.BearerToken(header)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID, claims.Principal)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			role := enums.UserRoleUser
			if roles != nil {
				resolved, err := roles.ResolveRole(r.Context(), claims.Principal)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				role = resolved
			}
			caller := pkgAuth.Caller{Principal: claims.Principal, Role: role}

			ctx := WithCaller(r.Context(), caller)
			if logg != nil {
				ctx = logg.WithCaller(ctx, caller.Principal.String(), string(caller.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects guests.
func RequireAuth(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !CallerFromContext(r.Context()).IsAuthenticated() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

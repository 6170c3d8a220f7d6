package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bargen/bargen-backend/api/responses"
	"github.com/bargen/bargen-backend/api/validators"
	"github.com/bargen/bargen-backend/internal/users"
	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/types"
)

type profilePayload struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=320"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,phone,max=32"`
}

type rolePayload struct {
	Role string `json:"role" validate:"required"`
}

type roleResponse struct {
	Role enums.UserRole `json:"role"`
}

type adminResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

func MyProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "users")
			return
		}
		profile, err := svc.GetCallerUserProfile(ctx, callerOf(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func SaveMyProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "users")
			return
		}
		var payload profilePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		profile, err := svc.SaveCallerUserProfile(ctx, callerOf(r), users.SaveProfileInput{
			Name:  validators.SanitizeString(payload.Name, 200),
			Email: payload.Email,
			Phone: payload.Phone,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func UserProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "users")
			return
		}
		principal := types.ParsePrincipal(chi.URLParam(r, "principal"))
		if principal.IsZero() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "principal is required"))
			return
		}
		profile, err := svc.GetUserProfile(ctx, callerOf(r), principal)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// MyRole reports the caller's role; anonymous callers are guests.
func MyRole(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(r.Context(), logg, w, "users")
			return
		}
		responses.WriteSuccess(w, roleResponse{Role: svc.GetCallerUserRole(callerOf(r))})
	}
}

func AmIAdmin(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(r.Context(), logg, w, "users")
			return
		}
		responses.WriteSuccess(w, adminResponse{IsAdmin: svc.IsCallerAdmin(callerOf(r))})
	}
}

// AssignUserRole sets a stored role. Only admins reach this handler.
func AssignUserRole(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "users")
			return
		}
		principal := types.ParsePrincipal(chi.URLParam(r, "principal"))
		if principal.IsZero() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "principal is required"))
			return
		}
		var payload rolePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		role, err := enums.ParseUserRole(payload.Role)
		if err == nil && !role.Assignable() {
			err = fmt.Errorf("role %q cannot be stored", role)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "role must be admin or user"))
			return
		}
		if err := svc.AssignUserRole(ctx, callerOf(r), principal, role); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, roleResponse{Role: role})
	}
}

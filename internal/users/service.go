package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type profileRepository interface {
	FindByPrincipal(ctx context.Context, principal types.Principal) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
	SetRole(ctx context.Context, principal types.Principal, role enums.UserRole) error
}

// RoleResolver turns an authenticated principal into its effective role.
type RoleResolver interface {
	ResolveRole(ctx context.Context, principal types.Principal) (enums.UserRole, error)
}

// Service exposes profile and role operations.
type Service interface {
	RoleResolver
	GetCallerUserProfile(ctx context.Context, caller auth.Caller) (*UserProfileDTO, error)
	SaveCallerUserProfile(ctx context.Context, caller auth.Caller, input SaveProfileInput) (*UserProfileDTO, error)
	GetUserProfile(ctx context.Context, caller auth.Caller, principal types.Principal) (*UserProfileDTO, error)
	GetCallerUserRole(caller auth.Caller) enums.UserRole
	IsCallerAdmin(caller auth.Caller) bool
	AssignUserRole(ctx context.Context, caller auth.Caller, principal types.Principal, role enums.UserRole) error
}

type service struct {
	repo      profileRepository
	admins    map[types.Principal]struct{}
	validator *validator.Validate
}

// NewService builds the users service. bootstrapAdmins resolve as admin
// without a stored row.
func NewService(repo profileRepository, bootstrapAdmins []string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	admins := make(map[types.Principal]struct{}, len(bootstrapAdmins))
	for _, raw := range bootstrapAdmins {
		if p := types.ParsePrincipal(raw); !p.IsZero() {
			admins[p] = struct{}{}
		}
	}
	return &service{repo: repo, admins: admins, validator: validator.New()}, nil
}

func (s *service) ResolveRole(ctx context.Context, principal types.Principal) (enums.UserRole, error) {
	if principal.IsZero() {
		return enums.UserRoleGuest, nil
	}
	if _, ok := s.admins[principal]; ok {
		return enums.UserRoleAdmin, nil
	}
	profile, err := s.repo.FindByPrincipal(ctx, principal)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return enums.UserRoleUser, nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve role")
	}
	if !profile.Role.Assignable() {
		return enums.UserRoleUser, nil
	}
	return profile.Role, nil
}

// GetCallerUserProfile returns nil when the caller has not saved a profile yet.
func (s *service) GetCallerUserProfile(ctx context.Context, caller auth.Caller) (*UserProfileDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view your profile")
	}
	return s.find(ctx, caller.Principal)
}

func (s *service) SaveCallerUserProfile(ctx context.Context, caller auth.Caller, input SaveProfileInput) (*UserProfileDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to save your profile")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	email := trimmedOrNil(input.Email)
	if email != nil {
		if err := s.validator.Var(*email, "email"); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
		}
	}

	profile := &models.UserProfile{
		Principal: caller.Principal,
		Name:      name,
		Email:     email,
		Phone:     trimmedOrNil(input.Phone),
		Role:      enums.UserRoleUser,
	}
	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	return s.find(ctx, caller.Principal)
}

// GetUserProfile lets callers read their own profile; admins may read any.
func (s *service) GetUserProfile(ctx context.Context, caller auth.Caller, principal types.Principal) (*UserProfileDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view profiles")
	}
	if principal.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "principal is required")
	}
	if !caller.Is(principal) && !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "can only view your own profile")
	}
	return s.find(ctx, principal)
}

func (s *service) GetCallerUserRole(caller auth.Caller) enums.UserRole {
	if !caller.IsAuthenticated() {
		return enums.UserRoleGuest
	}
	return caller.Role
}

func (s *service) IsCallerAdmin(caller auth.Caller) bool {
	return caller.IsAdmin()
}

func (s *service) AssignUserRole(ctx context.Context, caller auth.Caller, principal types.Principal, role enums.UserRole) error {
	if !caller.IsAuthenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to assign roles")
	}
	if !caller.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can assign roles")
	}
	if principal.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "principal is required")
	}
	if !role.Assignable() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "role %q cannot be assigned", role)
	}
	if err := s.repo.SetRole(ctx, principal, role); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign role")
	}
	return nil
}

func (s *service) find(ctx context.Context, principal types.Principal) (*UserProfileDTO, error) {
	profile, err := s.repo.FindByPrincipal(ctx, principal)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return fromModel(profile), nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

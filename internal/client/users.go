package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bargen/bargen-backend/internal/users"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
)

type ProfileRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type roleResponse struct {
	Role enums.UserRole `json:"role"`
}

type adminResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

// GetMyProfile returns nil when the caller has not saved a profile yet.
func (c *Client) GetMyProfile(ctx context.Context) (*users.UserProfileDTO, error) {
	var out *users.UserProfileDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/users/me", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SaveMyProfile(ctx context.Context, req ProfileRequest) (*users.UserProfileDTO, error) {
	var out users.UserProfileDTO
	if err := c.do(ctx, call{method: http.MethodPut, path: "/users/me", body: req, out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUserProfile(ctx context.Context, principal types.Principal) (*users.UserProfileDTO, error) {
	var out *users.UserProfileDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/users/" + url.PathEscape(principal.String()), out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MyRole(ctx context.Context) (enums.UserRole, error) {
	var out roleResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: "/users/me/role", out: &out}); err != nil {
		return "", err
	}
	return out.Role, nil
}

func (c *Client) IsAdmin(ctx context.Context) (bool, error) {
	var out adminResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: "/users/me/admin", out: &out}); err != nil {
		return false, err
	}
	return out.IsAdmin, nil
}

func (c *Client) AssignUserRole(ctx context.Context, principal types.Principal, role enums.UserRole) error {
	path := "/admin/users/" + url.PathEscape(principal.String()) + "/role"
	return c.do(ctx, call{method: http.MethodPut, path: path, body: roleResponse{Role: role}, mutating: true})
}

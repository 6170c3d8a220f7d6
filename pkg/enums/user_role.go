package enums

import (
	"fmt"
	"strings"
)

// UserRole is the caller's authority level. Guest is never stored.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
	UserRoleGuest UserRole = "guest"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleUser,
	UserRoleGuest,
}

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Assignable reports whether the role can be persisted on a profile.
func (r UserRole) Assignable() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}

func ParseUserRole(value string) (UserRole, error) {
	normalized := UserRole(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

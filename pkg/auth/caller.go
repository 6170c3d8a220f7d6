package auth

import (
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
)

// Caller is the explicit session context handed to every service call.
type Caller struct {
	Principal types.Principal
	Role      enums.UserRole
}

// Guest is the caller without a session.
func Guest() Caller {
	return Caller{Role: enums.UserRoleGuest}
}

func (c Caller) IsAuthenticated() bool {
	return !c.Principal.IsZero() && c.Role != enums.UserRoleGuest && c.Role != ""
}

func (c Caller) IsAdmin() bool {
	return c.IsAuthenticated() && c.Role == enums.UserRoleAdmin
}

// Is reports whether the caller is the given principal.
func (c Caller) Is(p types.Principal) bool {
	return c.IsAuthenticated() && c.Principal == p
}

package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bargen/bargen-backend/pkg/types"
)

// AccessTokenPayload is what the caller controls when minting. An empty JTI
// gets a random one.
type AccessTokenPayload struct {
	Principal types.Principal
	JTI       string
}

// AccessTokenClaims is the body of an access token. Roles are not carried;
// they are resolved per request so a demotion takes effect immediately.
type AccessTokenClaims struct {
	Principal types.Principal `json:"principal"`
	jwt.RegisteredClaims
}

// Validate runs after the registered-claim checks in jwt.Parser.
func (c *AccessTokenClaims) Validate() error {
	switch {
	case c.Principal.IsZero():
		return ErrNoPrincipal
	case c.Subject != c.Principal.String():
		return errors.New("subject does not match principal")
	case c.ID == "":
		return errors.New("token carries no session id")
	}
	return nil
}

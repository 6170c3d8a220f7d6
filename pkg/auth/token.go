package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bargen/bargen-backend/pkg/config"
)

// clockSkew tolerated on exp/iat between the minting host and this one.
const clockSkew = 30 * time.Second

var (
	ErrNoSecret    = errors.New("jwt secret is required")
	ErrNoIssuer    = errors.New("jwt issuer is required")
	ErrNoPrincipal = errors.New("principal is required")
)

var signingMethod = jwt.SigningMethodHS256

// MintAccessToken signs an HS256 token for payload.Principal valid from now
// for cfg.AccessTokenTTL.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, *AccessTokenClaims, error) {
	if err := checkConfig(cfg, true); err != nil {
		return "", nil, err
	}
	if payload.Principal.IsZero() {
		return "", nil, ErrNoPrincipal
	}
	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}

	claims := &AccessTokenClaims{Principal: payload.Principal}
	claims.Issuer = cfg.Issuer
	claims.Subject = payload.Principal.String()
	claims.ID = jti
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL()))

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("sign access token: %w", err)
	}
	return signed, claims, nil
}

// ParseAccessToken verifies signature, issuer and expiry, then the claim
// invariants in AccessTokenClaims.Validate.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	if err := checkConfig(cfg, false); err != nil {
		return nil, err
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
	)
	claims := &AccessTokenClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}); err != nil {
		return nil, err
	}
	return claims, nil
}

// BearerToken extracts the credential from an Authorization header value. The
// scheme is matched case-insensitively; a bare token is accepted too.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, "bearer") {
		return "", false
	}
	if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "bearer") {
		header = strings.TrimSpace(rest)
	}
	return header, header != ""
}

func checkConfig(cfg config.JWTConfig, minting bool) error {
	if cfg.Secret == "" {
		return ErrNoSecret
	}
	if minting && cfg.Issuer == "" {
		return ErrNoIssuer
	}
	return nil
}

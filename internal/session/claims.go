// ABOUTME: Unverified inspection of JWT access tokens issued by the catalog service
// ABOUTME: Extracts subject and expiry so expired sessions can be treated as signed out

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned when a token is not a parseable JWT.
var ErrNotJWT = errors.New("token is not a JWT")

// Claims is the subset of token claims the console cares about.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Expired reports whether the token expired at or before now.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect parses token without verifying its signature. The catalog service
// remains the authority; this only avoids sending requests that must fail.
func Inspect(token string) (*Claims, error) {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrNotJWT
	}

	claims := &Claims{}
	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}

// Usable reports whether token is present and not known to be expired.
// Opaque (non-JWT) tokens are assumed usable.
func Usable(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	claims, err := Inspect(token)
	if err != nil {
		return true
	}
	return !claims.Expired(now)
}

package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaque is returned when a token is not a JWT and so cannot be inspected locally
var ErrOpaque = errors.New("token is opaque")

// Info describes an access token issued by the API.  The signature is not checked; this is for display only.
type Info struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// TokenType comes from the "stt" claim when present, e.g. "access" or "refresh"
	TokenType string
}

type claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"stt,omitempty"`
}

// Inspect decodes the claims of a JWT without verifying its signature
func Inspect(raw string) (*Info, error) {
	if raw == "" {
		return nil, ErrOpaque
	}

	var c claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &c); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrOpaque
		}
		return nil, fmt.Errorf("unable to read token claims: %w", err)
	}

	info := &Info{
		Subject:   c.Subject,
		Issuer:    c.Issuer,
		TokenType: c.TokenType,
	}
	if c.IssuedAt != nil {
		info.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		info.ExpiresAt = c.ExpiresAt.Time
	}
	return info, nil
}

// Expired reports whether the token has an expiry that is before now
func (i *Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && i.ExpiresAt.Before(now)
}

// ExpiresIn returns how long until the token expires, or zero if it has no expiry or already expired
func (i *Info) ExpiresIn(now time.Time) time.Duration {
	if i.ExpiresAt.IsZero() || i.ExpiresAt.Before(now) {
		return 0
	}
	return i.ExpiresAt.Sub(now)
}

package domain

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DevToken is the placeholder credential used in dev mode, where the local
// FaaS does not authenticate.
const DevToken = "local"

// ExpiresAt decodes the expiry claim of a JWT-shaped token without verifying
// its signature. The server is the source of truth for validity; only the
// exp claim is consumed locally.
func ExpiresAt(token string) (time.Time, bool) {
	if strings.TrimSpace(token) == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// ExpiresIn returns the remaining validity of token relative to now.
// An undecodable token, or one without an exp claim, is treated as already
// expired and yields zero.
func ExpiresIn(token string, now time.Time) time.Duration {
	exp, ok := ExpiresAt(token)
	if !ok {
		return 0
	}
	if d := exp.Sub(now); d > 0 {
		return d
	}
	return 0
}

// MaskToken shortens a token for display: first 6 and last 4 characters.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:6] + "..." + token[len(token)-4:]
}

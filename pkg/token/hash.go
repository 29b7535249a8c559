package token

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	fingerprintPrefix = "sha256:"
	fingerprintLength = 12
)

// Hash computes the hex-encoded SHA-256 hash of a token.
func Hash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// Fingerprint returns the short fingerprint of token, or "" for an empty
// token.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	return fingerprintPrefix + Hash(token)[:fingerprintLength]
}

// Package token fingerprints access tokens.
//
// A fingerprint is a short SHA-256 digest of a token. It identifies a token
// in status output and logs, so two tokens can be told apart or matched
// without either being shown.
//
// Format: "sha256:" followed by the first 12 hex characters of the digest.
package token

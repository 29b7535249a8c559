package domain

import "time"

// TokenSource records where the current session token came from.
type TokenSource string

const (
	SourceNone      TokenSource = "none"
	SourceEnv       TokenSource = "env"
	SourceFlag      TokenSource = "flag"
	SourceStored    TokenSource = "stored"
	SourceAcquired  TokenSource = "acquired"
	SourceRefreshed TokenSource = "refreshed"
	SourceDev       TokenSource = "dev"
)

// Session is a usable access credential. It lives for one CLI invocation;
// persistence between invocations goes through the credential record.
type Session struct {
	Token  string
	Source TokenSource

	// ExpiresAt is decoded from the token's exp claim; zero if unknown.
	ExpiresAt time.Time
}

// NewSession creates a Session and decodes the token expiry.
func NewSession(token string, source TokenSource) *Session {
	s := &Session{
		Token:  token,
		Source: source,
	}
	if exp, ok := ExpiresAt(token); ok {
		s.ExpiresAt = exp
	}
	return s
}

// ExpiresIn returns the remaining validity at now.
func (s *Session) ExpiresIn(now time.Time) time.Duration {
	return ExpiresIn(s.Token, now)
}

// SessionStatus is a read-only report of the current session.
type SessionStatus struct {
	Source      TokenSource `json:"source" yaml:"source"`
	Token       string      `json:"token,omitempty" yaml:"token,omitempty"` // masked
	Fingerprint string      `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	ExpiresIn   string      `json:"expires_in,omitempty" yaml:"expires_in,omitempty"`
	Stale       bool        `json:"stale" yaml:"stale"`
	Valid       *bool       `json:"valid,omitempty" yaml:"valid,omitempty"`
	ServiceURL  string      `json:"service_url" yaml:"service_url"`
	ConfigPath  string      `json:"config_path" yaml:"config_path"`
}

// ============================================================================
// Credential Record
// ============================================================================

// Default credential record values.
const (
	DefaultBaseURL   = "https://dashboard.metacall.io"
	DefaultAPIURL    = "https://api.metacall.io"
	DefaultDevURL    = "http://localhost:9000"
	DefaultRenewTime = int64(15 * 24 * time.Hour / time.Millisecond) // 15 days
)

// CredentialRecord is the persisted local profile.
type CredentialRecord struct {
	BaseURL   string `koanf:"baseURL" json:"baseURL" yaml:"baseURL"`
	APIURL    string `koanf:"apiURL" json:"apiURL" yaml:"apiURL"`
	DevURL    string `koanf:"devURL" json:"devURL" yaml:"devURL"`
	RenewTime int64  `koanf:"renewTime" json:"renewTime" yaml:"renewTime"` // milliseconds
	Token     string `koanf:"token" json:"token,omitempty" yaml:"token,omitempty"`
}

// DefaultCredentialRecord returns the hard-coded defaults merged into every
// loaded record.
func DefaultCredentialRecord() CredentialRecord {
	return CredentialRecord{
		BaseURL:   DefaultBaseURL,
		APIURL:    DefaultAPIURL,
		DevURL:    DefaultDevURL,
		RenewTime: DefaultRenewTime,
	}
}

// RenewThreshold returns the renewTime policy as a duration.
func (r CredentialRecord) RenewThreshold() time.Duration {
	return time.Duration(r.RenewTime) * time.Millisecond
}

// RecordPatch holds the fields to change in a credential record.
// Nil fields are left untouched.
type RecordPatch struct {
	BaseURL   *string
	APIURL    *string
	DevURL    *string
	RenewTime *int64
	Token     *string
}

// TokenPatch returns a patch that only replaces the token.
func TokenPatch(token string) RecordPatch {
	return RecordPatch{Token: &token}
}

// Apply returns r with the patch applied.
func (p RecordPatch) Apply(r CredentialRecord) CredentialRecord {
	if p.BaseURL != nil {
		r.BaseURL = *p.BaseURL
	}
	if p.APIURL != nil {
		r.APIURL = *p.APIURL
	}
	if p.DevURL != nil {
		r.DevURL = *p.DevURL
	}
	if p.RenewTime != nil {
		r.RenewTime = *p.RenewTime
	}
	if p.Token != nil {
		r.Token = *p.Token
	}
	return r
}

// IsEmpty reports whether the patch changes nothing.
func (p RecordPatch) IsEmpty() bool {
	return p.BaseURL == nil && p.APIURL == nil && p.DevURL == nil &&
		p.RenewTime == nil && p.Token == nil
}

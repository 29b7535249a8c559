package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/metacall-deploy-go/internal/cli/prompt/prompttest"
	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

// fakeAuth is an in-memory AuthClient.
type fakeAuth struct {
	mu sync.Mutex

	valid       map[string]bool
	validateErr error

	refreshed  map[string]string
	refreshErr error

	accounts map[string]string // email -> password
	tokens   map[string]string // email -> token
	loginErr error

	signup func(email, password, alias string) (string, error)

	calls []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		valid:     make(map[string]bool),
		refreshed: make(map[string]string),
		accounts:  make(map[string]string),
		tokens:    make(map[string]string),
	}
}

func (f *fakeAuth) addAccount(email, password, token string) {
	f.accounts[email] = password
	f.tokens[email] = token
	f.valid[token] = true
}

func (f *fakeAuth) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAuth) track(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (string, error) {
	f.track("login")
	if f.loginErr != nil {
		return "", f.loginErr
	}
	if pw, ok := f.accounts[email]; ok && pw == password {
		return f.tokens[email], nil
	}
	return "", domain.ErrInvalidCredential.WithDetails("Invalid email or password")
}

func (f *fakeAuth) Signup(ctx context.Context, email, password, alias string) (string, error) {
	f.track("signup")
	if f.signup != nil {
		return f.signup(email, password, alias)
	}
	if _, ok := f.accounts[email]; ok {
		return "", domain.ErrAccountExists.WithDetails("Account already exists")
	}
	return "Account created, please verify your email", nil
}

func (f *fakeAuth) Validate(ctx context.Context, token string) (bool, error) {
	f.track("validate")
	if f.validateErr != nil {
		return false, f.validateErr
	}
	return f.valid[token], nil
}

func (f *fakeAuth) Refresh(ctx context.Context, token string) (string, error) {
	f.track("refresh")
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	if fresh, ok := f.refreshed[token]; ok {
		return fresh, nil
	}
	return "", domain.ErrRefreshDenied.WithDetails("token revoked")
}

// fakeStore is an in-memory CredentialStore.
type fakeStore struct {
	record  domain.CredentialRecord
	exists  bool
	loads   int
	saves   int
	loadErr error
	saveErr error
}

func newFakeStore(token string) *fakeStore {
	rec := domain.DefaultCredentialRecord()
	rec.Token = token
	return &fakeStore{record: rec, exists: token != ""}
}

func (s *fakeStore) Load() (*domain.CredentialRecord, error) {
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	rec := s.record
	return &rec, nil
}

func (s *fakeStore) Save(patch domain.RecordPatch) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.record = patch.Apply(s.record)
	s.exists = true
	return nil
}

func (s *fakeStore) Delete() error {
	if !s.exists {
		return domain.ErrNotLoggedIn
	}
	s.exists = false
	s.record = domain.DefaultCredentialRecord()
	return nil
}

func (s *fakeStore) Path() string {
	return "/tmp/metacall/deploy/config.ini"
}

// fakeMetrics counts observations.
type fakeMetrics struct {
	validate map[string]int
	refresh  map[string]int
	attempts []domain.Outcome
	sessions []domain.TokenSource
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		validate: make(map[string]int),
		refresh:  make(map[string]int),
	}
}

func (m *fakeMetrics) ObserveValidate(result string, _ time.Duration) {
	m.validate[result]++
}

func (m *fakeMetrics) ObserveRefresh(result string, _ time.Duration) {
	m.refresh[result]++
}

func (m *fakeMetrics) ObserveAttempt(_ domain.Method, o domain.Outcome) {
	m.attempts = append(m.attempts, o)
}

func (m *fakeMetrics) ObserveSession(src domain.TokenSource, _ time.Duration) {
	m.sessions = append(m.sessions, src)
}

// jwtExpiring returns an HS256 token whose exp claim is now+d.
func jwtExpiring(t *testing.T, d time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"exp": time.Now().Add(d).Unix(),
		"sub": "user@example.com",
		"n":   d.String(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

// fixture wires the services over the fakes.
type fixture struct {
	auth     *fakeAuth
	store    *fakeStore
	script   *prompttest.Script
	metrics  *fakeMetrics
	attempts []domain.Attempt
	tokens   *TokenService
	acquirer *Acquirer
	session  *SessionService
}

func newFixture(t *testing.T, storedToken string, interactive bool, answers ...string) *fixture {
	t.Helper()
	f := &fixture{
		auth:    newFakeAuth(),
		store:   newFakeStore(storedToken),
		script:  prompttest.NewScript(answers...),
		metrics: newFakeMetrics(),
	}
	f.tokens = NewTokenService(f.auth, f.metrics)
	f.acquirer = NewAcquirer(f.tokens, f.auth, f.script, interactive,
		&AcquirerConfig{RetryInterval: 0},
		WithAcquirerMetrics(f.metrics),
		WithOnAttempt(func(a domain.Attempt) { f.attempts = append(f.attempts, a) }),
	)
	f.session = NewSessionService(f.store, f.tokens, f.acquirer,
		WithEnvLookup(func(string) (string, bool) { return "", false }),
		WithSessionMetrics(f.metrics),
	)
	return f
}

func (f *fixture) outcomes() []domain.Outcome {
	out := make([]domain.Outcome, len(f.attempts))
	for i, a := range f.attempts {
		out[i] = a.Outcome
	}
	return out
}

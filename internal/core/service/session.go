package service

import (
	"context"
	"os"
	"time"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
	"github.com/yndnr/metacall-deploy-go/internal/telemetry/logger"
	"github.com/yndnr/metacall-deploy-go/pkg/token"
)

// APIKeyEnv overrides every other token source when set.
const APIKeyEnv = "METACALL_API_KEY"

// CredentialStore persists the local credential record.
type CredentialStore interface {
	// Load returns the record merged over defaults; absent means defaults.
	Load() (*domain.CredentialRecord, error)
	// Save merges patch into the record and rewrites it atomically.
	Save(patch domain.RecordPatch) error
	// Delete removes the record, or fails with ErrNotLoggedIn.
	Delete() error
	// Path returns the record location, for reporting.
	Path() string
}

// SessionService runs the session lifecycle.
type SessionService struct {
	store    CredentialStore
	tokens   *TokenService
	acquirer *Acquirer
	metrics  Metrics

	lookupEnv func(string) (string, bool)
	now       func() time.Time
	expiresIn func(token string, now time.Time) time.Duration
	renewAt   time.Duration
}

// SessionOption configures a SessionService.
type SessionOption func(*SessionService)

// WithEnvLookup replaces os.LookupEnv for the token override.
func WithEnvLookup(fn func(string) (string, bool)) SessionOption {
	return func(s *SessionService) {
		s.lookupEnv = fn
	}
}

// WithRenewThreshold overrides the stored renewTime, e.g. with the value
// from the environment layer. Zero keeps the stored value.
func WithRenewThreshold(d time.Duration) SessionOption {
	return func(s *SessionService) {
		s.renewAt = d
	}
}

// WithSessionMetrics sets the metrics sink.
func WithSessionMetrics(m Metrics) SessionOption {
	return func(s *SessionService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewSessionService creates a new SessionService.
func NewSessionService(store CredentialStore, tokens *TokenService, acquirer *Acquirer, opts ...SessionOption) *SessionService {
	s := &SessionService{
		store:     store,
		tokens:    tokens,
		acquirer:  acquirer,
		metrics:   nopMetrics{},
		lookupEnv: os.LookupEnv,
		now:       time.Now,
		expiresIn: domain.ExpiresIn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================================
// EnsureSession
// ============================================================================

// EnsureSessionRequest contains parameters for EnsureSession.
type EnsureSessionRequest struct {
	// Acquisition carries the flag-supplied credentials and method hint.
	// A non-empty Acquisition.Token seeds the session ahead of the stored
	// record.
	Acquisition domain.AcquisitionRequest

	// Dev short-circuits to the local development token.
	Dev bool

	// Force skips the stored token and acquires a new one.
	Force bool
}

type sessionState int

const (
	stateSeed sessionState = iota
	stateValidate
	stateFreshness
	stateRefresh
	stateAcquire
	statePersist
	stateDone
)

var stateNames = [...]string{"seed", "validate", "freshness", "refresh", "acquire", "persist", "done"}

func (st sessionState) String() string {
	if int(st) < len(stateNames) {
		return stateNames[st]
	}
	return "unknown"
}

// sessionRun is the mutable state of one EnsureSession call.
type sessionRun struct {
	req    EnsureSessionRequest
	record *domain.CredentialRecord
	token  string
	source domain.TokenSource
}

// EnsureSession returns a usable session, acquiring and persisting a new
// token if needed.
//
// Seed picks the env override, then a flag token, then the stored token.
// A seeded token is validated; a valid one is refreshed if it expires
// within the renew threshold. An invalid stored token or a denied refresh
// leads to acquisition. Transport errors are returned as they are. The
// final token is written to the store only if it changed.
func (s *SessionService) EnsureSession(ctx context.Context, req EnsureSessionRequest) (*domain.Session, error) {
	run := &sessionRun{req: req, source: domain.SourceNone}
	log := logger.L(ctx)

	state := stateSeed
	for state != stateDone {
		log.Debug("session state", "state", state.String(), "source", string(run.source))

		var err error
		switch state {
		case stateSeed:
			state, err = s.seed(run)
		case stateValidate:
			state, err = s.validate(ctx, run)
		case stateFreshness:
			state = s.freshness(run)
		case stateRefresh:
			state, err = s.refresh(ctx, run)
		case stateAcquire:
			state, err = s.acquire(ctx, run)
		case statePersist:
			state, err = s.persist(ctx, run)
		}
		if err != nil {
			log.Debug("session failed", "state", state.String(), "code", domain.GetErrorCode(err), "error", err)
			return nil, err
		}
	}

	session := domain.NewSession(run.token, run.source)
	s.metrics.ObserveSession(run.source, s.expiresIn(run.token, s.now()))
	return session, nil
}

func (s *SessionService) seed(run *sessionRun) (sessionState, error) {
	if run.req.Dev {
		run.token, run.source = domain.DevToken, domain.SourceDev
		return stateDone, nil
	}

	if tok, ok := s.envToken(); ok {
		run.token, run.source = tok, domain.SourceEnv
		return stateDone, nil
	}

	record, err := s.store.Load()
	if err != nil {
		return stateSeed, err
	}
	run.record = record

	switch {
	case run.req.Acquisition.Token != "":
		run.token, run.source = run.req.Acquisition.Token, domain.SourceFlag
		return stateValidate, nil
	case record.Token != "" && !run.req.Force:
		run.token, run.source = record.Token, domain.SourceStored
		return stateValidate, nil
	default:
		return stateAcquire, nil
	}
}

func (s *SessionService) validate(ctx context.Context, run *sessionRun) (sessionState, error) {
	valid, err := s.tokens.Validate(ctx, run.token)
	if err != nil {
		return stateValidate, err
	}
	if valid {
		return stateFreshness, nil
	}

	// A flag token was given on purpose; it is not silently replaced.
	if run.source == domain.SourceFlag {
		return stateValidate, domain.ErrInvalidCredential.WithDetails("the token passed with --token was rejected")
	}

	logger.L(ctx).Info("stored token rejected, acquiring a new one")
	return stateAcquire, nil
}

func (s *SessionService) freshness(run *sessionRun) sessionState {
	if s.expiresIn(run.token, s.now()) < s.renewThreshold(run.record) {
		return stateRefresh
	}
	return statePersist
}

func (s *SessionService) refresh(ctx context.Context, run *sessionRun) (sessionState, error) {
	fresh, err := s.tokens.Refresh(ctx, run.token)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrRefreshDenied.Code) {
			logger.L(ctx).Info("refresh denied, acquiring a new token", "error", err)
			return stateAcquire, nil
		}
		return stateRefresh, err
	}

	run.token, run.source = fresh, domain.SourceRefreshed
	return statePersist, nil
}

func (s *SessionService) acquire(ctx context.Context, run *sessionRun) (sessionState, error) {
	if s.acquirer == nil {
		return stateAcquire, domain.ErrNotLoggedIn
	}

	areq := run.req.Acquisition
	if run.source == domain.SourceFlag {
		// The flag token got us here via a denied refresh; do not offer it again.
		areq.Token = ""
	}

	token, err := s.acquirer.AcquireBySelection(ctx, areq)
	if err != nil {
		return stateAcquire, err
	}

	run.token, run.source = token, domain.SourceAcquired
	return statePersist, nil
}

func (s *SessionService) persist(ctx context.Context, run *sessionRun) (sessionState, error) {
	if run.token == run.record.Token {
		return stateDone, nil
	}
	if err := s.store.Save(domain.TokenPatch(run.token)); err != nil {
		return statePersist, err
	}
	logger.L(ctx).Debug("token saved",
		"fingerprint", token.Fingerprint(run.token),
		"source", string(run.source),
	)
	run.record.Token = run.token
	return stateDone, nil
}

func (s *SessionService) renewThreshold(record *domain.CredentialRecord) time.Duration {
	if s.renewAt > 0 {
		return s.renewAt
	}
	return record.RenewThreshold()
}

func (s *SessionService) envToken() (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	tok, ok := s.lookupEnv(APIKeyEnv)
	return tok, ok && tok != ""
}

// ============================================================================
// Logout, Status, Refresh
// ============================================================================

// Logout deletes the local credential record. The remote session is left
// to expire on its own.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.store.Delete(); err != nil {
		return err
	}
	logger.L(ctx).Info("credential record removed", "path", s.store.Path())
	return nil
}

// StatusRequest contains parameters for Status.
type StatusRequest struct {
	// Token, if set, is reported instead of the stored one.
	Token string
	// Validate asks the service whether the token is still accepted.
	Validate bool
	// ServiceURL is reported as-is.
	ServiceURL string
}

// Status reports the current session without changing anything.
func (s *SessionService) Status(ctx context.Context, req StatusRequest) (*domain.SessionStatus, error) {
	record, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	status := &domain.SessionStatus{
		Source:     domain.SourceNone,
		ServiceURL: req.ServiceURL,
		ConfigPath: s.store.Path(),
	}

	var current string
	if tok, ok := s.envToken(); ok {
		current, status.Source = tok, domain.SourceEnv
	} else if req.Token != "" {
		current, status.Source = req.Token, domain.SourceFlag
	} else if record.Token != "" {
		current, status.Source = record.Token, domain.SourceStored
	} else {
		return status, nil
	}

	now := s.now()
	status.Token = domain.MaskToken(current)
	status.Fingerprint = token.Fingerprint(current)
	if exp, ok := domain.ExpiresAt(current); ok {
		status.ExpiresAt = &exp
	}
	remaining := s.expiresIn(current, now)
	status.ExpiresIn = remaining.Round(time.Second).String()
	status.Stale = remaining < s.renewThreshold(record)

	if req.Validate {
		valid, err := s.tokens.Validate(ctx, current)
		if err != nil {
			return nil, err
		}
		status.Valid = &valid
	}
	return status, nil
}

// RefreshStored refreshes the stored token unconditionally and persists the
// result.
func (s *SessionService) RefreshStored(ctx context.Context) (*domain.Session, error) {
	record, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if record.Token == "" {
		return nil, domain.ErrNotLoggedIn.WithDetails("no stored token to refresh")
	}

	fresh, err := s.tokens.Refresh(ctx, record.Token)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(domain.TokenPatch(fresh)); err != nil {
		return nil, err
	}
	return domain.NewSession(fresh, domain.SourceRefreshed), nil
}

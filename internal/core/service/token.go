package service

import (
	"context"
	"time"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
	"github.com/yndnr/metacall-deploy-go/internal/telemetry/logger"
)

// AuthClient is the remote auth service. Implementations return
// *domain.DomainError values: ErrInvalidCredential, ErrAccountExists,
// ErrRefreshDenied, ErrTransport or ErrCancelled.
type AuthClient interface {
	// Login exchanges email and password for a token.
	Login(ctx context.Context, email, password string) (string, error)
	// Signup registers an account and returns the service's message.
	Signup(ctx context.Context, email, password, alias string) (string, error)
	// Validate reports whether token is accepted. Rejection is not an error.
	Validate(ctx context.Context, token string) (bool, error)
	// Refresh exchanges token for a fresh one.
	Refresh(ctx context.Context, token string) (string, error)
}

// Metrics receives lifecycle observations. See telemetry/metric.
type Metrics interface {
	ObserveValidate(result string, elapsed time.Duration)
	ObserveRefresh(result string, elapsed time.Duration)
	ObserveAttempt(method domain.Method, outcome domain.Outcome)
	ObserveSession(source domain.TokenSource, expiresIn time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) ObserveValidate(string, time.Duration) {}
func (nopMetrics) ObserveRefresh(string, time.Duration) {}
func (nopMetrics) ObserveAttempt(domain.Method, domain.Outcome) {}
func (nopMetrics) ObserveSession(domain.TokenSource, time.Duration) {}

// Validation and refresh results reported to Metrics.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultOK      = "ok"
	ResultDenied  = "denied"
	ResultError   = "error"
)

// TokenService validates and refreshes tokens.
type TokenService struct {
	client  AuthClient
	metrics Metrics
	now     func() time.Time
}

// NewTokenService creates a new TokenService. A nil metrics disables
// observation.
func NewTokenService(client AuthClient, metrics Metrics) *TokenService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &TokenService{
		client:  client,
		metrics: metrics,
		now:     time.Now,
	}
}

// Validate performs a single remote check of token.
// It returns (false, nil) when the service rejects the token and an error
// only when the service could not answer.
func (s *TokenService) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	start := s.now()
	valid, err := s.client.Validate(ctx, token)
	elapsed := s.now().Sub(start)

	switch {
	case err != nil:
		s.metrics.ObserveValidate(ResultError, elapsed)
		return false, err
	case valid:
		s.metrics.ObserveValidate(ResultValid, elapsed)
	default:
		s.metrics.ObserveValidate(ResultInvalid, elapsed)
	}

	logger.L(ctx).Debug("token validated", "token", domain.MaskToken(token), "valid", valid)
	return valid, nil
}

// Refresh exchanges token for a fresh one. ErrRefreshDenied means the
// session is dead and must be re-acquired.
func (s *TokenService) Refresh(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrRefreshDenied.WithDetails("no token to refresh")
	}

	start := s.now()
	fresh, err := s.client.Refresh(ctx, token)
	elapsed := s.now().Sub(start)

	if err != nil {
		if domain.IsDomainError(err, domain.ErrRefreshDenied.Code) {
			s.metrics.ObserveRefresh(ResultDenied, elapsed)
		} else {
			s.metrics.ObserveRefresh(ResultError, elapsed)
		}
		return "", err
	}
	s.metrics.ObserveRefresh(ResultOK, elapsed)

	now := s.now()
	if before, after := domain.ExpiresIn(token, now), domain.ExpiresIn(fresh, now); after <= before && after > 0 {
		logger.L(ctx).Warn("refreshed token does not outlive the old one",
			"old_expires_in", before, "new_expires_in", after)
	}
	return fresh, nil
}

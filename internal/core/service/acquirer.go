package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
	"github.com/yndnr/metacall-deploy-go/internal/telemetry/logger"
)

// Prompter collects operator input. Implemented by cli/prompt.
type Prompter interface {
	Input(ctx context.Context, label string) (string, error)
	Masked(ctx context.Context, label string) (string, error)
	Select(ctx context.Context, label string, options []string) (int, error)
}

// Prompt labels.
const (
	LabelToken           = "Please enter your API token"
	LabelEmail           = "Email"
	LabelPassword        = "Password"
	LabelConfirmPassword = "Confirm password"
	LabelAlias           = "Please enter your alias"
	LabelMethod          = "Select the login method"
)

// AcquirerConfig holds acquisition retry settings.
type AcquirerConfig struct {
	// RetryInterval is the minimum spacing between two remote attempts in
	// an interactive retry loop. Zero disables pacing.
	RetryInterval time.Duration
	// RetryBurst is the number of attempts allowed before pacing applies.
	RetryBurst int
}

// DefaultAcquirerConfig returns the default configuration.
func DefaultAcquirerConfig() *AcquirerConfig {
	return &AcquirerConfig{
		RetryInterval: time.Second,
		RetryBurst:    3,
	}
}

// Acquirer obtains a new token from the operator.
//
// Interactive retry loops stay inside the Acquirer: only cancellation,
// transport failures and single-shot failures reach the caller.
type Acquirer struct {
	tokens   *TokenService
	client   AuthClient
	prompter Prompter
	out      io.Writer
	limiter  *rate.Limiter
	metrics  Metrics

	interactive bool
	onAttempt   func(domain.Attempt)
	now         func() time.Time
}

// AcquirerOption configures an Acquirer.
type AcquirerOption func(*Acquirer)

// WithOnAttempt registers a hook called after every attempt.
func WithOnAttempt(fn func(domain.Attempt)) AcquirerOption {
	return func(a *Acquirer) {
		a.onAttempt = fn
	}
}

// WithOutput sets where operator notices ("try again", signup messages)
// are written. Defaults to io.Discard.
func WithOutput(w io.Writer) AcquirerOption {
	return func(a *Acquirer) {
		a.out = w
	}
}

// WithAcquirerMetrics sets the metrics sink.
func WithAcquirerMetrics(m Metrics) AcquirerOption {
	return func(a *Acquirer) {
		if m != nil {
			a.metrics = m
		}
	}
}

// NewAcquirer creates an Acquirer. interactive controls whether missing or
// rejected input may be asked for again.
func NewAcquirer(tokens *TokenService, client AuthClient, prompter Prompter, interactive bool, config *AcquirerConfig, opts ...AcquirerOption) *Acquirer {
	if config == nil {
		config = DefaultAcquirerConfig()
	}

	limit := rate.Inf
	if config.RetryInterval > 0 {
		limit = rate.Every(config.RetryInterval)
	}
	burst := config.RetryBurst
	if burst < 1 {
		burst = 1
	}

	a := &Acquirer{
		tokens:      tokens,
		client:      client,
		prompter:    prompter,
		out:         io.Discard,
		limiter:     rate.NewLimiter(limit, burst),
		metrics:     nopMetrics{},
		interactive: interactive,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// canPrompt reports whether req may be prompted for. Both the Acquirer and
// the request must allow it.
func (a *Acquirer) canPrompt(req domain.AcquisitionRequest) bool {
	return a.interactive && !req.NonInteractive
}

// ============================================================================
// Selection
// ============================================================================

// AcquireBySelection picks the acquisition method and runs it.
//
// An explicit req.Method wins. Otherwise email or password selects login,
// a token selects token entry, and an interactive operator is shown the
// menu. Non-interactive callers with nothing supplied get
// ErrMissingArgument.
func (a *Acquirer) AcquireBySelection(ctx context.Context, req domain.AcquisitionRequest) (string, error) {
	method, err := a.selectMethod(ctx, req)
	if err != nil {
		return "", err
	}

	logger.L(ctx).Debug("acquiring credential", "method", method.String())

	switch method {
	case domain.MethodToken:
		return a.AcquireByToken(ctx, req)
	case domain.MethodLogin:
		return a.AcquireByLogin(ctx, req)
	case domain.MethodSignup:
		return a.AcquireBySignup(ctx, req)
	default:
		return "", domain.ErrInvalidArgument.WithDetails("unknown login method")
	}
}

func (a *Acquirer) selectMethod(ctx context.Context, req domain.AcquisitionRequest) (domain.Method, error) {
	switch {
	case req.Method != domain.MethodUnspecified:
		return req.Method, nil
	case req.HasLoginFlags():
		return domain.MethodLogin, nil
	case req.Token != "":
		return domain.MethodToken, nil
	case !a.canPrompt(req):
		return domain.MethodUnspecified, domain.ErrMissingArgument.WithDetails(
			"not logged in: pass --token, or --email and --password")
	}

	labels := make([]string, len(domain.SelectableMethods))
	for i, m := range domain.SelectableMethods {
		labels[i] = m.Label()
	}
	idx, err := a.prompter.Select(ctx, LabelMethod, labels)
	if err != nil {
		return domain.MethodUnspecified, err
	}
	if idx < 0 || idx >= len(domain.SelectableMethods) {
		return domain.MethodUnspecified, domain.ErrInvalidArgument.WithDetails("invalid login method selection")
	}
	return domain.SelectableMethods[idx], nil
}

// ============================================================================
// Token entry
// ============================================================================

// AcquireByToken validates a token supplied by the operator.
//
// A token passed in req is checked once. A prompted token is asked for
// again after each rejection until one is accepted or ctx is cancelled.
func (a *Acquirer) AcquireByToken(ctx context.Context, req domain.AcquisitionRequest) (string, error) {
	token := strings.TrimSpace(req.Token)
	interactive := a.canPrompt(req)
	keepAsking := interactive && token == ""

	for {
		if token == "" {
			if !interactive {
				return "", domain.ErrMissingArgument.WithDetails("token is required")
			}
			var err error
			if token, err = a.prompter.Masked(ctx, LabelToken); err != nil {
				return "", err
			}
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
		}

		valid, err := a.tokens.Validate(ctx, token)
		if err == nil && !valid {
			err = domain.ErrInvalidCredential.WithDetails("token rejected by the service")
		}
		a.record(domain.MethodToken, domain.MaskToken(token), err)

		if err == nil {
			return token, nil
		}
		if !keepAsking || !domain.IsDomainError(err, domain.ErrInvalidCredential.Code) {
			return "", err
		}

		a.notice("Token invalid, please try again.")
		token = ""
		if err := a.pace(ctx); err != nil {
			return "", err
		}
	}
}

// ============================================================================
// Email and password
// ============================================================================

// AcquireByLogin logs in with email and password.
//
// When either value had to be prompted for, a rejected login asks for both
// again. When both were supplied, the first rejection is returned.
func (a *Acquirer) AcquireByLogin(ctx context.Context, req domain.AcquisitionRequest) (string, error) {
	interactive := a.canPrompt(req)
	keepAsking := interactive && (req.Email == "" || req.Password == "")
	return a.login(ctx, req.Email, req.Password, interactive, keepAsking)
}

func (a *Acquirer) login(ctx context.Context, email, password string, interactive, keepAsking bool) (string, error) {
	for {
		var err error
		if email, err = a.ask(ctx, interactive, email, LabelEmail, false); err != nil {
			return "", err
		}
		if password, err = a.ask(ctx, interactive, password, LabelPassword, true); err != nil {
			return "", err
		}

		token, err := a.client.Login(ctx, email, password)
		a.record(domain.MethodLogin, email, err)
		if err == nil {
			return token, nil
		}
		if !keepAsking || !domain.IsDomainError(err, domain.ErrInvalidCredential.Code) {
			return "", err
		}

		a.notice(fmt.Sprintf("%s, please try again.", domain.Details(err)))
		email, password = "", ""
		if err := a.pace(ctx); err != nil {
			return "", err
		}
	}
}

// ============================================================================
// Signup
// ============================================================================

// AcquireBySignup registers a new account and logs into it.
//
// An "account already exists" answer hands the entered email and password
// over to login. A rejected alias asks for the alias only; any other
// rejection asks for the credentials again. After a successful signup a
// single login is attempted; if the service refuses it (typically until
// the email is verified) ErrVerificationPending is returned.
func (a *Acquirer) AcquireBySignup(ctx context.Context, req domain.AcquisitionRequest) (string, error) {
	email, password, alias := req.Email, req.Password, req.Alias
	interactive := a.canPrompt(req)

	for {
		var err error
		if email, err = a.ask(ctx, interactive, email, LabelEmail, false); err != nil {
			return "", err
		}
		if password == "" {
			if password, err = a.askNewPassword(ctx, interactive); err != nil {
				return "", err
			}
		}
		if alias, err = a.ask(ctx, interactive, alias, LabelAlias, false); err != nil {
			return "", err
		}

		message, err := a.client.Signup(ctx, email, password, alias)
		a.record(domain.MethodSignup, email, err)

		switch {
		case err == nil:
			return a.loginAfterSignup(ctx, email, password, message)

		case domain.IsDomainError(err, domain.ErrAccountExists.Code):
			a.notice("Account already exists, logging in.")
			return a.login(ctx, email, password, interactive, interactive)

		case domain.IsDomainError(err, domain.ErrInvalidCredential.Code) && interactive:
			detail := domain.Details(err)
			a.notice(fmt.Sprintf("Signup failed: %s", detail))
			if strings.Contains(strings.ToLower(detail), "alias") {
				alias = ""
			} else {
				email, password = "", ""
			}
			if err := a.pace(ctx); err != nil {
				return "", err
			}

		default:
			return "", err
		}
	}
}

func (a *Acquirer) loginAfterSignup(ctx context.Context, email, password, message string) (string, error) {
	if message != "" {
		a.notice(message)
	}

	token, err := a.client.Login(ctx, email, password)
	a.record(domain.MethodLogin, email, err)
	if err == nil {
		return token, nil
	}
	if domain.IsDomainError(err, domain.ErrInvalidCredential.Code) {
		return "", domain.ErrVerificationPending.WithDetails(
			"account created for " + email + "; verify your email, then log in").WithCause(err)
	}
	return "", err
}

// askNewPassword prompts for a password and its confirmation until they
// match. Mismatches never reach the service.
func (a *Acquirer) askNewPassword(ctx context.Context, interactive bool) (string, error) {
	if !interactive {
		return "", domain.ErrMissingArgument.WithDetails("password is required")
	}

	for {
		password, err := a.ask(ctx, interactive, "", LabelPassword, true)
		if err != nil {
			return "", err
		}
		confirm, err := a.prompter.Masked(ctx, LabelConfirmPassword)
		if err != nil {
			return "", err
		}
		if password == confirm {
			return password, nil
		}

		a.record(domain.MethodSignup, "", domain.ErrPasswordMismatch)
		a.notice("Passwords do not match, please try again.")
	}
}

// ============================================================================
// Helpers
// ============================================================================

// ask returns value if set, otherwise prompts until a non-empty answer is
// given. Non-interactive callers get ErrMissingArgument instead.
func (a *Acquirer) ask(ctx context.Context, interactive bool, value, label string, masked bool) (string, error) {
	for value == "" {
		if !interactive {
			return "", domain.ErrMissingArgument.WithDetails(strings.ToLower(label) + " is required")
		}

		var err error
		if masked {
			value, err = a.prompter.Masked(ctx, label)
		} else {
			value, err = a.prompter.Input(ctx, label)
			value = strings.TrimSpace(value)
		}
		if err != nil {
			return "", err
		}
	}
	return value, nil
}

// pace waits for the retry limiter.
func (a *Acquirer) pace(ctx context.Context) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return domain.ErrCancelled.WithCause(err)
	}
	return nil
}

func (a *Acquirer) record(method domain.Method, input string, err error) {
	attempt := domain.Attempt{
		Method:  method,
		Input:   input,
		Outcome: domain.OutcomeOf(err),
		Err:     err,
		At:      a.now(),
	}
	a.metrics.ObserveAttempt(attempt.Method, attempt.Outcome)
	if a.onAttempt != nil {
		a.onAttempt(attempt)
	}
}

func (a *Acquirer) notice(msg string) {
	fmt.Fprintln(a.out, msg)
}

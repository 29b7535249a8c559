package connection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

// Dashboard endpoints used by the session lifecycle.
const (
	PathLogin    = "/login"
	PathSignup   = "/signup"
	PathValidate = "/validate"
	PathRefresh  = "/api/account/refresh-token"
)

// AuthAPI is the remote auth service as seen by the session core.
// Every error it returns is a *domain.DomainError.
type AuthAPI struct {
	http *HTTPClient
}

// NewAuthAPI creates an AuthAPI for the dashboard at baseURL.
func NewAuthAPI(baseURL string, opts ...ClientOption) *AuthAPI {
	return &AuthAPI{http: NewHTTPClient(baseURL, opts...)}
}

// BaseURL returns the dashboard URL.
func (a *AuthAPI) BaseURL() string {
	return a.http.BaseURL()
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Alias    string `json:"alias"`
}

// Login exchanges email and password for a token.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := a.http.Post(ctx, PathLogin, loginRequest{Email: email, Password: password})
	if err != nil {
		return "", transportError(ctx, PathLogin, err)
	}

	var token string
	if err := ParseResponse(resp, &token); err != nil {
		return "", classify(ctx, PathLogin, err, domain.ErrInvalidCredential, credentialStatuses)
	}
	if token == "" {
		return "", domain.ErrTransport.WithDetails("login returned an empty token")
	}
	return token, nil
}

// Signup creates an account. On success the service answers with a
// confirmation message, not a token.
func (a *AuthAPI) Signup(ctx context.Context, email, password, alias string) (string, error) {
	resp, err := a.http.Post(ctx, PathSignup, signupRequest{Email: email, Password: password, Alias: alias})
	if err != nil {
		return "", transportError(ctx, PathSignup, err)
	}

	var message string
	if err := ParseResponse(resp, &message); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && IsAccountExists(apiErr.Message) {
			return "", domain.ErrAccountExists.WithDetails(apiErr.Message).WithCause(err)
		}
		return "", classify(ctx, PathSignup, err, domain.ErrInvalidCredential, credentialStatuses)
	}
	return message, nil
}

// Validate asks the service whether token is still accepted. A 401 or 403
// is (false, nil); any other failure is an error.
func (a *AuthAPI) Validate(ctx context.Context, token string) (bool, error) {
	resp, err := a.http.WithToken(token).Get(ctx, PathValidate)
	if err != nil {
		return false, transportError(ctx, PathValidate, err)
	}

	var body string
	if err := ParseResponse(resp, &body); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && tokenStatuses[apiErr.Status] {
			return false, nil
		}
		return false, classify(ctx, PathValidate, err, domain.ErrTransport, nil)
	}
	return strings.EqualFold(strings.TrimSpace(body), "true"), nil
}

// Refresh exchanges token for a fresh one.
func (a *AuthAPI) Refresh(ctx context.Context, token string) (string, error) {
	resp, err := a.http.WithToken(token).Get(ctx, PathRefresh)
	if err != nil {
		return "", transportError(ctx, PathRefresh, err)
	}

	var fresh string
	if err := ParseResponse(resp, &fresh); err != nil {
		return "", classify(ctx, PathRefresh, err, domain.ErrRefreshDenied, tokenStatuses)
	}
	if fresh == "" {
		return "", domain.ErrRefreshDenied.WithDetails("refresh returned an empty token")
	}
	return fresh, nil
}

// IsAccountExists reports whether a signup failure message means the
// email is already registered. The service only reports this as free
// text, so this is the single place that inspects it.
func IsAccountExists(message string) bool {
	return strings.Contains(strings.ToLower(message), "already exists")
}

// Statuses that mean the presented credential was refused. Everything
// else (404 from a wrong server URL, 429, 5xx) says nothing about the
// credential.
var (
	tokenStatuses = map[int]bool{
		http.StatusUnauthorized: true,
		http.StatusForbidden:    true,
	}
	credentialStatuses = map[int]bool{
		http.StatusBadRequest:   true,
		http.StatusUnauthorized: true,
		http.StatusForbidden:    true,
	}
)

// classify maps a ParseResponse error: a status in rejectedOn becomes
// rejected, any other status or a malformed body is a transport failure.
func classify(ctx context.Context, path string, err error, rejected *domain.DomainError, rejectedOn map[int]bool) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if !rejectedOn[apiErr.Status] {
			return domain.ErrTransport.WithDetails(fmt.Sprintf("%s: %s", path, apiErr.Error())).WithCause(err)
		}
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error()
		}
		return rejected.WithDetails(msg).WithCause(err)
	}
	return transportError(ctx, path, err)
}

func transportError(ctx context.Context, path string, err error) error {
	if ctx.Err() != nil {
		return domain.ErrCancelled.WithCause(ctx.Err())
	}
	return domain.ErrTransport.WithDetails(path).WithCause(err)
}

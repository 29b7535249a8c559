package domain

import (
	"fmt"
	"strings"
	"time"
)

// Method is a credential acquisition method.
type Method int

const (
	MethodUnspecified Method = iota
	MethodToken
	MethodLogin
	MethodSignup
)

// SelectableMethods lists the methods offered in the interactive menu, in
// display order.
var SelectableMethods = []Method{MethodToken, MethodLogin, MethodSignup}

// String returns the short method name used in flags, logs and metrics.
func (m Method) String() string {
	switch m {
	case MethodToken:
		return "token"
	case MethodLogin:
		return "login"
	case MethodSignup:
		return "signup"
	default:
		return "unspecified"
	}
}

// Label returns the menu label for the method.
func (m Method) Label() string {
	switch m {
	case MethodToken:
		return "Login by token"
	case MethodLogin:
		return "Login by email and password"
	case MethodSignup:
		return "Signup"
	default:
		return ""
	}
}

// ParseMethod converts a flag value into a Method. The empty string maps to
// MethodUnspecified.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return MethodUnspecified, nil
	case "token":
		return MethodToken, nil
	case "login", "email", "password":
		return MethodLogin, nil
	case "signup", "register":
		return MethodSignup, nil
	default:
		return MethodUnspecified, ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown login method %q", s))
	}
}

// AcquisitionRequest carries everything the acquisition flow may use:
// a method hint, pre-supplied credentials and the non-interactive flag.
// Pre-supplied values are never prompted for again.
type AcquisitionRequest struct {
	Method   Method
	Token    string
	Email    string
	Password string
	Alias    string

	// NonInteractive forbids prompting and retry loops for this request,
	// even when the acquirer has a terminal.
	NonInteractive bool
}

// HasLoginFlags reports whether email or password was supplied.
func (r AcquisitionRequest) HasLoginFlags() bool {
	return r.Email != "" || r.Password != ""
}

// Outcome classifies a single acquisition attempt.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeRejected      Outcome = "rejected"
	OutcomeAccountExists Outcome = "account_exists"
	OutcomeMismatch      Outcome = "password_mismatch"
	OutcomeError         Outcome = "error"
)

// Attempt is one (method, input, outcome) step of an acquisition flow.
// Attempts are never persisted.
type Attempt struct {
	Method  Method
	Input   string // email, or masked token
	Outcome Outcome
	Err     error
	At      time.Time
}

// OutcomeOf classifies err into an Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case IsDomainError(err, ErrInvalidCredential.Code), IsDomainError(err, ErrRefreshDenied.Code):
		return OutcomeRejected
	case IsDomainError(err, ErrAccountExists.Code):
		return OutcomeAccountExists
	case IsDomainError(err, ErrPasswordMismatch.Code):
		return OutcomeMismatch
	default:
		return OutcomeError
	}
}

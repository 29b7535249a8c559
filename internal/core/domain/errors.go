// Package domain defines the core domain models for metacall-deploy.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a categorized failure with a structured error code.
// Codes follow the format MD-<AREA>-<NNNN>; two errors are equal under
// errors.Is when their codes match.
type DomainError struct {
	Code    string // Error code (e.g., "MD-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Details returns the details of the outermost DomainError in err's chain,
// falling back to its message.
func Details(err error) string {
	var de *DomainError
	if !errors.As(err, &de) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	if de.Details != "" {
		return de.Details
	}
	return de.Message
}

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrInvalidCredential indicates the remote service rejected a token or login.
	ErrInvalidCredential = NewDomainError("MD-AUTH-4010", "invalid credential")

	// ErrRefreshDenied indicates the refresh endpoint rejected an
	// ostensibly valid token.
	ErrRefreshDenied = NewDomainError("MD-AUTH-4011", "token refresh denied")

	// ErrAccountExists indicates signup failed because the account is
	// already registered.
	ErrAccountExists = NewDomainError("MD-AUTH-4090", "account already exists")

	// ErrPasswordMismatch indicates the password confirmation did not match.
	// Never sent to the remote service.
	ErrPasswordMismatch = NewDomainError("MD-AUTH-4001", "passwords did not match")

	// ErrNotLoggedIn indicates there is no stored session.
	ErrNotLoggedIn = NewDomainError("MD-AUTH-4040", "not logged in")

	// ErrVerificationPending indicates a signup succeeded but the new
	// account cannot log in yet.
	ErrVerificationPending = NewDomainError("MD-AUTH-2020", "account created, verification pending")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrTransport indicates the remote service is unreachable or answered
	// with a non-authentication failure.
	ErrTransport = NewDomainError("MD-SYS-5030", "service unavailable")

	// ErrStorage indicates the credential record could not be read or written.
	ErrStorage = NewDomainError("MD-SYS-5001", "credential storage error")

	// ErrCancelled indicates the operator cancelled an interactive flow.
	ErrCancelled = NewDomainError("MD-SYS-4990", "operation cancelled")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("MD-ARG-1001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing and
	// cannot be prompted for.
	ErrMissingArgument = NewDomainError("MD-ARG-1002", "missing required argument")
)

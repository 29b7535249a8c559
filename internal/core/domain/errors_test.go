package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("MD-TEST-1000", "test message"),
			expected: "[MD-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("MD-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[MD-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("MD-TEST-1000", "message 1")
	err2 := NewDomainError("MD-TEST-1000", "message 2") // Same code, different message
	err3 := NewDomainError("MD-TEST-1001", "message 1") // Different code

	// Same code should match
	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}

	// Different code should not match
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}

	// Should not match non-DomainError
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("MD-TEST-1000", "wrapper").WithCause(cause)

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Without cause
	errNoCause := NewDomainError("MD-TEST-1000", "no cause")
	if errors.Unwrap(errNoCause) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	original := NewDomainError("MD-TEST-1000", "original message")
	withDetails := original.WithDetails("additional details")

	// Check original is unchanged
	if original.Details != "" {
		t.Error("WithDetails should not modify original error")
	}

	// Check new error has details
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "additional details")
	}

	// Check code and message are preserved
	if withDetails.Code != original.Code {
		t.Errorf("Code = %q, want %q", withDetails.Code, original.Code)
	}
	if withDetails.Message != original.Message {
		t.Errorf("Message = %q, want %q", withDetails.Message, original.Message)
	}
}

func TestDomainError_WithCause(t *testing.T) {
	original := NewDomainError("MD-TEST-1000", "original message")
	cause := fmt.Errorf("root cause")
	withCause := original.WithCause(cause)

	// Check original is unchanged
	if original.Cause != nil {
		t.Error("WithCause should not modify original error")
	}

	// Check new error has cause
	if withCause.Cause != cause {
		t.Errorf("Cause = %v, want %v", withCause.Cause, cause)
	}

	// Check code and message are preserved
	if withCause.Code != original.Code {
		t.Errorf("Code = %q, want %q", withCause.Code, original.Code)
	}
}

func TestIsDomainError(t *testing.T) {
	err := ErrNotLoggedIn

	if !IsDomainError(err, "MD-AUTH-4040") {
		t.Error("IsDomainError should return true for matching code")
	}

	if IsDomainError(err, "MD-AUTH-9999") {
		t.Error("IsDomainError should return false for non-matching code")
	}

	if IsDomainError(fmt.Errorf("regular error"), "MD-AUTH-4040") {
		t.Error("IsDomainError should return false for non-DomainError")
	}

	wrapped := fmt.Errorf("wrapped: %w", ErrNotLoggedIn)
	if !IsDomainError(wrapped, "MD-AUTH-4040") {
		t.Error("IsDomainError should work with wrapped errors")
	}
	if !IsDomainError(wrapped, "") {
		t.Error("IsDomainError with empty code should match any DomainError")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "domain error",
			err:      ErrTransport,
			expected: "MD-SYS-5030",
		},
		{
			name:     "wrapped domain error",
			err:      fmt.Errorf("wrapped: %w", ErrRefreshDenied),
			expected: "MD-AUTH-4011",
		},
		{
			name:     "regular error",
			err:      fmt.Errorf("regular error"),
			expected: "",
		},
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDetails(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", fmt.Errorf("boom"), "boom"},
		{"domain error without details", ErrNotLoggedIn, "not logged in"},
		{"domain error with details", ErrInvalidCredential.WithDetails("Invalid password"), "Invalid password"},
		{"wrapped", fmt.Errorf("login: %w", ErrAccountExists.WithDetails("Account already exists")), "Account already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Details(tt.err); got != tt.want {
				t.Errorf("Details() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err  *DomainError
		code string
	}{
		// Auth errors
		{ErrInvalidCredential, "MD-AUTH-4010"},
		{ErrRefreshDenied, "MD-AUTH-4011"},
		{ErrAccountExists, "MD-AUTH-4090"},
		{ErrPasswordMismatch, "MD-AUTH-4001"},
		{ErrNotLoggedIn, "MD-AUTH-4040"},
		{ErrVerificationPending, "MD-AUTH-2020"},

		// System errors
		{ErrTransport, "MD-SYS-5030"},
		{ErrStorage, "MD-SYS-5001"},
		{ErrCancelled, "MD-SYS-4990"},

		// Argument errors
		{ErrInvalidArgument, "MD-ARG-1001"},
		{ErrMissingArgument, "MD-ARG-1002"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Error code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Error message should not be empty")
			}
		})
	}
}

func TestErrorChaining(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := ErrTransport.
		WithDetails("GET /validate").
		WithCause(cause)

	if err.Code != "MD-SYS-5030" {
		t.Errorf("Code = %q, want %q", err.Code, "MD-SYS-5030")
	}
	if err.Details != "GET /validate" {
		t.Errorf("Details = %q", err.Details)
	}
	if err.Cause != cause {
		t.Error("Cause should be preserved")
	}

	if !errors.Is(err, ErrTransport) {
		t.Error("errors.Is should work after chaining")
	}
	if errors.Is(err, ErrInvalidCredential) {
		t.Error("transport error must not match invalid credential")
	}
}

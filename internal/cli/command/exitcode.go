package command

import (
	"context"
	"errors"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitUsage       = 2
	ExitAuth        = 3
	ExitTransport   = 4
	ExitNotLoggedIn = 5
	ExitCancelled   = 130
)

// ExitCode maps an error returned by a command to a process exit code.
// A pending verification is a successful outcome.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, domain.ErrVerificationPending):
		return ExitOK
	case errors.Is(err, domain.ErrCancelled), errors.Is(err, context.Canceled):
		return ExitCancelled
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrMissingArgument):
		return ExitUsage
	case errors.Is(err, domain.ErrInvalidCredential),
		errors.Is(err, domain.ErrRefreshDenied),
		errors.Is(err, domain.ErrAccountExists),
		errors.Is(err, domain.ErrPasswordMismatch):
		return ExitAuth
	case errors.Is(err, domain.ErrTransport):
		return ExitTransport
	case errors.Is(err, domain.ErrNotLoggedIn):
		return ExitNotLoggedIn
	default:
		return ExitError
	}
}

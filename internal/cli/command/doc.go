// Package command defines the metacall-deploy command line.
//
// It uses urfave/cli/v2. The root Before hook builds a runtime for the
// invocation (logger, request ID, credential store, dashboard client,
// prompter, metrics) and the After hook runs the shutdown hooks.
//
// Commands:
//
//   - login: ensure a session, acquiring credentials if needed
//   - logout: delete the local credential record
//   - status: report the current session without changing it
//   - token refresh: refresh the stored token when it is stale
//   - config show, config import: inspect or seed the credential record
//
// ExitCode maps errors to process exit codes.
package command

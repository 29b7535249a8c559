// Package logger provides structured logging for metacall-deploy.
//
//   - logger.go: slog-backed Logger, levels and the process default
//   - context.go: logger and request ID propagation through context
//   - redact.go: masking of tokens and secrets before they are written
//
// The CLI logs to stderr at warn level unless --verbose is given, so
// prompts and command output on stdout stay clean.
package logger

// Package service implements the session lifecycle of metacall-deploy.
//
//   - token.go: TokenService, validation and refresh against the dashboard
//   - acquirer.go: Acquirer, obtaining a new token by token entry, login
//     or signup, prompting the operator when allowed
//   - session.go: SessionService, the state machine that seeds, validates,
//     refreshes, re-acquires and persists the token every command uses
//
// Remote calls go through AuthClient and persistence through
// CredentialStore, so the package has no transport or file system code.
package service

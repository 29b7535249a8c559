// Package connection talks to the MetaCall dashboard over HTTP.
//
//   - http.go: JSON/plain-text HTTP client carrying the jwt Authorization
//     header and a per-invocation request ID
//   - auth.go: the login, signup, validate and refresh endpoints, with
//     responses classified into domain errors
package connection

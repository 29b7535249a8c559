// Package main provides the entry point for metacall-deploy.
//
// metacall-deploy logs in to the MetaCall FaaS dashboard and keeps the
// local session usable: a stored token is validated, refreshed when it
// nears expiry, and replaced through token, login or signup flows when it
// is rejected.
//
// Usage:
//
//	metacall-deploy login
//	metacall-deploy -e user@example.com -p secret login
//	metacall-deploy -o json status --validate
//	metacall-deploy token refresh
//	metacall-deploy logout
//
// Exit codes: 0 success, 1 error, 2 usage, 3 rejected credential,
// 4 service unreachable, 5 not logged in, 130 cancelled. Logout with no
// stored session reports it and exits 0.
package main

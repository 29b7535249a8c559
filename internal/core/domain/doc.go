// Package domain defines the core domain models for metacall-deploy.
//
// Domain models are pure value objects without any IO dependencies.
// This package contains:
//
//   - Session: the access credential for one CLI invocation
//   - CredentialRecord: the persisted local profile and its defaults
//   - AcquisitionRequest / Attempt: inputs and steps of a login flow
//   - Token helpers: local decoding of the JWT expiry claim
//   - Errors: categorized domain errors with stable codes
package domain

// Package config implements the local credential store for metacall-deploy.
//
// This package owns the single credential record of a configuration
// directory:
//
//   - spec.go: record keys, default directory, defaults layer
//   - store.go: Load / LoadEffective / Save / Delete of config.ini
//   - import.go: reading a profile file into a record patch
//
// The record is a flat key=value file. Missing fields are filled from
// the defaults on load; fields equal to the default are stripped on save.
package config

// Package confloader provides configuration loading mechanism.
//
// This package implements a layered configuration loader on top of koanf.
//
// Features:
//
//   - Multiple Sources: defaults, files, environment variables, maps
//   - Multiple Formats: key=value (config.ini, .env) and YAML
//   - Type Safety: Unmarshaling into typed structs via koanf tags
//
// Priority (highest to lowest):
//
//  1. Environment variables
//  2. Configuration file
//  3. Default values
package confloader

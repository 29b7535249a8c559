// Package output renders command results for metacall-deploy.
//
//   - formatter.go: Formatter interface, ParseFormat and the factory
//   - table.go: key/value tables for the session status and the record
//   - json.go, yaml.go: machine-readable output
//   - spinner.go: progress animation around network calls
//
// Results go to stdout; prompts, notices and the spinner go to stderr so
// that `-o json` output stays parseable.
package output

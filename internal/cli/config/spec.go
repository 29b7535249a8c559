// Package config implements the local credential store for metacall-deploy.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

// FileName is the credential record file inside the configuration directory.
const FileName = "config.ini"

// Record keys as they appear on disk.
const (
	KeyBaseURL   = "baseURL"
	KeyAPIURL    = "apiURL"
	KeyDevURL    = "devURL"
	KeyRenewTime = "renewTime"
	KeyToken     = "token"
)

// recordKeys lists every recognized key in on-disk order.
var recordKeys = []string{KeyBaseURL, KeyAPIURL, KeyDevURL, KeyRenewTime, KeyToken}

// DefaultDir returns the default configuration directory,
// <user config dir>/metacall/deploy.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(dir, "metacall", "deploy")
}

// defaultValues returns the defaults as a koanf layer.
func defaultValues() map[string]any {
	d := domain.DefaultCredentialRecord()
	return map[string]any{
		KeyBaseURL:   d.BaseURL,
		KeyAPIURL:    d.APIURL,
		KeyDevURL:    d.DevURL,
		KeyRenewTime: d.RenewTime,
	}
}

// recordValues flattens a record into its on-disk string form.
func recordValues(r domain.CredentialRecord) map[string]string {
	return map[string]string{
		KeyBaseURL:   r.BaseURL,
		KeyAPIURL:    r.APIURL,
		KeyDevURL:    r.DevURL,
		KeyRenewTime: strconv.FormatInt(r.RenewTime, 10),
		KeyToken:     r.Token,
	}
}

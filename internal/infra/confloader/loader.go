// Package confloader provides configuration loading mechanism.
//
// It uses Koanf for flexible configuration loading from multiple
// sources with priority: Env > File > Default.
package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "METACALL_DEPLOY_"

// Loader loads configuration from multiple sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	defaults  map[string]any
	knownKeys []string
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables the environment layer in Load.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithDefaults sets the lowest priority layer.
func WithDefaults(defaults map[string]any) Option {
	return func(l *Loader) {
		l.defaults = defaults
	}
}

// WithKnownKeys lists the canonical key spellings. Environment keys are
// matched against them case-insensitively, so METACALL_DEPLOY_BASEURL
// lands on "baseURL" instead of creating a second "baseurl" key.
func WithKnownKeys(keys ...string) Option {
	return func(l *Loader) {
		l.knownKeys = keys
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load loads configuration from all sources and unmarshals into target.
// Loading order (later sources override earlier):
//  1. Default values (WithDefaults)
//  2. Configuration file, skipped when it does not exist
//  3. Environment variables, skipped when the prefix is empty
func (l *Loader) Load(target any) error {
	if l.defaults != nil {
		if err := l.LoadMap(l.defaults); err != nil {
			return fmt.Errorf("load defaults: %w", err)
		}
	}

	if l.filePath != "" {
		err := l.LoadFile(l.filePath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	if l.envPrefix != "" {
		if err := l.LoadEnv(); err != nil {
			return fmt.Errorf("load env: %w", err)
		}
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// LoadFile loads configuration from a file. The parser is chosen by
// extension: YAML for .yaml/.yml, key=value for everything else.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}

	if err := l.k.Load(file.Provider(path), ParserFor(path)); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}

	return nil
}

// ParserFor returns the koanf parser matching the file extension.
func ParserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return dotenv.Parser()
	}
}

// LoadEnv loads configuration from environment variables.
// Environment variables use the format: METACALL_DEPLOY_KEY (uppercase).
// Example: METACALL_DEPLOY_BASEURL=https://staging.metacall.io
func (l *Loader) LoadEnv() error {
	prefix := l.envPrefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, prefix)
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "_", ".")
		for _, known := range l.knownKeys {
			if strings.EqualFold(known, s) {
				return known
			}
		}
		return s
	}

	provider := env.Provider(prefix, ".", envTransformer)
	if err := l.k.Load(provider, nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	return nil
}

// LoadMap loads configuration from a map (useful for defaults or testing).
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into the target struct.
// Uses koanf tags for struct field mapping.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// GetInt64 returns an int64 value from the configuration.
func (l *Loader) GetInt64(key string) int64 {
	return l.k.Int64(key)
}

// Exists reports whether key is set by any loaded layer.
func (l *Loader) Exists(key string) bool {
	return l.k.Exists(key)
}

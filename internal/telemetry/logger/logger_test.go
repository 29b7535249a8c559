package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"default config", DefaultConfig()},
		{"json format", Config{Level: "debug", Format: "json"}},
		{"text format", Config{Level: "info", Format: "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if l == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		level   string
		logFunc func(string, ...any)
	}{
		{"DEBUG", l.Debug},
		{"INFO", l.Info},
		{"WARN", l.Warn},
		{"ERROR", l.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.logFunc("session check", "state", "validate")

			var logEntry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("Failed to parse JSON log: %v", err)
			}
			if logEntry["level"] != tt.level {
				t.Errorf("level = %v, want %s", logEntry["level"], tt.level)
			}
			if logEntry["msg"] != "session check" {
				t.Errorf("msg = %v", logEntry["msg"])
			}
			if logEntry["state"] != "validate" {
				t.Errorf("state = %v", logEntry["state"])
			}
		})
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.With("component", "acquirer").Info("attempt")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if logEntry["component"] != "acquirer" {
		t.Errorf("component = %v, want acquirer", logEntry["component"])
	}
}

func TestLogger_DefaultLevelIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Output = &buf

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("not shown")
	if buf.Len() > 0 {
		t.Errorf("info should be filtered at the default level, got %q", buf.String())
	}

	l.Warn("shown")
	if buf.Len() == 0 {
		t.Error("warn should be logged at the default level")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "warn" {
		t.Errorf("DefaultConfig().Level = %q, want %q", cfg.Level, "warn")
	}
	if cfg.Format != "text" {
		t.Errorf("DefaultConfig().Format = %q, want %q", cfg.Format, "text")
	}
	if cfg.Output == nil {
		t.Error("DefaultConfig().Output should not be nil")
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("token refreshed", "method", "login")

	output := buf.String()
	if !strings.Contains(output, "token refreshed") {
		t.Errorf("Text output should contain message, got: %s", output)
	}
	if !strings.Contains(output, "method=login") {
		t.Errorf("Text output should contain method=login, got: %s", output)
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New(Config{Format: "logfmt"}); err == nil {
		t.Error("New() with an unknown format should fail")
	}
	if _, err := New(Config{Format: "JSON"}); err != nil {
		t.Errorf("format matching is case-insensitive, got %v", err)
	}
}

func TestForInvocation(t *testing.T) {
	var buf bytes.Buffer

	cfg := ForInvocation(false, "json", &buf)
	if cfg.Level != "warn" || cfg.Format != "json" || cfg.Output != &buf {
		t.Errorf("ForInvocation(false) = %+v", cfg)
	}
	if cfg := ForInvocation(true, "", nil); cfg.Level != "debug" || cfg.Output == nil {
		t.Errorf("ForInvocation(true) = %+v", cfg)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelWarn},
		{"", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	prev := Default()
	SetDefault(l)
	defer SetDefault(prev)

	Default().Info("through the default")
	if !strings.Contains(buf.String(), "through the default") {
		t.Errorf("default logger output = %q", buf.String())
	}
}

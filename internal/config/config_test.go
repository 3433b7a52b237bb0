package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Output.IncludeHeader)
	assert.Empty(t, cfg.Output.Indent)
	assert.Empty(t, cfg.Dictionary.Files)
	assert.False(t, cfg.Dictionary.SkipBase)
	assert.Equal(t, []uint16{3868}, cfg.Capture.Ports)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFile(t *testing.T) {
	dict := writeFile(t, "vendor.toml", "")
	path := writeFile(t, "diam2json.yaml", `
output:
  include_header: true
  indent: "  "
dictionary:
  files:
    - `+dict+`
capture:
  ports: [3868, 3869]
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Output.IncludeHeader)
	assert.Equal(t, "  ", cfg.Output.Indent)
	assert.Equal(t, []string{dict}, cfg.Dictionary.Files)
	assert.Equal(t, []uint16{3868, 3869}, cfg.Capture.Ports)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "diam2json.yaml", "logging:\n  level: warn\n")
	t.Setenv("DIAM2JSON_LOGGING_LEVEL", "error")
	t.Setenv("DIAM2JSON_OUTPUT_INCLUDE_HEADER", "true")
	t.Setenv("DIAM2JSON_CAPTURE_PORTS", "3868,3870")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.True(t, cfg.Output.IncludeHeader)
	assert.Equal(t, []uint16{3868, 3870}, cfg.Capture.Ports)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	bad := writeFile(t, "bad.yaml", "output: [unterminated\n")
	_, err = Load(bad)
	assert.ErrorContains(t, err, "failed to read config file")

	invalid := writeFile(t, "invalid.yaml", "logging:\n  level: verbose\n")
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "invalid configuration: logging config")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Capture: CaptureConfig{Ports: []uint16{3868}},
			Logging: LoggingConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"upper case level", func(c *Config) { c.Logging.Level = "DEBUG" }, ""},
		{"tab indent", func(c *Config) { c.Output.Indent = "\t" }, ""},
		{"bad indent", func(c *Config) { c.Output.Indent = "x" }, "output config"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging config"},
		{"no ports", func(c *Config) { c.Capture.Ports = nil }, "capture config"},
		{"zero port", func(c *Config) { c.Capture.Ports = []uint16{0} }, "capture config"},
		{"skip base alone", func(c *Config) { c.Dictionary.SkipBase = true }, "dictionary config"},
		{"missing file", func(c *Config) { c.Dictionary.Files = []string{"/nonexistent/dict.toml"} }, "dictionary config"},
		{"empty file name", func(c *Config) { c.Dictionary.Files = []string{""} }, "dictionary config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

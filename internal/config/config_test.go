// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults, and validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, "console.yaml", `
server:
  http_addr: "0.0.0.0:9000"
  read_timeout: "5s"
  shutdown_timeout: "3s"

catalog:
  base_url: "https://books.example.com"
  timeout: "2s"
  requests_per_second: 20
  burst: 5

cache:
  books_ttl: "30s"
  max_entries: 50

database:
  path: "./test.db"

console:
  cookie_secure: true
  session_ttl: "2h"

uploads:
  max_cover_bytes: 1024

logging:
  level: "debug"
  format: "json"

metrics:
  enabled: true
  path: "/metrics"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "https://books.example.com", cfg.Catalog.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 20.0, cfg.Catalog.RequestsPerSecond)
	assert.Equal(t, 5, cfg.Catalog.Burst)

	assert.Equal(t, 30*time.Second, cfg.Cache.BooksTTL)
	assert.Equal(t, 50, cfg.Cache.MaxEntries)
	assert.Equal(t, "./test.db", cfg.Database.Path)

	assert.True(t, cfg.Console.CookieSecure)
	assert.Equal(t, 2*time.Hour, cfg.Console.SessionTTL)
	assert.Equal(t, 10*time.Minute, cfg.Console.JanitorInterval)

	assert.Equal(t, int64(1024), cfg.Uploads.MaxCoverBytes)
	assert.Equal(t, int64(50<<20), cfg.Uploads.MaxFileBytes)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_ValidTOML(t *testing.T) {
	path := writeConfig(t, "console.toml", `
[catalog]
base_url = "http://localhost:5513"
timeout = "4s"

[cache]
books_ttl = "1m"

[logging]
level = "warn"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5513", cfg.Catalog.BaseURL)
	assert.Equal(t, 4*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, time.Minute, cfg.Cache.BooksTTL)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "console.yaml", `
catalog:
  base_url: "http://localhost:5513"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8090", cfg.Server.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.Cache.BooksTTL)
	assert.Equal(t, 15*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, "bookdesk.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Console.SessionTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_BACKEND", "https://api.example.org")
	t.Setenv("TEST_DB", "/var/lib/bookdesk.db")

	path := writeConfig(t, "console.yaml", `
catalog:
  base_url: "${TEST_BACKEND}"
database:
  path: "${TEST_DB}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.org", cfg.Catalog.BaseURL)
	assert.Equal(t, "/var/lib/bookdesk.db", cfg.Database.Path)
}

func TestLoad_BackendURLFallback(t *testing.T) {
	t.Setenv(EnvBackendURL, "http://fallback:5513")

	path := writeConfig(t, "console.yaml", "logging:\n  level: debug\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://fallback:5513", cfg.Catalog.BaseURL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing base url", "logging:\n  level: info\n", "catalog.base_url is required"},
		{"bad scheme", "catalog:\n  base_url: ftp://x\n", "http or https"},
		{"bad duration", "catalog:\n  base_url: http://x\n  timeout: soon\n", "catalog.timeout"},
		{"bad log format", "catalog:\n  base_url: http://x\nlogging:\n  format: xml\n", "logging.format"},
		{"bad metrics path", "catalog:\n  base_url: http://x\nmetrics:\n  enabled: true\n  path: metrics\n", "metrics.path"},
		{"invalid yaml", "catalog: [", "parsing config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvBackendURL, "")
			_, err := Load(writeConfig(t, "console.yaml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOptional(t *testing.T) {
	t.Setenv(EnvBackendURL, "http://env:5513")

	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://env:5513", cfg.Catalog.BaseURL)

	t.Setenv(EnvBackendURL, "")
	_, err = LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	_, err = LoadOptional(writeConfig(t, "console.yaml", "catalog: ["))
	require.Error(t, err)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/bookdesk.toml")
	assert.Equal(t, "/etc/bookdesk.toml", DefaultPath())

	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "bookdesk", "console.yaml"), DefaultPath())
}

func TestConsoleURL(t *testing.T) {
	cfg := Default()

	cfg.Server.HTTPAddr = ":8090"
	assert.Equal(t, "http://localhost:8090", cfg.ConsoleURL())

	cfg.Server.HTTPAddr = "0.0.0.0:9000"
	assert.Equal(t, "http://localhost:9000", cfg.ConsoleURL())

	cfg.Server.HTTPAddr = "10.0.0.5:9000"
	assert.Equal(t, "http://10.0.0.5:9000", cfg.ConsoleURL())

	cfg.Console.BaseURL = "https://console.example.com/"
	assert.Equal(t, "https://console.example.com", cfg.ConsoleURL())
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("A_VAR", "alpha")
	assert.Equal(t, "x=alpha y=", expandEnvVars("x=${A_VAR} y=${UNSET_VAR_FOR_TEST}"))
	assert.Equal(t, "no vars", expandEnvVars("no vars"))
}

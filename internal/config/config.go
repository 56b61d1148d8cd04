// ABOUTME: Configuration loading and parsing for the bookdesk console and CLI
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by the loader.
const (
	EnvConfigPath = "BOOKDESK_CONFIG"
	EnvBackendURL = "BOOKDESK_BACKEND_URL"
)

// Config represents the complete bookdesk configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog" toml:"catalog"`
	Cache    CacheConfig    `yaml:"cache" toml:"cache"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Console  ConsoleConfig  `yaml:"console" toml:"console"`
	Uploads  UploadsConfig  `yaml:"uploads" toml:"uploads"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
}

// ServerConfig holds the console listener configuration
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" toml:"http_addr"`
	ReadTimeout     time.Duration `yaml:"-" toml:"-"`
	WriteTimeout    time.Duration `yaml:"-" toml:"-"`
	ShutdownTimeout time.Duration `yaml:"-" toml:"-"`

	// Raw string values for unmarshaling
	ReadTimeoutRaw     string `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeoutRaw    string `yaml:"write_timeout" toml:"write_timeout"`
	ShutdownTimeoutRaw string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// CatalogConfig describes the remote catalog service
type CatalogConfig struct {
	BaseURL           string        `yaml:"base_url" toml:"base_url"`
	Timeout           time.Duration `yaml:"-" toml:"-"`
	TimeoutRaw        string        `yaml:"timeout" toml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             int           `yaml:"burst" toml:"burst"`
	UserAgent         string        `yaml:"user_agent" toml:"user_agent"`
}

// CacheConfig controls the book list fetch cache
type CacheConfig struct {
	BooksTTL    time.Duration `yaml:"-" toml:"-"`
	BooksTTLRaw string        `yaml:"books_ttl" toml:"books_ttl"`
	MaxEntries  int           `yaml:"max_entries" toml:"max_entries"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// ConsoleConfig holds web console session configuration
type ConsoleConfig struct {
	// BaseURL is the external URL of the console, used for the startup banner.
	// If not set, it's derived from server.http_addr.
	BaseURL         string        `yaml:"base_url" toml:"base_url"`
	CookieSecure    bool          `yaml:"cookie_secure" toml:"cookie_secure"`
	SessionTTL      time.Duration `yaml:"-" toml:"-"`
	JanitorInterval time.Duration `yaml:"-" toml:"-"`

	SessionTTLRaw      string `yaml:"session_ttl" toml:"session_ttl"`
	JanitorIntervalRaw string `yaml:"janitor_interval" toml:"janitor_interval"`
}

// UploadsConfig caps file upload sizes in bytes
type UploadsConfig struct {
	MaxCoverBytes int64 `yaml:"max_cover_bytes" toml:"max_cover_bytes"`
	MaxFileBytes  int64 `yaml:"max_file_bytes" toml:"max_file_bytes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig holds metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// Default returns a configuration with every optional field filled in.
// Catalog.BaseURL is taken from BOOKDESK_BACKEND_URL when set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// LoadOptional behaves like Load but falls back to Default when path does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg = Default()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// DefaultPath returns the config file location.
// Priority: BOOKDESK_CONFIG env var > XDG_CONFIG_HOME/bookdesk/console.yaml > ~/.config/bookdesk/console.yaml
func DefaultPath() string {
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "console.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "bookdesk", "console.yaml")
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required (or set %s)", EnvBackendURL)
	}
	u, err := url.Parse(c.Catalog.BaseURL)
	if err != nil {
		return fmt.Errorf("catalog.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("catalog.base_url must use http or https scheme")
	}

	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Cache.BooksTTL < 0 {
		return fmt.Errorf("cache.books_ttl must not be negative")
	}
	if c.Catalog.RequestsPerSecond < 0 {
		return fmt.Errorf("catalog.requests_per_second must not be negative")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}

	return nil
}

// ConsoleURL returns the external console URL, derived from the listen address when unset.
func (c *Config) ConsoleURL() string {
	if c.Console.BaseURL != "" {
		return strings.TrimRight(c.Console.BaseURL, "/")
	}
	addr := c.Server.HTTPAddr
	if strings.HasPrefix(addr, ":") || strings.HasPrefix(addr, "0.0.0.0:") {
		addr = "localhost:" + addr[strings.LastIndex(addr, ":")+1:]
	}
	return "http://" + addr
}

// applyDefaults fills in zero-valued optional fields
func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = "127.0.0.1:8090"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = os.Getenv(EnvBackendURL)
	}
	if cfg.Catalog.Timeout == 0 {
		cfg.Catalog.Timeout = 15 * time.Second
	}
	if cfg.Catalog.UserAgent == "" {
		cfg.Catalog.UserAgent = "bookdesk"
	}

	if cfg.Cache.BooksTTL == 0 {
		cfg.Cache.BooksTTL = 10 * time.Second
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 1024
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "bookdesk.db"
	}

	if cfg.Console.SessionTTL == 0 {
		cfg.Console.SessionTTL = 24 * time.Hour
	}
	if cfg.Console.JanitorInterval == 0 {
		cfg.Console.JanitorInterval = 10 * time.Minute
	}

	if cfg.Uploads.MaxCoverBytes == 0 {
		cfg.Uploads.MaxCoverBytes = 10 << 20
	}
	if cfg.Uploads.MaxFileBytes == 0 {
		cfg.Uploads.MaxFileBytes = 50 << 20
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.read_timeout", cfg.Server.ReadTimeoutRaw, &cfg.Server.ReadTimeout},
		{"server.write_timeout", cfg.Server.WriteTimeoutRaw, &cfg.Server.WriteTimeout},
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
		{"catalog.timeout", cfg.Catalog.TimeoutRaw, &cfg.Catalog.Timeout},
		{"cache.books_ttl", cfg.Cache.BooksTTLRaw, &cfg.Cache.BooksTTL},
		{"console.session_ttl", cfg.Console.SessionTTLRaw, &cfg.Console.SessionTTL},
		{"console.janitor_interval", cfg.Console.JanitorIntervalRaw, &cfg.Console.JanitorInterval},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}

// Package config handles configuration loading for bookdesk.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from BOOKDESK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/bookdesk/console.yaml
//  3. ~/.config/bookdesk/console.yaml
//
// A path ending in .toml is decoded as TOML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	catalog:
//	  base_url: "${BOOKDESK_BACKEND_URL}"
//
// When catalog.base_url is empty the loader also falls back to
// BOOKDESK_BACKEND_URL directly, so the CLI works without any file.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	cache:
//	  books_ttl: "10s"
//	console:
//	  session_ttl: "24h"
//
// # Configuration Sections
//
//	server:
//	  http_addr: "127.0.0.1:8090"
//	  read_timeout: "30s"
//	  write_timeout: "60s"
//	  shutdown_timeout: "10s"
//
//	catalog:
//	  base_url: "https://books.example.com"
//	  timeout: "15s"
//	  requests_per_second: 20
//	  burst: 5
//
//	cache:
//	  books_ttl: "10s"
//	  max_entries: 1024
//
//	database:
//	  path: "./bookdesk.db"
//
//	console:
//	  cookie_secure: true
//	  session_ttl: "24h"
//	  janitor_interval: "10m"
//
//	uploads:
//	  max_cover_bytes: 10485760
//	  max_file_bytes: 52428800
//
//	logging:
//	  level: "info"     # debug, info, warn, error
//	  format: "text"    # text or json
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
// # Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Catalog.BaseURL)
package config

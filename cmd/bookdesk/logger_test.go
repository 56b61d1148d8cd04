// ABOUTME: Tests for the server's slog setup
// ABOUTME: Checks level filtering, JSON output and group prefixes in the text handler

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/bookdesk/internal/config"
)

func TestNewLogger_TextFiltersByLevel(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)

	logger.Info("hidden")
	logger.With("component", "store").Warn("slow query", "ms", 120)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WRN slow query component=store ms=120")
}

func TestNewLogger_GroupsPrefixKeys(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "debug"}, &buf)

	logger.WithGroup("req").Debug("done", "status", 200)
	assert.Contains(t, buf.String(), "DBG done req.status=200")
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	logger.Info("started", "addr", "127.0.0.1:8090")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "started", line["msg"])
	assert.Equal(t, "127.0.0.1:8090", line["addr"])
}

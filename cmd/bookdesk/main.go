// ABOUTME: Entry point for the bookdesk console server
// ABOUTME: Serves the web console for the remote book catalog and offers health and config helpers

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/bookdesk/internal/config"
	"github.com/2389/bookdesk/internal/server"
)

// Version is set at build time.
var version = "dev"

const banner = `
  _                 _       _           _
 | |__   ___   ___ | | ____| | ___  ___| | __
 | '_ \ / _ \ / _ \| |/ / _' |/ _ \/ __| |/ /
 | |_) | (_) | (_) |   < (_| |  __/\__ \   <
 |_.__/ \___/ \___/|_|\_\__,_|\___||___/_|\_\
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: bookdesk <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve     Start the console server")
		fmt.Println("  init      Create a new config file interactively")
		fmt.Println("  health    Check server health")
		fmt.Println("  version   Print the version")
		os.Exit(1)
	}

	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(os.Stdin)
	case "health":
		err = runHealth(ctx)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := config.DefaultPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s", configPath)
	if _, err := os.Stat(configPath); err != nil {
		yellow.Print(" (not found, using defaults)")
	}
	fmt.Println()
	green.Print("    ▶ ")
	fmt.Printf("Catalog:   %s\n", cfg.Catalog.BaseURL)
	green.Print("    ▶ ")
	fmt.Printf("Console:   %s/console/\n", cfg.ConsoleURL())
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	if cfg.Metrics.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Metrics:   %s\n", cfg.Metrics.Path)
	}
	fmt.Println()

	logger.Info("starting bookdesk",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"catalog", cfg.Catalog.BaseURL,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func runHealth(ctx context.Context) error {
	cfg, err := config.LoadOptional(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	url := cfg.ConsoleURL() + "/healthz/ready"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	fmt.Println("healthy")
	return nil
}

func runInit(in io.Reader) error {
	reader := bufio.NewReader(in)

	fmt.Println("bookdesk configuration setup")
	fmt.Println("============================")
	fmt.Println()

	outputFile := prompt(reader, "Config file path", config.DefaultPath())

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if !isYes(overwrite) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	defaults := config.Default()

	fmt.Println("\n--- Catalog ---")
	backendURL := prompt(reader, "Catalog service URL", defaults.Catalog.BaseURL)

	fmt.Println("\n--- Server ---")
	httpAddr := prompt(reader, "HTTP address", defaults.Server.HTTPAddr)
	dbPath := prompt(reader, "SQLite database path", defaults.Database.Path)

	fmt.Println("\n--- Logging ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", defaults.Logging.Level)
	logFormat := prompt(reader, "Log format (text/json)", defaults.Logging.Format)

	metricsEnabled := isYes(prompt(reader, "Expose Prometheus metrics?", "no"))

	var cfg strings.Builder
	cfg.WriteString("# bookdesk configuration\n")
	cfg.WriteString("# Generated by bookdesk init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: %q\n\n", httpAddr))

	cfg.WriteString("catalog:\n")
	cfg.WriteString(fmt.Sprintf("  base_url: %q\n", backendURL))
	cfg.WriteString("  timeout: \"15s\"\n\n")

	cfg.WriteString("cache:\n")
	cfg.WriteString("  books_ttl: \"10s\"\n\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n\n", dbPath))

	cfg.WriteString("console:\n")
	cfg.WriteString("  session_ttl: \"24h\"\n\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n\n", logFormat))

	cfg.WriteString("metrics:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", metricsEnabled))
	cfg.WriteString("  path: \"/metrics\"\n")

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	if _, err := config.Load(outputFile); err != nil {
		color.Yellow("\nWarning: the written config does not validate: %v\n", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo start the server:")
	fmt.Println("  bookdesk serve")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}

func isYes(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "yes" || s == "y"
}

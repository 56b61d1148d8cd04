// ABOUTME: Server orchestrator that wires the store, catalog client and console behind one HTTP listener
// ABOUTME: Owns health endpoints, the optional metrics endpoint and graceful shutdown

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/2389/bookdesk/internal/catalog"
	"github.com/2389/bookdesk/internal/config"
	"github.com/2389/bookdesk/internal/metrics"
	"github.com/2389/bookdesk/internal/store"
	"github.com/2389/bookdesk/internal/webadmin"
)

// Server runs the bookdesk console.
type Server struct {
	config     *config.Config
	store      *store.SQLiteStore
	console    *webadmin.Console
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds every component from cfg. The caller must Run or Shutdown the result.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	client, err := catalog.New(catalog.Options{
		BaseURL:           cfg.Catalog.BaseURL,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Burst:             cfg.Catalog.Burst,
		UserAgent:         cfg.Catalog.UserAgent,
	}, nil)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("creating catalog client: %w", err)
	}

	console, err := webadmin.New(s, client, webadmin.Config{
		SessionTTL:      cfg.Console.SessionTTL,
		JanitorInterval: cfg.Console.JanitorInterval,
		CookieSecure:    cfg.Console.CookieSecure,
		BooksTTL:        cfg.Cache.BooksTTL,
		CacheEntries:    cfg.Cache.MaxEntries,
		MaxCoverBytes:   cfg.Uploads.MaxCoverBytes,
		MaxFileBytes:    cfg.Uploads.MaxFileBytes,
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("creating console: %w", err)
	}

	srv := &Server{
		config:  cfg,
		store:   s,
		console: console,
		logger:  logger.With("component", "server"),
	}

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	return srv, nil
}

// Handler returns the instrumented route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /healthz/ready", s.handleReady)

	if s.config.Metrics.Enabled {
		mux.Handle("GET "+s.config.Metrics.Path, metrics.Handler())
		s.logger.Info("metrics enabled", "path", s.config.Metrics.Path)
	}

	mux.Handle("GET /{$}", http.RedirectHandler("/console/home", http.StatusSeeOther))
	s.console.RegisterRoutes(mux)

	return webadmin.Instrument(mux)
}

// Run listens on the configured address and blocks until ctx is canceled or
// the server fails. Shutdown runs in both cases.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		_ = s.Shutdown(context.Background())
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String(), "console", s.config.ConsoleURL()+"/console/")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown uses a fresh context because the run context is already done.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops the listener, the console background work and the store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	s.console.Close()
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}
	return errors.Join(errs...)
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK when the session database answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

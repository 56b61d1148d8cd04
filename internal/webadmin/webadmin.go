// ABOUTME: Web console for the book catalog: authentication, session management and route wiring
// ABOUTME: Each browser session owns a catalog bearer token, a delete dialog and a cached book list

package webadmin

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/2389/bookdesk/internal/assets"
	"github.com/2389/bookdesk/internal/bookform"
	"github.com/2389/bookdesk/internal/catalog"
	"github.com/2389/bookdesk/internal/deleteflow"
	"github.com/2389/bookdesk/internal/fetchcache"
	"github.com/2389/bookdesk/internal/session"
	"github.com/2389/bookdesk/internal/store"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "bookdesk_session"

	// CSRFCookieName is the name of the CSRF token cookie
	CSRFCookieName = "bookdesk_csrf"

	// cookiePath scopes both cookies to the console
	cookiePath = "/console"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const sessionContextKey contextKey = "console_session"
const csrfContextKey contextKey = "csrf_token"

// Config holds console configuration
type Config struct {
	SessionTTL      time.Duration
	JanitorInterval time.Duration
	CookieSecure    bool
	BooksTTL        time.Duration
	CacheEntries    int
	MaxCoverBytes   int64
	MaxFileBytes    int64
}

// Store combines the persistence the console needs
type Store interface {
	store.SessionStore
	store.AuditStore
}

// consoleState is the in-memory part of one browser session.
type consoleState struct {
	tokens *session.Context
	flow   *deleteflow.Flow
}

// requestSession is attached to the context of authenticated requests.
type requestSession struct {
	ID     string
	Email  string
	state  *consoleState
	client *catalog.Client
}

// Console handles console routes and authentication
type Console struct {
	store  Store
	client *catalog.Client
	books  *fetchcache.Cache[[]catalog.Book]
	config Config
	logger *slog.Logger
	pages  map[string]*template.Template
	now    func() time.Time

	mu     sync.Mutex
	states map[string]*consoleState

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Console. client is used anonymously for login and register and
// is bound to each session's token for book calls.
func New(s Store, client *catalog.Client, cfg Config) (*Console, error) {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.BooksTTL <= 0 {
		cfg.BooksTTL = 10 * time.Second
	}
	if cfg.CacheEntries <= 0 {
		cfg.CacheEntries = 1024
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	c := &Console{
		store:  s,
		client: client,
		books:  fetchcache.New[[]catalog.Book]("books", cfg.BooksTTL, cfg.CacheEntries),
		config: cfg,
		logger: slog.Default().With("component", "console"),
		pages:  pages,
		now:    time.Now,
		states: make(map[string]*consoleState),
		done:   make(chan struct{}),
	}

	if cfg.JanitorInterval > 0 {
		go c.janitor(cfg.JanitorInterval)
	}
	return c, nil
}

// Close stops the session janitor and the cache. It is safe to call multiple times.
func (c *Console) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.books.Close()
	})
}

// RegisterRoutes registers all console routes on the given mux
func (c *Console) RegisterRoutes(mux *http.ServeMux) {
	// Public routes (no auth required)
	mux.Handle("GET "+assets.Prefix, http.StripPrefix(assets.Prefix, assets.FileServer()))
	mux.HandleFunc("GET /console/login", c.handleLoginPage)
	mux.HandleFunc("POST /console/login", c.handleLogin)
	mux.HandleFunc("GET /console/register", c.handleRegisterPage)
	mux.HandleFunc("POST /console/register", c.handleRegister)

	// Protected routes (auth required)
	mux.HandleFunc("GET /console/{$}", c.requireAuth(c.handleHome))
	mux.HandleFunc("GET /console", c.requireAuth(c.handleHome))
	mux.HandleFunc("GET /console/home", c.requireAuth(c.handleHome))
	mux.HandleFunc("POST /console/logout", c.requireAuth(c.handleLogout))

	// Book list
	mux.HandleFunc("GET /console/books", c.requireAuth(c.handleBooks))
	mux.HandleFunc("POST /console/books/search", c.requireAuth(c.handleSearch))
	mux.HandleFunc("POST /console/books/{id}/menu", c.requireAuth(c.handleMenu))

	// Delete confirmation
	mux.HandleFunc("POST /console/books/{id}/delete", c.requireAuth(c.handleDeleteRequest))
	mux.HandleFunc("POST /console/books/delete/cancel", c.requireAuth(c.handleDeleteCancel))
	mux.HandleFunc("POST /console/books/delete/confirm", c.requireAuth(c.handleDeleteConfirm))

	// Create and edit
	mux.HandleFunc("GET /console/books/create", c.requireAuth(c.handleCreatePage))
	mux.HandleFunc("POST /console/books/create", c.requireAuth(c.handleCreate))
	mux.HandleFunc("GET /console/books/{id}/edit", c.requireAuth(c.handleEditPage))
	mux.HandleFunc("POST /console/books/{id}/edit", c.requireAuth(c.handleEdit))

	c.logger.Info("console routes registered")
}

// requireAuth wraps a handler to require a live session with a usable token
func (c *Console) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs, err := c.sessionFromRequest(r)
		if err != nil {
			if !errors.Is(err, http.ErrNoCookie) && !errors.Is(err, store.ErrConsoleSessionNotFound) {
				c.logger.Warn("session lookup failed", "error", err)
			}
			c.clearCookies(w)
			http.Redirect(w, r, "/console/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, rs)
		next(w, r.WithContext(ctx))
	}
}

var errTokenExpired = errors.New("catalog token expired")

// sessionFromRequest resolves the session cookie to a live session
func (c *Console) sessionFromRequest(r *http.Request) (*requestSession, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}

	sess, err := c.store.GetConsoleSession(r.Context(), cookie.Value)
	if err != nil {
		return nil, err
	}

	if !session.Usable(sess.Token, c.now()) {
		c.endSession(r.Context(), sess.ID)
		return nil, errTokenExpired
	}

	state := c.stateFor(sess.ID, sess.Token)
	return &requestSession{
		ID:     sess.ID,
		Email:  sess.Email,
		state:  state,
		client: c.client.WithSession(state.tokens),
	}, nil
}

// getSession retrieves the authenticated session from the request context
func getSession(r *http.Request) *requestSession {
	rs, _ := r.Context().Value(sessionContextKey).(*requestSession)
	return rs
}

// stateFor returns the in-memory state for a session, creating it on first use.
func (c *Console) stateFor(id, token string) *consoleState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.states[id]; ok {
		return st
	}

	tokens := session.New(token)
	st := &consoleState{tokens: tokens}
	st.flow = deleteflow.New(c.client.WithSession(tokens), func() { c.invalidateBooks(id) })
	c.states[id] = st
	return st
}

// endSession removes a session from the store and drops its in-memory state.
func (c *Console) endSession(ctx context.Context, id string) {
	if err := c.store.DeleteConsoleSession(ctx, id); err != nil {
		c.logger.Warn("failed to delete session", "error", err)
	}
	c.dropState(id)
}

func (c *Console) dropState(id string) {
	c.mu.Lock()
	st, ok := c.states[id]
	delete(c.states, id)
	c.mu.Unlock()

	if ok {
		_ = st.tokens.Clear()
	}
	c.books.Invalidate(booksKey(id))
}

// booksKey is the fetch cache key for a session's book list.
func booksKey(sessionID string) string {
	return sessionID + "/books"
}

// invalidateBooks marks every cached book list stale after a mutation.
// The caller's own key is invalidated first so its next read refetches.
func (c *Console) invalidateBooks(sessionID string) {
	c.books.Invalidate(booksKey(sessionID))
	c.books.InvalidatePrefix("")
}

// janitor periodically removes expired sessions
func (c *Console) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweepSessions(context.Background())
		case <-c.done:
			return
		}
	}
}

func (c *Console) sweepSessions(ctx context.Context) {
	ids, err := c.store.DeleteExpiredConsoleSessions(ctx)
	if err != nil {
		c.logger.Warn("failed to sweep expired sessions", "error", err)
		return
	}
	for _, id := range ids {
		c.dropState(id)
	}
}

// getCSRFToken retrieves the CSRF token from the request context
func getCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey).(string)
	return token
}

// ensureCSRFToken generates a CSRF token if not present and adds it to context
func (c *Console) ensureCSRFToken(w http.ResponseWriter, r *http.Request) (*http.Request, string) {
	cookie, err := r.Cookie(CSRFCookieName)
	if err == nil && cookie.Value != "" {
		ctx := context.WithValue(r.Context(), csrfContextKey, cookie.Value)
		return r.WithContext(ctx), cookie.Value
	}

	token, err := generateSecureToken(32)
	if err != nil {
		c.logger.Error("failed to generate CSRF token", "error", err)
		token = "" // Will fail validation, but won't crash
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     cookiePath,
		HttpOnly: true,
		Secure:   c.config.CookieSecure || r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	ctx := context.WithValue(r.Context(), csrfContextKey, token)
	return r.WithContext(ctx), token
}

// validateCSRF checks the CSRF token from form against cookie.
// Multipart requests must be parsed before calling it.
func (c *Console) validateCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	formToken := r.FormValue("csrf_token")
	if formToken == "" {
		formToken = r.Header.Get("X-CSRF-Token")
	}

	return formToken != "" && formToken == cookie.Value
}

// createSession stores a new session for a signed-in user and sets the cookie
func (c *Console) createSession(w http.ResponseWriter, r *http.Request, email, token string) error {
	sessionID, err := generateSecureToken(32)
	if err != nil {
		return err
	}

	now := c.now()
	expires := now.Add(c.config.SessionTTL)
	if claims, err := session.Inspect(token); err == nil && !claims.ExpiresAt.IsZero() && claims.ExpiresAt.Before(expires) {
		expires = claims.ExpiresAt
	}

	sess := &store.ConsoleSession{
		ID:        sessionID,
		Email:     email,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: expires,
	}
	if err := c.store.CreateConsoleSession(r.Context(), sess); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     cookiePath,
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.config.CookieSecure || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// clearCookies expires both console cookies
func (c *Console) clearCookies(w http.ResponseWriter) {
	for _, name := range []string{SessionCookieName, CSRFCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     cookiePath,
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
}

// signedIn reports whether the request carries a live session
func (c *Console) signedIn(r *http.Request) bool {
	_, err := c.sessionFromRequest(r)
	return err == nil
}

// handleLoginPage renders the login page
func (c *Console) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if c.signedIn(r) {
		http.Redirect(w, r, "/console/home", http.StatusSeeOther)
		return
	}

	_, csrfToken := c.ensureCSRFToken(w, r)
	c.renderAuthPage(w, http.StatusOK, "login", authData{Title: "Login", CSRFToken: csrfToken})
}

// handleLogin processes login form submission
func (c *Console) handleLogin(w http.ResponseWriter, r *http.Request) {
	data := authData{Title: "Login"}

	if err := r.ParseForm(); err != nil {
		_, data.CSRFToken = c.ensureCSRFToken(w, r)
		data.Error = "Invalid form data"
		c.renderAuthPage(w, http.StatusBadRequest, "login", data)
		return
	}

	data.Email = strings.TrimSpace(r.FormValue("email"))

	if !c.validateCSRF(r) {
		_, data.CSRFToken = c.ensureCSRFToken(w, r)
		data.Error = "Invalid request, please try again"
		c.renderAuthPage(w, http.StatusForbidden, "login", data)
		return
	}

	token, err := c.client.Login(r.Context(), data.Email, r.FormValue("password"))
	if err != nil {
		c.logger.Info("console login failed", "email", data.Email, "error", err)
		_, data.CSRFToken = c.ensureCSRFToken(w, r)
		data.Error = catalog.UserMessage(err)
		c.renderAuthPage(w, statusFor(err), "login", data)
		return
	}

	if err := c.createSession(w, r, data.Email, token); err != nil {
		c.logger.Error("failed to create session", "error", err)
		_, data.CSRFToken = c.ensureCSRFToken(w, r)
		data.Error = catalog.GenericMessage
		c.renderAuthPage(w, http.StatusInternalServerError, "login", data)
		return
	}

	c.logger.Info("console login successful", "email", data.Email)
	http.Redirect(w, r, "/console/home", http.StatusSeeOther)
}

// handleRegisterPage renders the registration page
func (c *Console) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if c.signedIn(r) {
		http.Redirect(w, r, "/console/home", http.StatusSeeOther)
		return
	}

	_, csrfToken := c.ensureCSRFToken(w, r)
	c.renderAuthPage(w, http.StatusOK, "register", authData{Title: "Create Account", CSRFToken: csrfToken})
}

// handleRegister processes the registration form
func (c *Console) handleRegister(w http.ResponseWriter, r *http.Request) {
	data := authData{Title: "Create Account"}

	if err := r.ParseForm(); err != nil {
		_, data.CSRFToken = c.ensureCSRFToken(w, r)
		data.Error = "Invalid form data"
		c.renderAuthPage(w, http.StatusBadRequest, "register", data)
		return
	}

	data.Name = strings.TrimSpace(r.FormValue("name"))
	data.Email = strings.TrimSpace(r.FormValue("email"))

	if !c.validateCSRF(r) {
		_, data.CSRFToken = c.ensureCSRFToken(w, r)
		data.Error = "Invalid request, please try again"
		c.renderAuthPage(w, http.StatusForbidden, "register", data)
		return
	}

	token, err := c.client.Register(r.Context(), data.Name, data.Email, r.FormValue("password"))
	if err != nil {
		_, data.CSRFToken = c.ensureCSRFToken(w, r)
		data.Error = catalog.UserMessage(err)
		c.renderAuthPage(w, statusFor(err), "register", data)
		return
	}

	if err := c.createSession(w, r, data.Email, token); err != nil {
		c.logger.Error("failed to create session", "error", err)
		http.Redirect(w, r, "/console/login", http.StatusSeeOther)
		return
	}

	c.logger.Info("console account registered", "email", data.Email)
	http.Redirect(w, r, "/console/home", http.StatusSeeOther)
}

// handleLogout ends the current session
func (c *Console) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		// Don't block logout on an invalid CSRF token
		if !c.validateCSRF(r) {
			c.logger.Warn("logout request with invalid CSRF token")
		}
	}

	rs := getSession(r)
	c.endSession(r.Context(), rs.ID)
	c.clearCookies(w)

	http.Redirect(w, r, "/console/login", http.StatusSeeOther)
}

// statusFor maps a catalog error to the status of the re-rendered page
func statusFor(err error) int {
	var cerr *catalog.Error
	if !errors.As(err, &cerr) {
		return http.StatusInternalServerError
	}
	switch cerr.Kind {
	case catalog.KindValidation:
		return http.StatusUnprocessableEntity
	case catalog.KindService:
		if cerr.Status >= 400 && cerr.Status < 500 {
			return cerr.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// uploadConstraints returns the file constraints with configured size caps
func (c *Console) uploadConstraints() (bookform.Constraint, bookform.Constraint) {
	return bookform.CoverImage.WithMaxBytes(c.config.MaxCoverBytes),
		bookform.BookFile.WithMaxBytes(c.config.MaxFileBytes)
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

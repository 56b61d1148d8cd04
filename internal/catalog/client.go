// ABOUTME: HTTP client for the remote catalog service REST contract
// ABOUTME: Attaches the bearer token from an injected TokenSource and paces requests with a rate limiter

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/2389/bookdesk/internal/metrics"
)

const (
	// DefaultTimeout bounds a single catalog request.
	DefaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of an error response is read for its message.
	maxErrorBody = 64 << 10
)

// sizedReader is a request body that reports its length before it is read.
// Bodies that net/http cannot measure on its own, such as wrapped buffers,
// implement it to avoid chunked uploads.
type sizedReader interface {
	Len() int
}

// TokenSource supplies the bearer credential for outgoing requests.
type TokenSource interface {
	Token() string
}

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables pacing
	Burst             int
	UserAgent         string
	HTTPClient        *http.Client
}

// Client talks to the catalog service. It is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	tokens    TokenSource
	logger    *slog.Logger
}

// New creates a Client bound to tokens. A nil tokens sends anonymous requests.
func New(opts Options, tokens TokenSource) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("catalog base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing catalog base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("catalog base URL must be http or https, got %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	burst := opts.Burst
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		if burst <= 0 {
			burst = 1
		}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "bookdesk"
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, burst),
		userAgent: userAgent,
		tokens:    tokens,
		logger:    slog.Default().With("component", "catalog"),
	}, nil
}

// WithSession returns a copy of c that reads its token from tokens.
// The copy shares the HTTP client and the rate limiter with c.
func (c *Client) WithSession(tokens TokenSource) *Client {
	clone := *c
	clone.tokens = tokens
	return &clone
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	Token       string `json:"token"`
}

// Login exchanges email and password for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	const op = "login"
	if email == "" || password == "" {
		return "", NewValidationError(op, "", "Email and password are required")
	}
	return c.postCredentials(ctx, op, "/api/users/login", credentials{Email: email, Password: password})
}

// Register creates an account and returns its access token.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	const op = "register"
	if name == "" || email == "" || password == "" {
		return "", NewValidationError(op, "", "Name, email and password are required")
	}
	return c.postCredentials(ctx, op, "/api/users/register", credentials{Name: name, Email: email, Password: password})
}

func (c *Client) postCredentials(ctx context.Context, op, path string, creds credentials) (string, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return "", &Error{Kind: KindTransport, Op: op, Err: err}
	}

	var resp tokenResponse
	if err := c.do(ctx, op, http.MethodPost, path, "application/json", bytes.NewReader(body), &resp); err != nil {
		return "", err
	}

	token := resp.AccessToken
	if token == "" {
		token = resp.Token
	}
	if token == "" {
		return "", &Error{Kind: KindService, Op: op, Status: http.StatusOK, Message: "no access token in response"}
	}
	return token, nil
}

// ListBooks returns every book visible to the current session.
func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	var books []Book
	if err := c.do(ctx, "list books", http.MethodGet, "/api/books", "", nil, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// GetBook fetches a single book. An empty id fails locally with ErrMissingID.
func (c *Client) GetBook(ctx context.Context, id string) (*Book, error) {
	const op = "get book"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	var book Book
	if err := c.do(ctx, op, http.MethodGet, bookPath(id), "", nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook posts a multipart body produced by the form encoder.
func (c *Client) CreateBook(ctx context.Context, contentType string, body io.Reader) (*Book, error) {
	var book Book
	if err := c.do(ctx, "create book", http.MethodPost, "/api/books", contentType, body, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook patches a book with a multipart body. An empty id fails locally.
func (c *Client) UpdateBook(ctx context.Context, id, contentType string, body io.Reader) (*Book, error) {
	const op = "update book"
	if err := requireID(op, id); err != nil {
		return nil, err
	}
	var book Book
	if err := c.do(ctx, op, http.MethodPatch, bookPath(id), contentType, body, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook removes a book. An empty id fails locally.
func (c *Client) DeleteBook(ctx context.Context, id string) error {
	const op = "delete book"
	if err := requireID(op, id); err != nil {
		return err
	}
	return c.do(ctx, op, http.MethodDelete, bookPath(id), "", nil, nil)
}

func requireID(op, id string) error {
	if strings.TrimSpace(id) == "" {
		return &Error{Kind: KindValidation, Op: op, Field: "id", Message: "Invalid Book ID", Err: ErrMissingID}
	}
	return nil
}

func bookPath(id string) string {
	return "/api/books/" + url.PathEscape(id)
}

// do issues one request and decodes a JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader, out any) error {
	start := time.Now()
	outcome := "transport_error"
	defer func() {
		metrics.CatalogRequestsTotal.WithLabelValues(op, outcome).Inc()
		metrics.CatalogRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	if req.ContentLength == 0 && body != nil {
		if sized, ok := body.(sizedReader); ok {
			req.ContentLength = int64(sized.Len())
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("catalog request failed", "op", op, "error", err)
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	outcome = strconv.Itoa(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cerr := &Error{Kind: KindService, Op: op, Status: resp.StatusCode, Message: readServiceMessage(resp.Body)}
		c.logger.Debug("catalog service error", "op", op, "status", resp.StatusCode, "message", cerr.Message)
		return cerr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// readServiceMessage extracts {"message": "..."} from an error body, or "".
func readServiceMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

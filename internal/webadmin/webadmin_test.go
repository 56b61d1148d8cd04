// ABOUTME: End-to-end tests for the console handlers against a fake catalog service
// ABOUTME: Drives login, list search and pagination, the delete dialog and the create form through the mux

package webadmin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/bookdesk/internal/catalog"
	"github.com/2389/bookdesk/internal/store"
)

// fakeCatalog is an in-memory catalog service.
type fakeCatalog struct {
	mu          sync.Mutex
	books       []catalog.Book
	token       string
	listCalls   int
	deleted     []string
	created     []string
	updated     []string
	deleteError int // status returned by DELETE when non-zero
	listStatus  int // status returned by GET /api/books when non-zero
}

func (f *fakeCatalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/api/users/login" {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"Username or password incorrect!"}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": f.token})
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/books/")
	switch {
	case r.URL.Path == "/api/books" && r.Method == http.MethodGet:
		f.listCalls++
		if f.listStatus != 0 {
			w.WriteHeader(f.listStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(f.books)
	case r.URL.Path == "/api/books" && r.Method == http.MethodPost:
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		book := catalog.Book{ID: fmt.Sprintf("new-%d", len(f.created)+1), Title: r.FormValue("title"), Genre: r.FormValue("genre")}
		f.created = append(f.created, book.Title)
		f.books = append(f.books, book)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(book)
	case r.Method == http.MethodPatch:
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		for i := range f.books {
			if f.books[i].ID == id {
				f.books[i].Title = r.FormValue("title")
				f.books[i].Genre = r.FormValue("genre")
				f.updated = append(f.updated, id)
				_ = json.NewEncoder(w).Encode(f.books[i])
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodDelete:
		if f.deleteError != 0 {
			w.WriteHeader(f.deleteError)
			_, _ = io.WriteString(w, `{"message":"You can not delete others book."}`)
			return
		}
		f.deleted = append(f.deleted, id)
		for i, b := range f.books {
			if b.ID == id {
				f.books = append(f.books[:i], f.books[i+1:]...)
				break
			}
		}
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet:
		for _, b := range f.books {
			if b.ID == id {
				_ = json.NewEncoder(w).Encode(b)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeCatalog) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func seedBooks(n int) []catalog.Book {
	books := make([]catalog.Book, n)
	for i := range books {
		books[i] = catalog.Book{
			ID:        fmt.Sprintf("b%02d", i+1),
			Title:     fmt.Sprintf("Book %02d", i+1),
			Genre:     "Fiction",
			Author:    &catalog.Author{Name: "Author"},
			CreatedAt: time.Date(2024, 1, i+1, 9, 0, 0, 0, time.UTC),
		}
	}
	return books
}

type testEnv struct {
	console *Console
	handler http.Handler
	catalog *fakeCatalog
	store   *store.SQLiteStore
}

func newTestEnv(t *testing.T, books []catalog.Book) *testEnv {
	t.Helper()

	fake := &fakeCatalog{books: books, token: "tok-1"}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := catalog.New(catalog.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	console, err := New(s, client, Config{SessionTTL: time.Hour, BooksTTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(console.Close)

	mux := http.NewServeMux()
	console.RegisterRoutes(mux)

	return &testEnv{console: console, handler: Instrument(mux), catalog: fake, store: s}
}

// browser keeps cookies between requests against the handler.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]string
}

func (e *testEnv) browser(t *testing.T) *browser {
	return &browser{t: t, handler: e.handler, cookies: make(map[string]string)}
}

func (b *browser) send(req *http.Request) *httptest.ResponseRecorder {
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.send(httptest.NewRequest(http.MethodGet, path, nil))
}

// post submits a urlencoded form, adding the CSRF token when the browser has one.
func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	if _, ok := form["csrf_token"]; !ok {
		form.Set("csrf_token", b.cookies[CSRFCookieName])
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.send(req)
}

func (b *browser) login() {
	b.t.Helper()
	b.get("/console/login")
	rec := b.post("/console/login", url.Values{"email": {"ada@example.com"}, "password": {"secret"}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(b.t, "/console/home", rec.Header().Get("Location"))
	require.NotEmpty(b.t, b.cookies[SessionCookieName])
}

func TestRequireAuth_RedirectsToLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser(t)

	for _, path := range []string{"/console/home", "/console/books", "/console/books/create"} {
		rec := b.get(path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/console/login", rec.Header().Get("Location"), path)
	}
}

func TestLogin_SetsSessionAndRendersHome(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser(t)
	b.login()

	rec := b.get("/console/home")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Welcome to Bookdesk</h1>")
	assert.Contains(t, body, "ada@example.com")
	assert.Contains(t, body, "No catalog changes yet.")

	// Signed-in users skip the login page.
	rec = b.get("/console/login")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/console/home", rec.Header().Get("Location"))
}

func TestLogin_RejectsMissingCSRF(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser(t)
	b.get("/console/login")

	rec := b.post("/console/login", url.Values{
		"email":      {"ada@example.com"},
		"password":   {"secret"},
		"csrf_token": {"forged"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, b.cookies[SessionCookieName])
}

func TestLogin_ShowsServiceMessage(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser(t)
	b.get("/console/login")

	rec := b.post("/console/login", url.Values{"email": {"ada@example.com"}, "password": {"nope"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Username or password incorrect!")
	assert.Contains(t, rec.Body.String(), `value="ada@example.com"`)
}

func TestLogin_ExpiredTokenIsSignedOut(t *testing.T) {
	env := newTestEnv(t, nil)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ada",
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	env.catalog.token = expired

	b := env.browser(t)
	b.login()

	rec := b.get("/console/books")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/console/login", rec.Header().Get("Location"))
}

func TestLogout_EndsSession(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser(t)
	b.login()
	sessionID := b.cookies[SessionCookieName]

	rec := b.post("/console/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	_, err := env.store.GetConsoleSession(t.Context(), sessionID)
	assert.ErrorIs(t, err, store.ErrConsoleSessionNotFound)

	b.cookies[SessionCookieName] = sessionID
	rec = b.get("/console/books")
	assert.Equal(t, "/console/login", rec.Header().Get("Location"))
}

func TestBooks_PaginatesAndSummarizes(t *testing.T) {
	env := newTestEnv(t, seedBooks(12))
	b := env.browser(t)
	b.login()

	rec := b.get("/console/books?page=2")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Displaying 6-10 of 12 books")
	assert.Contains(t, body, "Book 06")
	assert.Contains(t, body, "Book 10")
	assert.NotContains(t, body, "Book 05")
	assert.NotContains(t, body, "Book 11")
	assert.Contains(t, body, `aria-current="page">2<`)
	assert.Contains(t, body, `href="/console/books?page=3"`)

	rec = b.get("/console/books?page=9")
	assert.Contains(t, rec.Body.String(), "Displaying 0-0 of 12 books")
}

func TestBooks_CachesListAcrossRequests(t *testing.T) {
	env := newTestEnv(t, seedBooks(3))
	b := env.browser(t)
	b.login()

	b.get("/console/books")
	b.get("/console/books?page=1")
	b.get("/console/books?search=book")
	assert.Equal(t, 1, env.catalog.calls())
}

func TestSearch_ResetsPageOnlyWhenNonEmpty(t *testing.T) {
	env := newTestEnv(t, seedBooks(12))
	b := env.browser(t)
	b.login()

	rec := b.post("/console/books/search", url.Values{"q": {"page=3"}, "search": {"Book 07"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/console/books?page=1&search=Book+07", rec.Header().Get("Location"))

	rec = b.post("/console/books/search", url.Values{"q": {"page=2&search=abc"}, "search": {""}})
	assert.Equal(t, "/console/books?page=2", rec.Header().Get("Location"))

	rec = b.get("/console/books?page=1&search=book+07")
	body := rec.Body.String()
	assert.Contains(t, body, "Displaying 1-1 of 1 book · Filtered from 12 total")
	assert.Contains(t, body, `value="book 07"`)
}

func TestSearch_RequiresCSRF(t *testing.T) {
	env := newTestEnv(t, seedBooks(1))
	b := env.browser(t)
	b.login()

	rec := b.post("/console/books/search", url.Values{"search": {"x"}, "csrf_token": {"bad"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBooks_ShowsErrorWithRetry(t *testing.T) {
	env := newTestEnv(t, nil)
	env.catalog.listStatus = http.StatusInternalServerError
	b := env.browser(t)
	b.login()

	rec := b.get("/console/books?search=x")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, catalog.GenericMessage)
	assert.Contains(t, body, `href="/console/books?search=x"`)
}

func TestBooks_UnauthorizedEndsSession(t *testing.T) {
	env := newTestEnv(t, nil)
	env.catalog.listStatus = http.StatusUnauthorized
	b := env.browser(t)
	b.login()

	rec := b.get("/console/books")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/console/login", rec.Header().Get("Location"))
	assert.Empty(t, b.cookies[SessionCookieName])
}

func TestDelete_ConfirmRemovesBookAndRefetches(t *testing.T) {
	env := newTestEnv(t, seedBooks(6))
	b := env.browser(t)
	b.login()

	b.get("/console/books?page=2")
	require.Equal(t, 1, env.catalog.calls())

	rec := b.post("/console/books/b06/menu", url.Values{"q": {"page=2"}})
	assert.Equal(t, "/console/books?page=2", rec.Header().Get("Location"))
	assert.Contains(t, b.get("/console/books?page=2").Body.String(), `action="/console/books/b06/delete"`)

	rec = b.post("/console/books/b06/delete", url.Values{"q": {"page=2"}, "title": {"Book 06"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	body := b.get("/console/books?page=2").Body.String()
	assert.Contains(t, body, "Are you absolutely sure?")
	assert.Contains(t, body, "This will permanently delete the book with title &#34;Book 06&#34;.")

	rec = b.post("/console/books/delete/confirm", url.Values{"q": {"page=2"}})
	assert.Equal(t, "/console/books?page=2", rec.Header().Get("Location"))
	assert.Equal(t, []string{"b06"}, env.catalog.deleted)

	body = b.get("/console/books?page=2").Body.String()
	assert.Equal(t, 2, env.catalog.calls(), "mutation must invalidate the cached list")
	assert.NotContains(t, body, "Are you absolutely sure?")
	assert.Contains(t, body, "Displaying 0-0 of 5 books")

	entries, err := env.store.ListAuditLog(t.Context(), store.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.AuditDeleteBook, entries[0].Action)
	assert.Equal(t, "b06", entries[0].BookID)
	assert.Equal(t, "ada@example.com", entries[0].Actor)
}

func TestDelete_FailureKeepsDialogOpen(t *testing.T) {
	env := newTestEnv(t, seedBooks(2))
	env.catalog.deleteError = http.StatusForbidden
	b := env.browser(t)
	b.login()

	b.post("/console/books/b01/delete", url.Values{"title": {"Book 01"}})
	rec := b.post("/console/books/delete/confirm", nil)
	assert.Equal(t, "/console/books", rec.Header().Get("Location"))

	body := b.get("/console/books").Body.String()
	assert.Contains(t, body, "Are you absolutely sure?")
	assert.Contains(t, body, "You can not delete others book.")
	assert.Empty(t, env.catalog.deleted)

	b.post("/console/books/delete/cancel", nil)
	assert.NotContains(t, b.get("/console/books").Body.String(), "Are you absolutely sure?")
}

func TestDelete_ConfirmWithoutRequestIsIgnored(t *testing.T) {
	env := newTestEnv(t, seedBooks(1))
	b := env.browser(t)
	b.login()

	rec := b.post("/console/books/delete/confirm", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, env.catalog.deleted)
}

type part struct {
	field, filename, contentType string
	data                         []byte
}

func (b *browser) postMultipart(path string, fields map[string]string, parts ...part) *httptest.ResponseRecorder {
	b.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(b.t, mw.WriteField("csrf_token", b.cookies[CSRFCookieName]))
	for k, v := range fields {
		require.NoError(b.t, mw.WriteField(k, v))
	}
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.filename))
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(b.t, err)
		_, err = w.Write(p.data)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.send(req)
}

var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
)

func TestCreate_ValidatesBeforeSending(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser(t)
	b.login()
	b.get("/console/books/create")

	rec := b.postMultipart("/console/books/create", map[string]string{"title": "D", "genre": "Sci-Fi"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Title must be at least 2 characters")
	assert.Contains(t, body, "Cover image is required")
	assert.Contains(t, body, "Book file is required")
	assert.Contains(t, body, `value="Sci-Fi"`)
	assert.Empty(t, env.catalog.created)
}

func TestCreate_RejectsWrongFileType(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser(t)
	b.login()
	b.get("/console/books/create")

	rec := b.postMultipart("/console/books/create",
		map[string]string{"title": "Dune", "genre": "Sci-Fi"},
		part{"coverImage", "cover.pdf", "image/png", pdfBytes},
		part{"file", "dune.pdf", "application/pdf", pdfBytes},
	)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cover image must be an image")
	assert.Empty(t, env.catalog.created)
}

func TestCreate_SubmitsAndInvalidates(t *testing.T) {
	env := newTestEnv(t, seedBooks(1))
	b := env.browser(t)
	b.login()
	b.get("/console/books")
	require.Equal(t, 1, env.catalog.calls())

	rec := b.postMultipart("/console/books/create",
		map[string]string{"title": "  Dune  ", "genre": "Sci-Fi"},
		part{"coverImage", "cover.png", "image/png", pngBytes},
		part{"file", "dune.pdf", "application/pdf", pdfBytes},
	)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/console/books", rec.Header().Get("Location"))
	assert.Equal(t, []string{"Dune"}, env.catalog.created)

	body := b.get("/console/books").Body.String()
	assert.Equal(t, 2, env.catalog.calls())
	assert.Contains(t, body, "Dune")

	entries, err := env.store.ListAuditLog(t.Context(), store.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.AuditCreateBook, entries[0].Action)
	assert.Equal(t, map[string]any{"cover": "cover.png", "file": "dune.pdf"}, entries[0].Detail)
}

func TestEdit_AuditsOnlyReplacedFiles(t *testing.T) {
	env := newTestEnv(t, seedBooks(1))
	b := env.browser(t)
	b.login()
	b.get("/console/books/b01/edit")

	rec := b.postMultipart("/console/books/b01/edit",
		map[string]string{"title": "Book One", "genre": "Fiction"},
		part{"coverImage", "new-cover.png", "image/png", pngBytes},
	)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"b01"}, env.catalog.updated)

	entries, err := env.store.ListAuditLog(t.Context(), store.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.AuditUpdateBook, entries[0].Action)
	assert.Equal(t, "Book One", entries[0].Title)
	assert.Equal(t, map[string]any{"cover": "new-cover.png"}, entries[0].Detail)

	home := b.get("/console/home").Body.String()
	assert.Contains(t, home, "new-cover.png")

	// A text-only edit carries no upload detail.
	b.get("/console/books/b01/edit")
	rec = b.postMultipart("/console/books/b01/edit", map[string]string{"title": "Book Uno", "genre": "Fiction"})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	entries, err = env.store.ListAuditLog(t.Context(), store.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].Detail)
}

func TestEditPage_PrefillsAndReportsMissingBook(t *testing.T) {
	env := newTestEnv(t, seedBooks(1))
	b := env.browser(t)
	b.login()

	rec := b.get("/console/books/b01/edit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Book 01"`)
	assert.Contains(t, rec.Body.String(), "Leave empty to keep the current cover.")

	rec = b.get("/console/books/missing/edit")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `role="alert"`)
}

func TestInstrument_RequestIDAndRecovery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	mux.HandleFunc("GET /id", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, RequestIDFrom(r.Context()))
	})
	h := Instrument(mux)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Body.String())
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
}

func TestRenderMarkdown_Sanitizes(t *testing.T) {
	html, err := renderMarkdown([]byte("# Hi\n\n<script>alert(1)</script>\n\n[x](javascript:alert(1))"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1>Hi</h1>")
	assert.NotContains(t, string(html), "<script>")
	assert.NotContains(t, string(html), "javascript:")
}

func TestStaticAssets_ServedWithoutSession(t *testing.T) {
	env := newTestEnv(t, nil)
	b := env.browser(t)

	page := b.get("/console/login").Body.String()
	require.Contains(t, page, `href="/console/static/console.css?v=`)

	rec := b.get("/console/static/console.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

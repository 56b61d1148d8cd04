// ABOUTME: Template parsing and rendering for the console pages
// ABOUTME: Each page is parsed once at startup together with the shared base layout

package webadmin

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/2389/bookdesk/internal/assets"
	"github.com/2389/bookdesk/internal/catalog"
	"github.com/2389/bookdesk/internal/deleteflow"
	"github.com/2389/bookdesk/internal/listing"
	"github.com/2389/bookdesk/internal/store"
)

var pageNames = []string{"login", "register", "home", "books", "book_form"}

var templateFuncs = template.FuncMap{
	"userMessage": catalog.UserMessage,
	"asset":       assets.URL,
	"uploads":     uploadsLabel,
}

// uploadsLabel lists the files recorded in an audit entry's detail.
func uploadsLabel(detail map[string]any) string {
	var names []string
	for _, key := range []string{"cover", "file"} {
		if name, ok := detail[key].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// parsePages parses every page against the base layout.
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("base.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// Template data types
type authData struct {
	Title     string
	Error     string
	CSRFToken string
	Name      string
	Email     string
}

type homeData struct {
	Title       string
	Email       string
	CSRFToken   string
	Content     template.HTML
	Activity    []store.AuditEntry
	TokenExpiry string
}

type bookRow struct {
	catalog.Book
	MenuOpen bool
}

type booksData struct {
	Title     string
	Email     string
	CSRFToken string
	Query     string // encoded list state carried by every form
	Search    string
	Rows      []bookRow
	View      listing.View
	Pager     listing.Pager
	Dialog    deleteflow.Snapshot
	Error     string
	RetryURL  string
}

type bookFormData struct {
	Title     string
	Email     string
	CSRFToken string
	Editing   bool
	BookID    string
	Action    string
	Values    formValues
	Current   *catalog.Book
	Errors    map[string]string
	Error     string
	LoadError string
}

type formValues struct {
	Title string
	Genre string
}

// render executes a parsed page into a buffer so a template failure never
// produces a half-written response.
func (c *Console) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := c.pages[page]
	if !ok {
		c.logger.Error("unknown page", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		c.logger.Error("failed to render page", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderAuthPage renders the login or register page
func (c *Console) renderAuthPage(w http.ResponseWriter, status int, page string, data authData) {
	c.render(w, status, page, data)
}

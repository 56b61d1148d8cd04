// ABOUTME: Dashboard shell with rendered help markdown and recent catalog activity
// ABOUTME: Markdown is converted with goldmark and sanitized with bluemonday before display

package webadmin

import (
	"bytes"
	"html/template"
	"net/http"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/2389/bookdesk/internal/session"
	"github.com/2389/bookdesk/internal/store"
)

// recentActivity is how many audit entries the dashboard shows.
const recentActivity = 10

var (
	homeOnce    sync.Once
	homeContent template.HTML
)

// renderMarkdown converts markdown to sanitized HTML
func renderMarkdown(src []byte) (template.HTML, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", err
	}
	return template.HTML(bluemonday.UGCPolicy().SanitizeBytes(buf.Bytes())), nil
}

// homeHTML renders the embedded dashboard document once
func (c *Console) homeHTML() template.HTML {
	homeOnce.Do(func() {
		src, err := docsFS.ReadFile("docs/home.md")
		if err != nil {
			c.logger.Error("failed to read dashboard doc", "error", err)
			src = []byte("# Welcome\n")
		}
		html, err := renderMarkdown(src)
		if err != nil {
			c.logger.Error("failed to convert markdown", "error", err)
			html = "<p>Failed to render dashboard content.</p>"
		}
		homeContent = html
	})
	return homeContent
}

// handleHome renders the dashboard
func (c *Console) handleHome(w http.ResponseWriter, r *http.Request) {
	rs := getSession(r)
	r, csrfToken := c.ensureCSRFToken(w, r)

	data := homeData{
		Title:     "Home",
		Email:     rs.Email,
		CSRFToken: csrfToken,
		Content:   c.homeHTML(),
	}

	if claims, err := session.Inspect(rs.state.tokens.Token()); err == nil && !claims.ExpiresAt.IsZero() {
		data.TokenExpiry = claims.ExpiresAt.Local().Format("2 Jan 2006, 03:04 PM")
	}

	activity, err := c.store.ListAuditLog(r.Context(), store.AuditFilter{Limit: recentActivity})
	if err != nil {
		c.logger.Warn("failed to load recent activity", "error", err)
	}
	data.Activity = activity

	c.render(w, http.StatusOK, "home", data)
}

// ABOUTME: Book list handlers: filtered and paginated listing, search, row menus and delete confirmation
// ABOUTME: Every state change is a POST that redirects back to the list URL carrying search and page

package webadmin

import (
	"context"
	"errors"
	"net/http"

	"github.com/2389/bookdesk/internal/catalog"
	"github.com/2389/bookdesk/internal/deleteflow"
	"github.com/2389/bookdesk/internal/listing"
	"github.com/2389/bookdesk/internal/store"
)

const booksPath = "/console/books"

// handleBooks renders the book list for the requested search and page
func (c *Console) handleBooks(w http.ResponseWriter, r *http.Request) {
	rs := getSession(r)
	r, csrfToken := c.ensureCSRFToken(w, r)

	q := listing.ParseQuery(r.URL.Query())
	data := booksData{
		Title:     "Books",
		Email:     rs.Email,
		CSRFToken: csrfToken,
		Query:     q.Encode(),
		Search:    q.Search(),
		Dialog:    rs.state.flow.Snapshot(),
	}

	books, err := c.books.Get(r.Context(), booksKey(rs.ID), rs.client.ListBooks)
	if err != nil {
		if errors.Is(err, catalog.ErrUnauthorized) {
			c.endSession(r.Context(), rs.ID)
			c.clearCookies(w)
			http.Redirect(w, r, "/console/login", http.StatusSeeOther)
			return
		}
		c.logger.Warn("failed to list books", "error", err)
		data.Error = catalog.UserMessage(err)
		data.RetryURL = q.URL(booksPath)
		c.render(w, http.StatusOK, "books", data)
		return
	}

	data.View = listing.ComputeView(books, q.Search(), q.Page())
	data.Pager = listing.NewPager(data.View, q, booksPath)

	data.Rows = make([]bookRow, len(data.View.Visible))
	for i, b := range data.View.Visible {
		data.Rows[i] = bookRow{Book: b, MenuOpen: data.Dialog.MenuFor == b.ID}
	}

	c.render(w, http.StatusOK, "books", data)
}

// handleSearch applies a new search term, resetting the page when it is non-empty
func (c *Console) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !c.parseAndCheck(w, r) {
		return
	}

	q := listing.ParseRawQuery(r.FormValue("q")).WithSearch(r.FormValue("search"))
	http.Redirect(w, r, q.URL(booksPath), http.StatusSeeOther)
}

// handleMenu toggles the per-row action menu
func (c *Console) handleMenu(w http.ResponseWriter, r *http.Request) {
	if !c.parseAndCheck(w, r) {
		return
	}

	getSession(r).state.flow.ToggleMenu(r.PathValue("id"))
	c.redirectToList(w, r)
}

// handleDeleteRequest opens the confirmation dialog for a book
func (c *Console) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	if !c.parseAndCheck(w, r) {
		return
	}

	id := r.PathValue("id")
	if err := getSession(r).state.flow.Request(id, r.FormValue("title")); err != nil {
		c.logger.Debug("delete request ignored", "book_id", id, "error", err)
	}
	c.redirectToList(w, r)
}

// handleDeleteCancel closes the dialog unless the delete is in flight
func (c *Console) handleDeleteCancel(w http.ResponseWriter, r *http.Request) {
	if !c.parseAndCheck(w, r) {
		return
	}

	if err := getSession(r).state.flow.Cancel(); err != nil {
		c.logger.Debug("delete cancel ignored", "error", err)
	}
	c.redirectToList(w, r)
}

// handleDeleteConfirm issues the delete. The call is not tied to the browser
// connection, so a closed tab cannot abandon it halfway.
func (c *Console) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	if !c.parseAndCheck(w, r) {
		return
	}

	rs := getSession(r)

	deleted, err := rs.state.flow.Confirm(context.WithoutCancel(r.Context()))
	switch {
	case err == nil:
		c.audit(r.Context(), rs, store.AuditDeleteBook, deleted.BookID, deleted.Title, nil)
	case errors.Is(err, deleteflow.ErrBusy), errors.Is(err, deleteflow.ErrNoPendingDelete):
		c.logger.Debug("delete confirm ignored", "error", err)
	case errors.Is(err, catalog.ErrUnauthorized):
		c.endSession(r.Context(), rs.ID)
		c.clearCookies(w)
		http.Redirect(w, r, "/console/login", http.StatusSeeOther)
		return
	}

	c.redirectToList(w, r)
}

// parseAndCheck parses the form and validates CSRF, writing 403 on failure
func (c *Console) parseAndCheck(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return false
	}
	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return false
	}
	return true
}

// redirectToList returns to the list view the form was posted from
func (c *Console) redirectToList(w http.ResponseWriter, r *http.Request) {
	q := listing.ParseRawQuery(r.FormValue("q"))
	http.Redirect(w, r, q.URL(booksPath), http.StatusSeeOther)
}

// audit records a book mutation; failures are logged and never surface to the user
func (c *Console) audit(ctx context.Context, rs *requestSession, action store.AuditAction, bookID, title string, detail map[string]any) {
	entry := &store.AuditEntry{
		Actor:  rs.Email,
		Action: action,
		BookID: bookID,
		Title:  title,
		Detail: detail,
	}
	if err := c.store.AppendAuditLog(context.WithoutCancel(ctx), entry); err != nil {
		c.logger.Warn("failed to append audit entry", "action", action, "book_id", bookID, "error", err)
	}
}

// ABOUTME: Create and edit handlers that turn multipart form posts into catalog mutations
// ABOUTME: Uploads are sniffed against their MIME constraint before anything is sent upstream

package webadmin

import (
	"errors"
	"net/http"

	"github.com/2389/bookdesk/internal/bookform"
	"github.com/2389/bookdesk/internal/catalog"
	"github.com/2389/bookdesk/internal/store"
)

// multipartMemory is the in-memory part of a parsed upload; larger files spill to disk.
const multipartMemory = 8 << 20

// handleCreatePage renders an empty create form
func (c *Console) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	rs := getSession(r)
	_, csrfToken := c.ensureCSRFToken(w, r)

	c.render(w, http.StatusOK, "book_form", bookFormData{
		Title:     "Create a new book",
		Email:     rs.Email,
		CSRFToken: csrfToken,
		Action:    booksPath + "/create",
	})
}

// handleCreate validates and submits a new book
func (c *Console) handleCreate(w http.ResponseWriter, r *http.Request) {
	rs := getSession(r)
	data := bookFormData{
		Title:  "Create a new book",
		Email:  rs.Email,
		Action: booksPath + "/create",
	}

	values, ok := c.readForm(w, r, &data)
	if !ok {
		return
	}

	contentType, body, err := values.Encode(bookform.Create)
	if err == nil {
		var book *catalog.Book
		book, err = rs.client.CreateBook(r.Context(), contentType, body)
		if err == nil {
			c.invalidateBooks(rs.ID)
			c.audit(r.Context(), rs, store.AuditCreateBook, book.ID, values.Title, uploadDetail(values))
			c.logger.Info("book created", "book_id", book.ID, "email", rs.Email)
			http.Redirect(w, r, booksPath, http.StatusSeeOther)
			return
		}
	}

	c.renderFormError(w, r, &data, err)
}

// handleEditPage loads a book and renders the pre-filled edit form
func (c *Console) handleEditPage(w http.ResponseWriter, r *http.Request) {
	rs := getSession(r)
	_, csrfToken := c.ensureCSRFToken(w, r)

	id := r.PathValue("id")
	data := bookFormData{
		Title:     "Edit book",
		Email:     rs.Email,
		CSRFToken: csrfToken,
		Editing:   true,
		BookID:    id,
		Action:    booksPath + "/" + id + "/edit",
	}

	book, err := rs.client.GetBook(r.Context(), id)
	if err != nil {
		data.LoadError = catalog.UserMessage(err)
		c.render(w, statusFor(err), "book_form", data)
		return
	}

	data.Current = book
	data.Values = formValues{Title: book.Title, Genre: book.Genre}
	c.render(w, http.StatusOK, "book_form", data)
}

// handleEdit validates and submits changes; only newly chosen files are attached
func (c *Console) handleEdit(w http.ResponseWriter, r *http.Request) {
	rs := getSession(r)
	id := r.PathValue("id")
	data := bookFormData{
		Title:   "Edit book",
		Email:   rs.Email,
		Editing: true,
		BookID:  id,
		Action:  booksPath + "/" + id + "/edit",
	}

	values, ok := c.readForm(w, r, &data)
	if !ok {
		return
	}

	contentType, body, err := values.Encode(bookform.Edit)
	if err == nil {
		_, err = rs.client.UpdateBook(r.Context(), id, contentType, body)
		if err == nil {
			c.invalidateBooks(rs.ID)
			c.audit(r.Context(), rs, store.AuditUpdateBook, id, values.Title, uploadDetail(values))
			c.logger.Info("book updated", "book_id", id, "email", rs.Email)
			http.Redirect(w, r, booksPath, http.StatusSeeOther)
			return
		}
	}

	c.renderFormError(w, r, &data, err)
}

// uploadDetail names the files a mutation attached, or nil when none were.
func uploadDetail(v bookform.Values) map[string]any {
	detail := map[string]any{}
	if v.CoverImage != nil {
		detail["cover"] = v.CoverImage.Filename
	}
	if v.File != nil {
		detail["file"] = v.File.Filename
	}
	if len(detail) == 0 {
		return nil
	}
	return detail
}

// readForm parses the multipart post, checks CSRF and reads both file inputs.
// It writes the response itself and returns false when the form cannot be used.
func (c *Console) readForm(w http.ResponseWriter, r *http.Request, data *bookFormData) (bookform.Values, bool) {
	coverRule, fileRule := c.uploadConstraints()
	r.Body = http.MaxBytesReader(w, r.Body, coverRule.MaxBytes+fileRule.MaxBytes+(1<<20))

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		_, data.CSRFToken = c.ensureCSRFToken(w, r)
		data.Error = "The upload could not be read"
		c.render(w, http.StatusBadRequest, "book_form", data)
		return bookform.Values{}, false
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	if !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return bookform.Values{}, false
	}

	values := bookform.Values{
		Title: r.FormValue(bookform.FieldTitle),
		Genre: r.FormValue(bookform.FieldGenre),
	}
	data.Values = formValues{Title: values.Title, Genre: values.Genre}

	var errs []error
	var err error
	if values.CoverImage, err = bookform.FormFile(coverRule, r.MultipartForm); err != nil {
		errs = append(errs, err)
	}
	if values.File, err = bookform.FormFile(fileRule, r.MultipartForm); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		c.renderFormError(w, r, data, errors.Join(errs...))
		return bookform.Values{}, false
	}

	return values, true
}

// renderFormError re-renders the form with field messages for validation
// failures and the service message for everything else
func (c *Console) renderFormError(w http.ResponseWriter, r *http.Request, data *bookFormData, err error) {
	_, data.CSRFToken = c.ensureCSRFToken(w, r)

	if catalog.IsValidation(err) {
		data.Errors = bookform.FieldMessages(err)
		if msg, ok := data.Errors[""]; ok {
			data.Error = msg
			delete(data.Errors, "")
		}
		if msg, ok := data.Errors["id"]; ok {
			data.Error = msg
			delete(data.Errors, "id")
		}
		c.render(w, http.StatusUnprocessableEntity, "book_form", data)
		return
	}

	c.logger.Warn("book mutation failed", "error", err)
	data.Error = catalog.UserMessage(err)
	c.render(w, statusFor(err), "book_form", data)
}

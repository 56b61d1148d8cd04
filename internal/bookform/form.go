// ABOUTME: Book create/edit form values, validation rules and multipart encoding
// ABOUTME: Edit mode attaches only the files the user picked; create mode requires both

package bookform

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"unicode/utf8"

	"github.com/2389/bookdesk/internal/catalog"
)

// MinTextLength is the minimum rune count for title and genre.
const MinTextLength = 2

// Mode selects the validation rules.
type Mode int

const (
	Create Mode = iota
	Edit
)

func (m Mode) op() string {
	if m == Edit {
		return "update book"
	}
	return "create book"
}

// Values is the submitted form.
type Values struct {
	Title      string
	Genre      string
	CoverImage *Payload
	File       *Payload
}

// Validate checks v for mode. All failing fields are reported, joined with
// errors.Join; each is a catalog validation error.
func (v Values) Validate(mode Mode) error {
	op := mode.op()
	var errs []error

	if utf8.RuneCountInString(strings.TrimSpace(v.Title)) < MinTextLength {
		errs = append(errs, catalog.NewValidationError(op, FieldTitle,
			fmt.Sprintf("Title must be at least %d characters", MinTextLength)))
	}
	if utf8.RuneCountInString(strings.TrimSpace(v.Genre)) < MinTextLength {
		errs = append(errs, catalog.NewValidationError(op, FieldGenre,
			fmt.Sprintf("Genre must be at least %d characters", MinTextLength)))
	}
	if mode == Create {
		if v.CoverImage == nil {
			errs = append(errs, catalog.NewValidationError(op, FieldCoverImage, CoverImage.Label+" is required"))
		}
		if v.File == nil {
			errs = append(errs, catalog.NewValidationError(op, FieldFile, BookFile.Label+" is required"))
		}
	}
	return errors.Join(errs...)
}

// Encode validates v and writes it as multipart/form-data.
// It returns the Content-Type header (with boundary) and the body.
func (v Values) Encode(mode Mode) (string, *bytes.Buffer, error) {
	if err := v.Validate(mode); err != nil {
		return "", nil, err
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := w.WriteField(FieldTitle, strings.TrimSpace(v.Title)); err != nil {
		return "", nil, fmt.Errorf("writing title: %w", err)
	}
	if err := w.WriteField(FieldGenre, strings.TrimSpace(v.Genre)); err != nil {
		return "", nil, fmt.Errorf("writing genre: %w", err)
	}
	if err := writeFile(w, FieldCoverImage, v.CoverImage); err != nil {
		return "", nil, err
	}
	if err := writeFile(w, FieldFile, v.File); err != nil {
		return "", nil, err
	}
	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("closing multipart body: %w", err)
	}
	return w.FormDataContentType(), body, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// writeFile attaches p with its detected Content-Type. A nil p is skipped.
func writeFile(w *multipart.Writer, field string, p *Payload) error {
	if p == nil {
		return nil
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(p.Filename)))
	h.Set("Content-Type", p.ContentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating %s part: %w", field, err)
	}
	if _, err := part.Write(p.Data); err != nil {
		return fmt.Errorf("writing %s part: %w", field, err)
	}
	return nil
}

// FieldMessages flattens a Validate error into field → message. Errors without
// a field are keyed by "".
func FieldMessages(err error) map[string]string {
	out := map[string]string{}
	collect(err, out)
	return out
}

func collect(err error, out map[string]string) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			collect(e, out)
		}
		return
	}
	var cerr *catalog.Error
	if errors.As(err, &cerr) && cerr.Kind == catalog.KindValidation {
		if _, seen := out[cerr.Field]; !seen {
			out[cerr.Field] = cerr.Message
		}
		return
	}
	if _, seen := out[""]; !seen {
		out[""] = catalog.UserMessage(err)
	}
}

// ABOUTME: Typed binary payloads for cover images and book files with a declared MIME constraint
// ABOUTME: Content is sniffed and size-capped before it can be attached to a request

package bookform

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/2389/bookdesk/internal/catalog"
)

// Field names of the multipart body.
const (
	FieldTitle      = "title"
	FieldGenre      = "genre"
	FieldCoverImage = "coverImage"
	FieldFile       = "file"
)

// Default size caps.
const (
	DefaultMaxCoverBytes = 10 << 20
	DefaultMaxFileBytes  = 50 << 20
)

// Constraint declares what a file input accepts.
type Constraint struct {
	Field    string
	Label    string
	Accept   string // exact type or "type/*"
	MaxBytes int64
}

var (
	// CoverImage accepts any image.
	CoverImage = Constraint{Field: FieldCoverImage, Label: "Cover image", Accept: "image/*", MaxBytes: DefaultMaxCoverBytes}

	// BookFile accepts PDF documents.
	BookFile = Constraint{Field: FieldFile, Label: "Book file", Accept: "application/pdf", MaxBytes: DefaultMaxFileBytes}
)

// WithMaxBytes returns c with a different size cap. Non-positive n keeps the current cap.
func (c Constraint) WithMaxBytes(n int64) Constraint {
	if n > 0 {
		c.MaxBytes = n
	}
	return c
}

// Allows reports whether the detected type satisfies the constraint.
func (c Constraint) Allows(mt *mimetype.MIME) bool {
	if mt == nil {
		return false
	}
	if prefix, ok := strings.CutSuffix(c.Accept, "/*"); ok {
		for m := mt; m != nil; m = m.Parent() {
			if strings.HasPrefix(m.String(), prefix+"/") {
				return true
			}
		}
		return false
	}
	return mt.Is(c.Accept)
}

// Payload is a validated file ready for multipart attachment.
type Payload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (p *Payload) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}

// ReadPayload reads r fully and checks the content against c.
func ReadPayload(c Constraint, filename string, r io.Reader) (*Payload, error) {
	const op = "read upload"

	limit := c.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxFileBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.Field, err)
	}
	if len(data) == 0 {
		return nil, catalog.NewValidationError(op, c.Field, c.Label+" is empty")
	}
	if int64(len(data)) > limit {
		return nil, catalog.NewValidationError(op, c.Field, fmt.Sprintf("%s must be at most %s", c.Label, humanBytes(limit)))
	}

	mt := mimetype.Detect(data)
	if !c.Allows(mt) {
		return nil, catalog.NewValidationError(op, c.Field,
			fmt.Sprintf("%s must be %s, got %s", c.Label, describeAccept(c.Accept), mt.String()))
	}

	return &Payload{
		Filename:    filepath.Base(filename),
		ContentType: mt.String(),
		Data:        data,
	}, nil
}

// ReadFile loads a payload from disk.
func ReadFile(c Constraint, path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", c.Label, err)
	}
	defer f.Close()
	return ReadPayload(c, path, f)
}

// FromFileHeader loads a payload from an uploaded form file.
// A nil header means the input was left empty and yields a nil payload.
func FromFileHeader(c Constraint, fh *multipart.FileHeader) (*Payload, error) {
	if fh == nil || (fh.Filename == "" && fh.Size == 0) {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", c.Field, err)
	}
	defer f.Close()
	return ReadPayload(c, fh.Filename, f)
}

// FormFile loads the named file input from a parsed multipart form.
func FormFile(c Constraint, form *multipart.Form) (*Payload, error) {
	if form == nil {
		return nil, nil
	}
	files := form.File[c.Field]
	if len(files) == 0 {
		return nil, nil
	}
	return FromFileHeader(c, files[0])
}

func describeAccept(accept string) string {
	switch accept {
	case "image/*":
		return "an image"
	case "application/pdf":
		return "a PDF"
	default:
		return accept
	}
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

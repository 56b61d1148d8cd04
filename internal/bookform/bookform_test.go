// ABOUTME: Tests for book form validation, payload sniffing and multipart encoding.
// ABOUTME: Uses in-memory PNG/PDF signatures and parses encoded bodies back with mime/multipart.

package bookform

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/bookdesk/internal/catalog"
)

var (
	pngData = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	pdfData = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
)

func mustPayload(t *testing.T, c Constraint, name string, data []byte) *Payload {
	t.Helper()
	p, err := ReadPayload(c, name, bytes.NewReader(data))
	require.NoError(t, err)
	return p
}

func TestReadPayload_DetectsTypes(t *testing.T) {
	cover := mustPayload(t, CoverImage, "/tmp/cover.png", pngData)
	assert.Equal(t, "image/png", cover.ContentType)
	assert.Equal(t, "cover.png", cover.Filename)
	assert.Equal(t, len(pngData), cover.Size())

	file := mustPayload(t, BookFile, "book.pdf", pdfData)
	assert.Equal(t, "application/pdf", file.ContentType)
}

func TestReadPayload_RejectsWrongType(t *testing.T) {
	_, err := ReadPayload(CoverImage, "cover.png", bytes.NewReader(pdfData))
	require.Error(t, err)
	assert.True(t, catalog.IsValidation(err))
	assert.Contains(t, catalog.UserMessage(err), "Cover image must be an image")

	// The extension does not matter, only the content.
	_, err = ReadPayload(BookFile, "book.pdf", strings.NewReader("just some text"))
	require.Error(t, err)
	assert.Contains(t, catalog.UserMessage(err), "Book file must be a PDF")
}

func TestReadPayload_RejectsEmptyAndOversized(t *testing.T) {
	_, err := ReadPayload(BookFile, "empty.pdf", bytes.NewReader(nil))
	require.Error(t, err)
	assert.Equal(t, "Book file is empty", catalog.UserMessage(err))

	small := BookFile.WithMaxBytes(16)
	_, err = ReadPayload(small, "big.pdf", bytes.NewReader(pdfData))
	require.Error(t, err)
	assert.Equal(t, "Book file must be at most 16 bytes", catalog.UserMessage(err))

	assert.Equal(t, BookFile.MaxBytes, BookFile.WithMaxBytes(0).MaxBytes)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(path, pngData, 0o600))

	p, err := ReadFile(CoverImage, path)
	require.NoError(t, err)
	assert.Equal(t, "cover.png", p.Filename)

	_, err = ReadFile(CoverImage, filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.False(t, catalog.IsValidation(err))
}

func TestValidate_Create(t *testing.T) {
	err := Values{Title: "A", Genre: " "}.Validate(Create)
	require.Error(t, err)
	assert.True(t, catalog.IsValidation(err))

	msgs := FieldMessages(err)
	assert.Equal(t, "Title must be at least 2 characters", msgs[FieldTitle])
	assert.Equal(t, "Genre must be at least 2 characters", msgs[FieldGenre])
	assert.Equal(t, "Cover image is required", msgs[FieldCoverImage])
	assert.Equal(t, "Book file is required", msgs[FieldFile])
}

func TestValidate_EditFilesOptional(t *testing.T) {
	assert.NoError(t, Values{Title: "Dune", Genre: "SF"}.Validate(Edit))
}

func TestValidate_CountsRunes(t *testing.T) {
	assert.NoError(t, Values{Title: "猫猫", Genre: "ác"}.Validate(Edit))
	assert.Error(t, Values{Title: "猫", Genre: "ác"}.Validate(Edit))
}

func TestEncode_Create(t *testing.T) {
	v := Values{
		Title:      " Dune ",
		Genre:      "Sci-Fi",
		CoverImage: mustPayload(t, CoverImage, "cover.png", pngData),
		File:       mustPayload(t, BookFile, `dune "final".pdf`, pdfData),
	}

	contentType, body, err := v.Encode(Create)
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)

	assert.Equal(t, []string{"Dune"}, form.Value[FieldTitle])
	assert.Equal(t, []string{"Sci-Fi"}, form.Value[FieldGenre])

	require.Len(t, form.File[FieldCoverImage], 1)
	cover := form.File[FieldCoverImage][0]
	assert.Equal(t, "cover.png", cover.Filename)
	assert.Equal(t, "image/png", cover.Header.Get("Content-Type"))

	require.Len(t, form.File[FieldFile], 1)
	pdf := form.File[FieldFile][0]
	assert.Equal(t, `dune "final".pdf`, pdf.Filename)
	assert.Equal(t, "application/pdf", pdf.Header.Get("Content-Type"))

	f, err := pdf.Open()
	require.NoError(t, err)
	defer f.Close()
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, pdfData, got)
}

func TestEncode_EditSkipsMissingFiles(t *testing.T) {
	contentType, body, err := Values{Title: "Dune", Genre: "Sci-Fi"}.Encode(Edit)
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)

	assert.Empty(t, form.File)
	assert.Equal(t, []string{"Dune"}, form.Value[FieldTitle])
}

func TestEncode_InvalidNeverProducesBody(t *testing.T) {
	_, body, err := Values{Title: "x"}.Encode(Edit)
	require.Error(t, err)
	assert.Nil(t, body)
}

func TestFormFile(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(FieldCoverImage, "c.png")
	require.NoError(t, err)
	_, err = part.Write(pngData)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)

	p, err := FormFile(CoverImage, form)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "image/png", p.ContentType)

	p, err = FormFile(BookFile, form)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = FormFile(BookFile, nil)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestFieldMessages_NonValidation(t *testing.T) {
	msgs := FieldMessages(io.ErrUnexpectedEOF)
	assert.Equal(t, catalog.GenericMessage, msgs[""])
	assert.Empty(t, FieldMessages(nil))
}

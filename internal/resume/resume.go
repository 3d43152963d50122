// Package resume validates uploaded resumes and extracts candidate identity
// from them.
package resume

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// Upload limits.
const (
	MaxSize = 5 << 20
	PDFType = "application/pdf"
)

// Validation error codes.
const (
	CodeInvalidType = "invalid_type"
	CodeTooLarge    = "too_large"
)

// Document is an uploaded resume file.
type Document struct {
	Name        string
	ContentType string
	Size        int64
	Body        []byte
}

// ValidationError rejects an upload. The session state is left unchanged.
type ValidationError struct {
	Code   string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid resume (%s): %s", e.Code, e.Detail)
}

// Read builds a Document from r, reading at most one byte past MaxSize so
// oversized uploads are detected without buffering them entirely.
func Read(name, contentType string, r io.Reader) (Document, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("read resume: %w", err)
	}
	return Document{Name: name, ContentType: contentType, Size: int64(len(body)), Body: body}, nil
}

// Validate checks the file type first and the size second.
func Validate(doc Document) error {
	if ct := mediaType(doc); ct != PDFType {
		return &ValidationError{Code: CodeInvalidType, Detail: fmt.Sprintf("got %q, only PDF files are accepted", ct)}
	}
	if size(doc) > MaxSize {
		return &ValidationError{Code: CodeTooLarge, Detail: fmt.Sprintf("%d bytes exceeds the %d byte limit", size(doc), MaxSize)}
	}
	return nil
}

func mediaType(doc Document) string {
	ct := doc.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(doc.Body)
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mt
}

func size(doc Document) int64 {
	if doc.Size > 0 {
		return doc.Size
	}
	return int64(len(doc.Body))
}

// Extracted is the identity read from a resume. Empty fields were not found.
type Extracted struct {
	Name  string
	Email string
	Phone string
	Text  string
}

// Extractor reads candidate identity from a validated resume.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (Extracted, error)
}

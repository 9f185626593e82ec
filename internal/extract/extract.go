// Package extract pulls plain text out of uploaded files.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupported is returned for content the extractor cannot read.
var ErrUnsupported = errors.New("unsupported file format")

var pdfMagic = []byte("%PDF-")

// Extractor turns raw file bytes into text. Accepts is a cheap signature check
// run before any expensive work.
type Extractor interface {
	Accepts(data []byte) bool
	Extract(ctx context.Context, data []byte) (string, error)
}

// IsPDF reports whether data starts with the PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// PDF extracts the text layer of a PDF document.
type PDF struct{}

func (PDF) Accepts(data []byte) bool { return IsPDF(data) }

func (PDF) Extract(ctx context.Context, data []byte) (text string, err error) {
	if !IsPDF(data) {
		return "", ErrUnsupported
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	// the parser panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: malformed pdf: %v", ErrUnsupported, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

// Text treats the bytes as UTF-8 text. Used for local ingestion of .txt files.
type Text struct{}

func (Text) Accepts([]byte) bool { return true }

func (Text) Extract(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}

// Package pdfconv extracts text from PDF files page by page.
package pdfconv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText marks a document with zero extractable pages. Individual pages
// that yield no text are skipped silently; only a fully empty document fails.
var ErrNoText = errors.New("no extractable text in PDF")

// ExtractFile reads the PDF at path and returns the text of every page in
// reading order, joined by newlines.
func ExtractFile(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer file.Close()

	var pages []string
	for num := 1; num <= reader.NumPage(); num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single malformed page does not fail the document.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}

	if len(pages) == 0 {
		return "", ErrNoText
	}
	return strings.Join(pages, "\n"), nil
}

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hayashi-geek/urlpipe/core"
	"github.com/hayashi-geek/urlpipe/core/pdfconv"
)

// PDFStrategy downloads a PDF to a temporary file and extracts its text.
// The temporary file is removed before Load returns, success or failure.
type PDFStrategy struct {
	client *http.Client
}

// NewPDF creates a PDFStrategy. A nil client gets a default with a timeout.
func NewPDF(client *http.Client) *PDFStrategy {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &PDFStrategy{client: client}
}

// Name implements core.Strategy.
func (s *PDFStrategy) Name() string { return "pdf" }

// Load implements core.Strategy.
func (s *PDFStrategy) Load(ctx context.Context, url string) (string, error) {
	body, _, err := get(ctx, s.client, url)
	if err != nil {
		return "", err
	}

	path := filepath.Join(os.TempDir(), uuid.NewString()+".pdf")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("writing PDF to temp file: %w", err)
	}
	defer os.Remove(path)

	text, err := pdfconv.ExtractFile(path)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", core.ErrEmptyResult
	}
	return text, nil
}

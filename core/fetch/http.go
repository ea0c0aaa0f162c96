// Package fetch implements the HTTP-based content strategies: a direct
// client with browser-like headers, an anti-bot client with a browser TLS
// fingerprint, and a PDF downloader.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hayashi-geek/urlpipe/core"
	"github.com/hayashi-geek/urlpipe/core/htmlconv"
)

const defaultTimeout = 30 * time.Second

// browserHeaders make the request look like an ordinary desktop browser.
// The over18 cookie is required by some boards (PTT) to serve content at all.
var browserHeaders = map[string]string{
	"Accept-Language": "zh-TW,zh;q=0.9,ja;q=0.8,en-US;q=0.7,en;q=0.6",
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	"Cookie":          "over18=1",
}

// HTTPStrategy fetches a page with a plain HTTP client and converts the body.
type HTTPStrategy struct {
	client *http.Client
	conv   *htmlconv.Converter
}

// NewHTTP creates an HTTPStrategy. A nil client gets a default with a
// sensible timeout; redirects are followed.
func NewHTTP(client *http.Client, conv *htmlconv.Converter) *HTTPStrategy {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPStrategy{client: client, conv: conv}
}

// Name implements core.Strategy.
func (s *HTTPStrategy) Name() string { return "http" }

// Load implements core.Strategy.
func (s *HTTPStrategy) Load(ctx context.Context, url string) (string, error) {
	body, contentType, err := get(ctx, s.client, url)
	if err != nil {
		return "", err
	}

	text, err := s.conv.Convert(body, contentType, url)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", core.ErrEmptyResult
	}
	return text, nil
}

// get performs a browser-like GET and returns the body and content type.
func get(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response body: %w", err)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

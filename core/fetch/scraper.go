package fetch

import (
	"context"
	"fmt"

	"github.com/hayashi-geek/urlpipe/core"
	"github.com/hayashi-geek/urlpipe/core/htmlconv"
	"github.com/imroc/req/v3"
)

// ScraperStrategy fetches a page through a client that mimics a real
// browser's TLS and HTTP/2 fingerprint. It exists for sites that answer
// plain HTTP clients with a challenge page.
type ScraperStrategy struct {
	client *req.Client
	conv   *htmlconv.Converter
}

// NewScraper creates a ScraperStrategy with a Chrome-impersonating client.
func NewScraper(conv *htmlconv.Converter) *ScraperStrategy {
	client := req.C().
		ImpersonateChrome().
		SetTimeout(defaultTimeout)
	return &ScraperStrategy{client: client, conv: conv}
}

// Name implements core.Strategy.
func (s *ScraperStrategy) Name() string { return "scraper" }

// Load implements core.Strategy.
func (s *ScraperStrategy) Load(ctx context.Context, url string) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	if !resp.IsSuccessState() {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	text, err := s.conv.Convert(resp.Bytes(), resp.GetContentType(), url)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", core.ErrEmptyResult
	}
	return text, nil
}

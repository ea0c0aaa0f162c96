// Package urlx provides the domain normalizer and the URL classifier
// predicates used by the pipeline to pick and order strategies.
package urlx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// aliasTable maps a canonical target host to the source hosts it replaces.
// Tweet URLs are rewritten to the fxtwitter API mirror, which serves the
// tweet as plain JSON instead of a JavaScript-only page.
var aliasTable = map[string][]string{
	"api.fxtwitter.com": {
		"twitter.com",
		"x.com",
		"fxtwitter.com",
		"vxtwitter.com",
		"fixvx.com",
		"twittpr.com",
		"fixupx.com",
	},
}

// videoPrefixes are the scheme+host prefixes recognized as video platform URLs.
var videoPrefixes = []string{
	"https://www.youtube.com",
	"https://youtu.be",
	"https://m.youtube.com",
}

const reelPrefix = "https://www.instagram.com/reel/"

// ReplaceDomain rewrites known alias hosts to their canonical target.
// Only the host is replaced; scheme, path, query, and fragment pass through
// unchanged. Matching is exact: a subdomain of an alias host is not
// rewritten. Rewriting is idempotent.
func ReplaceDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	for target, sources := range aliasTable {
		for _, source := range sources {
			if parsed.Host == source {
				parsed.Host = target
				return parsed.String()
			}
		}
	}
	return rawURL
}

// IsVideoURL reports whether the URL points at a known video platform.
func IsVideoURL(rawURL string) bool {
	for _, prefix := range videoPrefixes {
		if strings.HasPrefix(rawURL, prefix) {
			return true
		}
	}
	return false
}

// IsReelURL reports whether the URL is an Instagram Reel. Only the exact
// /reel/ path prefix counts: the plural /reels/ feed, username-qualified
// paths, and the bare /reel segment are all rejected.
func IsReelURL(rawURL string) bool {
	return strings.HasPrefix(rawURL, reelPrefix)
}

// IsPDFURL probes the URL with a HEAD request and reports whether the
// declared content type is exactly application/pdf. Any other content type
// yields false. Probe errors propagate; the caller decides whether a failed
// probe aborts or falls through.
func IsPDFURL(ctx context.Context, client *http.Client, rawURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating HEAD request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("probing %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	return resp.Header.Get("Content-Type") == "application/pdf", nil
}

package urlx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayashi-geek/urlpipe/core/urlx"
)

func TestReplaceDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url      string
		expected string
	}{
		{
			"https://twitter.com/someuser/status/1234567890",
			"https://api.fxtwitter.com/someuser/status/1234567890",
		},
		{
			"https://x.com/someuser/status/1234567890",
			"https://api.fxtwitter.com/someuser/status/1234567890",
		},
		{
			"https://vxtwitter.com/someuser/status/1234567890",
			"https://api.fxtwitter.com/someuser/status/1234567890",
		},
		// Unknown hosts pass through untouched.
		{
			"https://example.com/someuser/status/1234567890",
			"https://example.com/someuser/status/1234567890",
		},
		// No scheme means no host component, so nothing matches.
		{
			"twitter.com/someuser/status/1234567890",
			"twitter.com/someuser/status/1234567890",
		},
		// Subdomains of an alias host are deliberately not rewritten.
		{
			"https://subdomain.twitter.com/someuser/status/1234567890",
			"https://subdomain.twitter.com/someuser/status/1234567890",
		},
		// Query and fragment survive the rewrite.
		{
			"https://x.com/someuser/status/123?s=20#photo",
			"https://api.fxtwitter.com/someuser/status/123?s=20#photo",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, urlx.ReplaceDomain(tt.url), "url: %s", tt.url)
	}
}

func TestReplaceDomainIdempotent(t *testing.T) {
	t.Parallel()

	once := urlx.ReplaceDomain("https://twitter.com/someuser/status/1234567890")
	assert.Equal(t, once, urlx.ReplaceDomain(once))
}

func TestIsReelURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url      string
		expected bool
	}{
		{"https://www.instagram.com/reel/xyz", true},
		{"https://www.instagram.com/reel/", true},
		// Plural path segment is the reels feed, not a reel.
		{"https://www.instagram.com/reels/xyz", false},
		// Username-qualified variant.
		{"https://www.instagram.com/someuser/reel/xyz", false},
		// Bare prefix without trailing slash.
		{"https://www.instagram.com/reel", false},
		// Extra trailing characters not separated by a slash.
		{"https://www.instagram.com/reelxyz", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, urlx.IsReelURL(tt.url), "url: %s", tt.url)
	}
}

func TestIsVideoURL(t *testing.T) {
	t.Parallel()

	assert.True(t, urlx.IsVideoURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.True(t, urlx.IsVideoURL("https://youtu.be/dQw4w9WgXcQ"))
	assert.True(t, urlx.IsVideoURL("https://m.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.False(t, urlx.IsVideoURL("https://vimeo.com/12345"))
	assert.False(t, urlx.IsVideoURL("https://example.com/watch?v=dQw4w9WgXcQ"))
}

func TestIsPDFURL(t *testing.T) {
	t.Parallel()

	t.Run("exact PDF content type", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			w.Header().Set("Content-Type", "application/pdf")
		}))
		defer srv.Close()

		isPDF, err := urlx.IsPDFURL(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		assert.True(t, isPDF)
	})

	t.Run("PDF-like but mismatched content type", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf; charset=utf-8")
		}))
		defer srv.Close()

		isPDF, err := urlx.IsPDFURL(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		assert.False(t, isPDF)
	})

	t.Run("HTML content type", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
		}))
		defer srv.Close()

		isPDF, err := urlx.IsPDFURL(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		assert.False(t, isPDF)
	})

	t.Run("network error propagates", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // refuse all connections

		_, err := urlx.IsPDFURL(context.Background(), &http.Client{}, srv.URL)
		assert.Error(t, err)
	})
}

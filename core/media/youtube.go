// Package media implements the video-platform strategies: caption transcript
// retrieval through the platform API, and audio download plus speech
// recognition as the expensive fallback.
package media

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// videoIDLength is the fixed length of a YouTube video identifier.
const videoIDLength = 11

// DefaultLanguages is the caption language preference order. The first
// available track in this order wins.
var DefaultLanguages = []string{"zh-TW", "zh-Hant", "zh", "zh-Hans", "ja", "en"}

var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
}

var allowedHosts = map[string]bool{
	"youtu.be":                 true,
	"m.youtube.com":            true,
	"youtube.com":              true,
	"www.youtube.com":          true,
	"www.youtube-nocookie.com": true,
	"vid.plus":                 true,
}

// Video ID parse failures, one sentinel per case so callers can tell a
// malformed URL from a URL that simply is not a video link.
var (
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	ErrUnsupportedHost   = errors.New("unsupported URL host")
	ErrNoVideoID         = errors.New("no video ID found in URL")
	ErrInvalidVideoID    = errors.New("invalid video ID")
)

// ParseVideoID extracts the 11-character video identifier from a YouTube
// URL. Watch-style URLs take the ID from the v query parameter; every other
// shape takes the last non-empty path segment.
func ParseVideoID(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoVideoID, rawURL)
	}

	if !allowedSchemes[parsed.Scheme] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, parsed.Scheme)
	}
	if !allowedHosts[parsed.Host] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedHost, parsed.Host)
	}

	var videoID string
	if strings.HasSuffix(parsed.Path, "/watch") {
		videoID = parsed.Query().Get("v")
		if videoID == "" {
			return "", fmt.Errorf("%w: %s", ErrNoVideoID, rawURL)
		}
	} else {
		segments := strings.Split(strings.TrimPrefix(parsed.Path, "/"), "/")
		videoID = segments[len(segments)-1]
	}

	if len(videoID) != videoIDLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidVideoID, videoID)
	}
	return videoID, nil
}

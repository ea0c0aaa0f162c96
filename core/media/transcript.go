package media

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hayashi-geek/urlpipe/core"
)

// defaultTranscriptBaseURL is the caption endpoint. The same endpoint lists
// available tracks (type=list) and serves a single track (lang=...).
const defaultTranscriptBaseURL = "https://video.google.com/timedtext"

// Transcript availability failures. Both are distinct from the ID parse
// errors in youtube.go: the URL was a valid video link, but no usable
// caption track exists.
var (
	// ErrNoTranscript means captions are disabled or none exist at all.
	ErrNoTranscript = errors.New("no transcript available for video")

	// ErrTranscriptNotFound means tracks exist but none matches the
	// requested languages.
	ErrTranscriptNotFound = errors.New("no transcript found for requested languages")
)

// Caption is a single timed caption fragment.
type Caption struct {
	Text  string
	Start float64
	Dur   float64
}

// Track describes one available caption track.
type Track struct {
	Lang string
	Name string
}

// trackListXML mirrors the type=list response.
type trackListXML struct {
	Tracks []struct {
		LangCode string `xml:"lang_code,attr"`
		Name     string `xml:"name,attr"`
	} `xml:"track"`
}

// transcriptXML mirrors a single track response.
type transcriptXML struct {
	Texts []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Body  string  `xml:",chardata"`
	} `xml:"text"`
}

// TranscriptClient talks to the caption API with an injected HTTP client.
type TranscriptClient struct {
	client  *http.Client
	baseURL string
}

// NewTranscriptClient creates a TranscriptClient. A nil client gets a
// default with a short timeout; baseURL is overridable for tests.
func NewTranscriptClient(client *http.Client, baseURL string) *TranscriptClient {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultTranscriptBaseURL
	}
	return &TranscriptClient{client: client, baseURL: baseURL}
}

// ListTranscripts returns the caption tracks available for a video.
// A video with captions disabled returns ErrNoTranscript.
func (c *TranscriptClient) ListTranscripts(ctx context.Context, videoID string) ([]Track, error) {
	query := url.Values{"type": {"list"}, "v": {videoID}}
	body, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	var list trackListXML
	if err := xml.Unmarshal(body, &list); err != nil || len(list.Tracks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTranscript, videoID)
	}

	tracks := make([]Track, 0, len(list.Tracks))
	for _, t := range list.Tracks {
		tracks = append(tracks, Track{Lang: t.LangCode, Name: t.Name})
	}
	return tracks, nil
}

// FindTranscript picks the first track whose language appears in langs,
// scanning langs in priority order.
func (c *TranscriptClient) FindTranscript(tracks []Track, langs []string) (Track, error) {
	for _, lang := range langs {
		for _, track := range tracks {
			if track.Lang == lang {
				return track, nil
			}
		}
	}
	return Track{}, fmt.Errorf("%w: %s", ErrTranscriptNotFound, strings.Join(langs, ","))
}

// FetchTranscript downloads the caption fragments of one track in
// chronological order.
func (c *TranscriptClient) FetchTranscript(ctx context.Context, videoID string, track Track) ([]Caption, error) {
	query := url.Values{"v": {videoID}, "lang": {track.Lang}}
	if track.Name != "" {
		query.Set("name", track.Name)
	}

	body, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	var transcript transcriptXML
	if err := xml.Unmarshal(body, &transcript); err != nil {
		return nil, fmt.Errorf("parsing transcript: %w", err)
	}

	captions := make([]Caption, 0, len(transcript.Texts))
	for _, t := range transcript.Texts {
		captions = append(captions, Caption{
			// The API double-escapes entities; the XML decoder only
			// unescapes one level.
			Text:  html.UnescapeString(t.Body),
			Start: t.Start,
			Dur:   t.Dur,
		})
	}
	return captions, nil
}

func (c *TranscriptClient) fetch(ctx context.Context, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript API returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// TranscriptStrategy resolves a video URL to its caption text.
type TranscriptStrategy struct {
	client    *TranscriptClient
	languages []string
}

// NewTranscript creates a TranscriptStrategy. Empty langs use
// DefaultLanguages.
func NewTranscript(client *TranscriptClient, langs []string) *TranscriptStrategy {
	if client == nil {
		client = NewTranscriptClient(nil, "")
	}
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	return &TranscriptStrategy{client: client, languages: langs}
}

// Name implements core.Strategy.
func (s *TranscriptStrategy) Name() string { return "transcript" }

// Load implements core.Strategy. Caption fragments are trimmed and joined
// with single spaces in chronological order.
func (s *TranscriptStrategy) Load(ctx context.Context, rawURL string) (string, error) {
	videoID, err := ParseVideoID(rawURL)
	if err != nil {
		return "", err
	}

	tracks, err := s.client.ListTranscripts(ctx, videoID)
	if err != nil {
		return "", err
	}

	track, err := s.client.FindTranscript(tracks, s.languages)
	if err != nil {
		return "", err
	}

	captions, err := s.client.FetchTranscript(ctx, videoID, track)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, caption := range captions {
		if text := strings.TrimSpace(caption.Text); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", core.ErrEmptyResult
	}
	return strings.Join(parts, " "), nil
}

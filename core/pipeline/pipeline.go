// Package pipeline implements the resolver that turns an arbitrary URL into
// normalized text. It rewrites alias domains, classifies the URL, and walks
// an ordered strategy list until one strategy produces usable text.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hayashi-geek/urlpipe/core"
	"github.com/hayashi-geek/urlpipe/core/urlx"
)

// defaultOverrides hard-routes known domains to the strategy that is known
// to work for them, ahead of the generic order. Keys are hostnames, values
// are ordered strategy names.
var defaultOverrides = map[string][]string{
	"www.ptt.cc":           {"http"},
	"news.ycombinator.com": {"http"},
	"medium.com":           {"scraper"},
	"www.bloomberg.com":    {"scraper"},
}

// genericOrder is the fallback strategy order for unclassified URLs:
// cheapest first, headless snapshot as universal last resort.
var genericOrder = []string{"http", "scraper", "snapshot"}

// Options wires the concrete strategies into a Pipeline. Every strategy
// field is required; Logger, ProbeClient, and Overrides have defaults.
type Options struct {
	Logger      *log.Logger
	ProbeClient *http.Client

	HTTP       core.Strategy
	Scraper    core.Strategy
	PDF        core.Strategy
	Transcript core.Strategy
	Audio      core.Strategy
	Snapshot   core.Strategy

	// Overrides replaces the built-in per-domain strategy routing.
	Overrides map[string][]string
}

// Pipeline resolves URLs. Each resolution is independent: strategies run
// sequentially within one call and share no state across calls.
type Pipeline struct {
	logger      *log.Logger
	probeClient *http.Client
	byName      map[string]core.Strategy
	overrides   map[string][]string

	transcript core.Strategy
	audio      core.Strategy
	http       core.Strategy
	pdf        core.Strategy
}

// New validates the wiring and resolves the override table into concrete
// strategies up front, so a typoed strategy name fails at startup rather
// than mid-resolution.
func New(opts Options) (*Pipeline, error) {
	byName := map[string]core.Strategy{}
	for _, s := range []core.Strategy{opts.HTTP, opts.Scraper, opts.PDF, opts.Transcript, opts.Audio, opts.Snapshot} {
		if s == nil {
			return nil, fmt.Errorf("pipeline: all strategies must be wired")
		}
		byName[s.Name()] = s
	}

	overrides := opts.Overrides
	if overrides == nil {
		overrides = defaultOverrides
	}
	for host, names := range overrides {
		for _, name := range names {
			if _, ok := byName[name]; !ok {
				return nil, fmt.Errorf("pipeline: override for %s names unknown strategy %q", host, name)
			}
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	probeClient := opts.ProbeClient
	if probeClient == nil {
		probeClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Pipeline{
		logger:      logger,
		probeClient: probeClient,
		byName:      byName,
		overrides:   overrides,
		transcript:  opts.Transcript,
		audio:       opts.Audio,
		http:        opts.HTTP,
		pdf:         opts.PDF,
	}, nil
}

// Resolve normalizes the URL, classifies it, and tries the matching
// strategies in order. The first non-blank result wins. When every
// applicable strategy fails, Resolve returns core.ErrExhausted; individual
// strategy failures are logged, never surfaced.
func (p *Pipeline) Resolve(ctx context.Context, rawURL string) (string, error) {
	rawURL = urlx.ReplaceDomain(rawURL)

	switch {
	case urlx.IsVideoURL(rawURL):
		return p.run(ctx, rawURL, p.videoList(rawURL))

	case urlx.IsReelURL(rawURL):
		if text, ok := p.resolveReel(ctx, rawURL); ok {
			return text, nil
		}
		return p.run(ctx, rawURL, p.genericList(rawURL))

	default:
		isPDF, err := urlx.IsPDFURL(ctx, p.probeClient, rawURL)
		if err != nil {
			// A failed probe means "not a PDF", not a dead pipeline.
			p.logger.Info("PDF probe failed, continuing with generic strategies",
				"url", rawURL, "error", err)
		}
		if isPDF {
			return p.run(ctx, rawURL, []core.Strategy{p.pdf})
		}
		return p.run(ctx, rawURL, p.genericList(rawURL))
	}
}

// run executes strategies in order and returns the first usable text.
func (p *Pipeline) run(ctx context.Context, url string, strategies []core.Strategy) (string, error) {
	var attempts []core.Attempt

	for _, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, ok := p.attempt(ctx, strategy, url, &attempts)
		if ok {
			p.logger.Info("resolved URL", "url", url, "strategy", strategy.Name())
			return text, nil
		}
	}

	p.logger.Warn("all strategies exhausted", "url", url, "attempts", len(attempts))
	return "", core.Exhausted(url)
}

// attempt runs one strategy, recording and logging its failure. A blank
// result counts as a failure.
func (p *Pipeline) attempt(ctx context.Context, strategy core.Strategy, url string, attempts *[]core.Attempt) (string, bool) {
	text, err := strategy.Load(ctx, url)
	if err == nil && strings.TrimSpace(text) == "" {
		err = core.ErrEmptyResult
	}
	if err != nil {
		*attempts = append(*attempts, core.Attempt{Strategy: strategy.Name(), Reason: err.Error()})
		p.logger.Info("strategy failed", "url", url, "strategy", strategy.Name(), "error", err)
		return "", false
	}
	return strings.TrimSpace(text), true
}

// resolveReel handles the one deliberate exception to first-success-wins:
// reels rarely carry captions, so the audio transcript and the page HTML are
// both fetched and their outputs concatenated. Either side may fail as long
// as the other yields text.
func (p *Pipeline) resolveReel(ctx context.Context, url string) (string, bool) {
	var attempts []core.Attempt
	var parts []string

	for _, strategy := range []core.Strategy{p.audio, p.http} {
		if text, ok := p.attempt(ctx, strategy, url, &attempts); ok {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", false
	}
	p.logger.Info("resolved reel URL", "url", url, "sources", len(parts))
	return strings.Join(parts, "\n\n"), true
}

// videoList orders the video strategies (transcript API first, audio
// transcription fallback) ahead of the generic chain.
func (p *Pipeline) videoList(rawURL string) []core.Strategy {
	return append([]core.Strategy{p.transcript, p.audio}, p.genericList(rawURL)...)
}

// genericList builds the ordered strategy list for a generic URL: the
// per-domain overrides first, then the default order, deduplicated.
func (p *Pipeline) genericList(rawURL string) []core.Strategy {
	var names []string
	if parsed, err := url.Parse(rawURL); err == nil {
		names = append(names, p.overrides[parsed.Host]...)
	}
	names = append(names, genericOrder...)

	seen := map[string]bool{}
	var strategies []core.Strategy
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		strategies = append(strategies, p.byName[name])
	}
	return strategies
}

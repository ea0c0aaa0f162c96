// Package core defines the contracts shared by every content-loading strategy.
// A strategy turns a URL into text; the pipeline tries strategies in order
// and returns the first usable result.
package core

import "context"

// Strategy is a single content-acquisition method (HTTP fetch, headless
// snapshot, transcript API, audio transcription). Strategies are independent
// and make no assumption about which strategy ran before them.
type Strategy interface {
	// Name identifies the strategy in logs and in the per-domain override table.
	Name() string

	// Load resolves the URL into text. A blank result must be reported as an
	// error (ErrEmptyResult) so the pipeline can move on to the next strategy.
	Load(ctx context.Context, url string) (string, error)
}

// Result is the outcome of a successful strategy invocation.
// Text is never whitespace-only.
type Result struct {
	Text     string
	Strategy string
}

// Attempt records one failed strategy invocation. Attempts are diagnostic
// only; they are logged by the pipeline and never surfaced to callers.
type Attempt struct {
	Strategy string
	Reason   string
}

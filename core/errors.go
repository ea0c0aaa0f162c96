package core

import (
	"errors"
	"fmt"
)

// ErrEmptyResult marks a strategy that completed but produced blank text.
// The pipeline treats it exactly like any other strategy failure.
var ErrEmptyResult = errors.New("strategy returned empty content")

// ErrExhausted is the only error the pipeline surfaces to callers. It is
// raised once every applicable strategy has failed or produced empty output.
// Per-strategy failures are logged, never propagated individually.
var ErrExhausted = errors.New("unable to load content from URL")

// Exhausted wraps ErrExhausted with the URL that could not be resolved.
// Callers match it with errors.Is(err, core.ErrExhausted).
func Exhausted(url string) error {
	return fmt.Errorf("%w: %s", ErrExhausted, url)
}

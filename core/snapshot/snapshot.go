// Package snapshot implements the headless-browser strategies of last
// resort: the page is fully rendered (JavaScript executed), the resulting
// DOM is saved to a temporary HTML file, and the file is converted to text.
package snapshot

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/hayashi-geek/urlpipe/core"
	"github.com/hayashi-geek/urlpipe/core/htmlconv"
)

// defaultWallTimeout is the hard upper bound on a snapshot attempt. It is
// deliberately larger than any internal page-load timeout so a hung renderer
// cannot stall the pipeline.
const defaultWallTimeout = 40 * time.Second

// Snapshotter renders a URL and saves the rendered DOM to an HTML file.
// Implementations own the file; callers must remove it when done.
type Snapshotter interface {
	Snapshot(ctx context.Context, url string) (string, error)
}

// Strategy renders a page through a Snapshotter and converts the saved file.
type Strategy struct {
	snapshotter Snapshotter
	conv        *htmlconv.Converter
	timeout     time.Duration
}

// New creates a snapshot Strategy. A zero timeout uses the default bound.
func New(snapshotter Snapshotter, conv *htmlconv.Converter, timeout time.Duration) *Strategy {
	if timeout <= 0 {
		timeout = defaultWallTimeout
	}
	return &Strategy{snapshotter: snapshotter, conv: conv, timeout: timeout}
}

// Name implements core.Strategy.
func (s *Strategy) Name() string { return "snapshot" }

// Load implements core.Strategy. The snapshot file is removed after
// conversion, success or failure.
func (s *Strategy) Load(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	file, err := s.snapshotter.Snapshot(ctx, url)
	if err != nil {
		return "", err
	}
	defer os.Remove(file)

	text, err := s.conv.ConvertFile(file)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", core.ErrEmptyResult
	}
	return text, nil
}

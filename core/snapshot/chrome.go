package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
)

// defaultLoadTimeout bounds page navigation inside Chrome. It must stay
// below the strategy's wall-clock timeout so navigation failures surface as
// their own error rather than a context cancellation.
const defaultLoadTimeout = 20 * time.Second

// defaultSettle is how long the page is given after body-ready for late
// JavaScript rendering before the DOM is captured.
const defaultSettle = 2 * time.Second

// Chrome renders pages with an in-process headless Chrome via chromedp.
// It is the fallback when no single-file executable is installed.
type Chrome struct {
	// LoadTimeout bounds navigation and capture. Zero means the default.
	LoadTimeout time.Duration

	// Settle is the post-load wait before capturing. Zero means the default.
	Settle time.Duration
}

// Snapshot implements Snapshotter.
func (c *Chrome) Snapshot(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	loadTimeout := c.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = defaultLoadTimeout
	}
	settle := c.Settle
	if settle <= 0 {
		settle = defaultSettle
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(browserCtx, loadTimeout)
	defer timeoutCancel()

	var html string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", url, err)
	}

	output := filepath.Join(os.TempDir(), uuid.NewString()+".html")
	if err := os.WriteFile(output, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return output, nil
}

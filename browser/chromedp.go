package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromedpRenderer drives a dedicated headless Chrome per render, so no
// state leaks between pages.
type ChromedpRenderer struct {
	opts Options
}

// NewChromedpRenderer returns a renderer; Chrome is launched lazily.
func NewChromedpRenderer(opts Options) *ChromedpRenderer {
	opts.applyDefaults()

	return &ChromedpRenderer{opts: opts}
}

// Render implements extract.Renderer.
func (r *ChromedpRenderer) Render(ctx context.Context, url string, settle time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.NavigationTimeout+settle)
	defer cancel()

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	)

	if r.opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(r.opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOpts...)
	defer allocCancel()

	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	var text string

	err := chromedp.Run(chromeCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Text("body", &text, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp run %s: %w", url, err)
	}

	return text, nil
}

// Close is a no-op; every render owns and releases its own browser.
func (r *ChromedpRenderer) Close() error {
	return nil
}

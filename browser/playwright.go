package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightRenderer shares one Chromium process and opens a fresh browser
// context per render.
type PlaywrightRenderer struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
}

// NewPlaywrightRenderer launches Chromium through playwright.
func NewPlaywrightRenderer(opts Options) (*PlaywrightRenderer, error) {
	opts.applyDefaults()

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()

		return nil, fmt.Errorf("launching chromium: %w", err)
	}

	return &PlaywrightRenderer{pw: pw, browser: b, opts: opts}, nil
}

// Render implements extract.Renderer.
func (r *PlaywrightRenderer) Render(ctx context.Context, url string, settle time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if r.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(r.opts.UserAgent)
	}

	bctx, err := r.browser.NewContext(ctxOpts)
	if err != nil {
		return "", fmt.Errorf("opening browser context: %w", err)
	}
	defer bctx.Close()

	// Closing the context aborts any pending page call.
	stop := context.AfterFunc(ctx, func() { _ = bctx.Close() })
	defer stop()

	page, err := bctx.NewPage()
	if err != nil {
		return "", fmt.Errorf("opening page: %w", err)
	}

	_, err = page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(r.opts.NavigationTimeout.Milliseconds())),
	})
	if err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}

	page.WaitForTimeout(float64(settle.Milliseconds()))

	if _, err := page.Evaluate(scrollToBottomJS); err != nil {
		return "", fmt.Errorf("scrolling %s: %w", url, err)
	}

	text, err := page.Locator("body").InnerText()
	if err != nil {
		return "", fmt.Errorf("reading text of %s: %w", url, err)
	}

	return text, nil
}

// Close shuts down the browser and the playwright driver.
func (r *PlaywrightRenderer) Close() error {
	if err := r.browser.Close(); err != nil {
		_ = r.pw.Stop()

		return err
	}

	return r.pw.Stop()
}

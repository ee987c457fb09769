package extract

import (
	"context"
	"errors"
	"time"
)

// ErrRendererDisabled is returned when no browser backend is configured.
var ErrRendererDisabled = errors.New("renderer disabled")

// DefaultSettle is how long a rendered page is given for deferred scripts.
const DefaultSettle = 2 * time.Second

// Renderer loads url in an isolated browser context, lets it settle, scrolls
// to the bottom once and returns the realized text of the page. It must
// release the context before returning, on every path.
type Renderer interface {
	Render(ctx context.Context, url string, settle time.Duration) (string, error)
}

// RenderedExtractor mines the DOM after client-side scripts have run.
type RenderedExtractor struct {
	renderer Renderer
	settle   time.Duration
}

// NewRenderedExtractor returns an extractor backed by r. A nil r is allowed
// and makes every call a no-op.
func NewRenderedExtractor(r Renderer, settle time.Duration) *RenderedExtractor {
	if settle <= 0 {
		settle = DefaultSettle
	}

	return &RenderedExtractor{renderer: r, settle: settle}
}

// Extract renders url and returns the addresses found in its text.
func (e *RenderedExtractor) Extract(ctx context.Context, url string) (AddressSet, error) {
	set := NewAddressSet()

	if e.renderer == nil {
		return set, ErrRendererDisabled
	}

	text, err := e.renderer.Render(ctx, url, e.settle)
	if err != nil {
		return set, err
	}

	set.AddText(text, SourceRendered)

	return set, nil
}

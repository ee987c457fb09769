// Package browser provides headless-browser implementations of
// extract.Renderer.
package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosom/contact-extractor/extract"
)

const (
	BackendPlaywright = "playwright"
	BackendChromedp   = "chromedp"
	BackendNone       = "none"

	defaultNavigationTimeout = 30 * time.Second

	scrollToBottomJS = `() => { window.scrollTo(0, document.body ? document.body.scrollHeight : 0); return true; }`
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown render backend")

// Options configures a browser backend.
type Options struct {
	Headless          bool
	NavigationTimeout time.Duration
	UserAgent         string
}

func (o *Options) applyDefaults() {
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = defaultNavigationTimeout
	}
}

// Backend is a Renderer holding browser resources until Close.
type Backend interface {
	extract.Renderer
	Close() error
}

// Open starts the named backend. BackendNone yields a nil Backend and no
// error, which disables rendered extraction.
func Open(name string, opts Options) (Backend, error) {
	opts.applyDefaults()

	switch strings.ToLower(strings.TrimSpace(name)) {
	case BackendNone, "":
		return nil, nil
	case BackendPlaywright:
		r, err := NewPlaywrightRenderer(opts)
		if err != nil {
			return nil, err
		}

		return r, nil
	case BackendChromedp:
		return NewChromedpRenderer(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

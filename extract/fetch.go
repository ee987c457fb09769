package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxResponseBytes   = 5 * 1024 * 1024 // 5MB
	maxRedirects       = 3

	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// ErrUnexpectedStatus is wrapped by fetch errors caused by a non-2xx reply.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Fetcher retrieves the raw body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcherOptions tunes HTTPFetcher. Zero values select the defaults.
type HTTPFetcherOptions struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	// RateLimit caps requests per second across all hosts; 0 disables it.
	RateLimit float64
	Burst     int
}

// HTTPFetcher is the plain HTTP(S) fetch collaborator.
type HTTPFetcher struct {
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

// NewHTTPFetcher builds a fetcher with its own transport.
func NewHTTPFetcher(opts HTTPFetcherOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultHTTPTimeout
	}

	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}

	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	client := &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}

			return nil
		},
		Transport: transport,
	}

	f := &HTTPFetcher{
		client:     client,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
	}

	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}

		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return f
}

// Fetch performs a GET with linear backoff between attempts. Non-2xx
// replies are errors; 4xx replies are not retried.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * f.backoff):
			}
		}

		body, status, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = err

		if status >= 400 && status < 500 {
			break
		}
	}

	return nil, lastErr
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, int, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request for %s: %w", url, err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("%w: HTTP %d for %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading body of %s: %w", url, err)
	}

	return body, resp.StatusCode, nil
}

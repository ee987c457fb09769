package web

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gosom/contact-extractor/cache"
	"github.com/gosom/contact-extractor/extract"
)

// ErrNoValidURLs is returned when no seed survives normalization.
var ErrNoValidURLs = errors.New("no valid URLs provided")

// Runner extracts addresses from a batch of normalized seeds.
type Runner interface {
	Run(ctx context.Context, urls []string) extract.AddressSet
}

// Service is the request-handling path shared by the HTTP server and the
// CLI.
type Service struct {
	runner     Runner
	classifier *extract.Classifier
	cache      *cache.Store[ExtractResponse]
}

// NewService wires a Service. The cache is owned by the caller and may be
// shared between services.
func NewService(runner Runner, classifier *extract.Classifier, c *cache.Store[ExtractResponse]) *Service {
	if classifier == nil {
		classifier = extract.NewClassifier(nil)
	}

	return &Service{
		runner:     runner,
		classifier: classifier,
		cache:      c,
	}
}

// NewResponseCache returns a cache suitable for NewService.
func NewResponseCache() *cache.Store[ExtractResponse] {
	return cache.New(cloneResponse)
}

// Extract runs (or replays) an extraction. Input errors are returned
// together with an error-shaped response.
func (s *Service) Extract(ctx context.Context, req ExtractRequest) (ExtractResponse, error) {
	log := zerolog.Ctx(ctx)

	seeds := extract.NormalizeSeeds(req.URLs)
	if len(seeds) == 0 {
		return ExtractResponse{
			Status:  StatusError,
			Emails:  []extract.ContactRecord{},
			Message: "Please provide at least one valid URL",
		}, ErrNoValidURLs
	}

	mode := ParseFilter(string(req.Filter))
	key := cache.Key(seeds, string(mode))

	if s.cache != nil {
		if resp, ok := s.cache.Get(key); ok {
			resp.Cached = true

			log.Info().Int("seeds", len(seeds)).Str("filter", string(mode)).Msg("serving cached extraction")

			return resp, nil
		}
	}

	log.Info().Int("seeds", len(seeds)).Str("filter", string(mode)).Msg("extraction started")

	start := time.Now()
	set := s.runner.Run(ctx, seeds)
	records, stats := s.classifier.Classify(set, len(seeds), time.Since(start))

	filtered := make([]extract.ContactRecord, 0, len(records))
	for _, r := range records {
		if mode.keep(r) {
			filtered = append(filtered, r)
		}
	}

	resp := ExtractResponse{
		Status:  StatusSuccess,
		Count:   len(filtered),
		Emails:  filtered,
		Stats:   &stats,
		Message: fmt.Sprintf("Found %d email(s) across %d URL(s)", len(filtered), len(seeds)),
	}

	log.Info().
		Int("found", stats.TotalFound).
		Int("valid", stats.ValidCount).
		Int("invalid", stats.InvalidCount).
		Int64("elapsed_ms", stats.ElapsedMS).
		Msg("extraction completed")

	// An interrupted run is partial; do not memoize it.
	if s.cache != nil && ctx.Err() == nil {
		s.cache.Put(key, resp)
	}

	return resp, nil
}

// ClearCache drops every memoized response.
func (s *Service) ClearCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	n := s.cache.Len()
	s.cache.Clear()

	zerolog.Ctx(ctx).Info().Int("entries", n).Msg("cache cleared")
}

// Export serializes emails in the requested format.
func (s *Service) Export(_ context.Context, req ExportRequest) (Export, error) {
	return BuildExport(req.Emails, req.Format)
}

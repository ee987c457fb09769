package extract

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of seeds extracted in parallel.
const DefaultWorkers = 4

// FanOut runs an Extractor over many seeds with bounded parallelism.
type FanOut struct {
	extractor Extractor
	workers   int
}

// NewFanOut returns a FanOut running at most workers extractions at once.
func NewFanOut(e Extractor, workers int) *FanOut {
	if workers < 1 {
		workers = DefaultWorkers
	}

	return &FanOut{extractor: e, workers: workers}
}

// Run extracts every url and merges the results as they complete.
func (f *FanOut) Run(ctx context.Context, urls []string) AddressSet {
	results := make(chan AddressSet)

	var g errgroup.Group
	g.SetLimit(f.workers)

	go func() {
		for _, u := range urls {
			g.Go(func() error {
				results <- f.extractor.Extract(ctx, u)

				return nil
			})
		}

		_ = g.Wait()
		close(results)
	}()

	merged := NewAddressSet()
	for set := range results {
		merged.Merge(set)
	}

	return merged
}

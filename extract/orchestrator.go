package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// roleMarkers flag URLs whose pages usually build their directory listings
// client-side, so they are rendered up front.
var roleMarkers = []string{"faculty", "staff", "people"}

// PageExtractor is one extraction strategy applied to a single page.
type PageExtractor interface {
	Extract(ctx context.Context, url string) (AddressSet, error)
}

// LinkDiscoverer expands a page into same-host links.
type LinkDiscoverer interface {
	Discover(ctx context.Context, baseURL string, limit int) ([]string, error)
}

// documentScanner is a PageExtractor that can return the page it parsed.
type documentScanner interface {
	Scan(ctx context.Context, url string) (AddressSet, *goquery.Document, error)
}

// documentLinker expands an already parsed page into same-host links.
type documentLinker interface {
	Links(doc *goquery.Document, baseURL string, limit int) ([]string, error)
}

// Extractor is the unit of work run once per seed.
type Extractor interface {
	Extract(ctx context.Context, url string) AddressSet
}

// Orchestrator combines the static and rendered strategies with one hop of
// same-host link expansion.
type Orchestrator struct {
	static    PageExtractor
	rendered  PageExtractor
	crawler   LinkDiscoverer
	linkLimit int
}

// NewOrchestrator wires the strategies together. linkLimit <= 0 selects
// DefaultLinkLimit.
func NewOrchestrator(static, rendered PageExtractor, crawler LinkDiscoverer, linkLimit int) *Orchestrator {
	if linkLimit <= 0 {
		linkLimit = DefaultLinkLimit
	}

	return &Orchestrator{
		static:    static,
		rendered:  rendered,
		crawler:   crawler,
		linkLimit: linkLimit,
	}
}

// Extract runs the extraction policy for url. It never fails; failed
// sub-extractions simply contribute nothing.
func (o *Orchestrator) Extract(ctx context.Context, url string) AddressSet {
	log := zerolog.Ctx(ctx).With().Str("seed", url).Logger()
	all := NewAddressSet()

	if hasRoleMarker(url) {
		all.Merge(o.run(ctx, &log, o.rendered, "rendered", url))
	}

	seedFound, links := o.seedPage(ctx, &log, url)
	all.Merge(seedFound)

	for _, link := range links {
		if ctx.Err() != nil {
			break
		}

		found := o.run(ctx, &log, o.static, "static", link)
		if len(found) == 0 {
			found = o.run(ctx, &log, o.rendered, "rendered", link)
		}

		all.Merge(found)
	}

	log.Debug().Int("links", len(links)).Int("addresses", len(all)).Msg("seed extracted")

	return all
}

// seedPage runs the static pass on the seed and expands its links. When the
// collaborators allow it the page is fetched once and shared by both.
func (o *Orchestrator) seedPage(ctx context.Context, log *zerolog.Logger, url string) (AddressSet, []string) {
	scanner, canScan := o.static.(documentScanner)
	linker, canLink := o.crawler.(documentLinker)

	if !canScan || !canLink {
		found := o.run(ctx, log, o.static, "static", url)

		links, err := o.crawler.Discover(ctx, url, o.linkLimit)
		if err != nil {
			log.Debug().Err(err).Msg("link discovery failed")
		}

		return found, links
	}

	found, doc, err := scanner.Scan(ctx, url)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Str("strategy", "static").Msg("extraction failed")
	}

	if found == nil {
		found = NewAddressSet()
	}

	if doc == nil {
		return found, nil
	}

	links, err := linker.Links(doc, url, o.linkLimit)
	if err != nil {
		log.Debug().Err(err).Msg("link discovery failed")
	}

	return found, links
}

func (o *Orchestrator) run(ctx context.Context, log *zerolog.Logger, e PageExtractor, strategy, url string) AddressSet {
	set, err := e.Extract(ctx, url)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Str("strategy", strategy).Msg("extraction failed")
	}

	if set == nil {
		return NewAddressSet()
	}

	return set
}

func hasRoleMarker(url string) bool {
	lower := strings.ToLower(url)
	for _, m := range roleMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}

	return false
}

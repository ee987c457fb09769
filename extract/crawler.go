package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultLinkLimit bounds how many sublinks are expanded per seed.
const DefaultLinkLimit = 15

// skipExtensions are links that never carry contact details worth parsing.
var skipExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".css": true, ".js": true,
	".zip": true, ".tar": true, ".gz": true, ".doc": true, ".docx": true,
	".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true,
}

// LinkCrawler expands a page into the same-host links it points to.
type LinkCrawler struct {
	fetcher Fetcher
}

// NewLinkCrawler returns a crawler using f for network access.
func NewLinkCrawler(f Fetcher) *LinkCrawler {
	return &LinkCrawler{fetcher: f}
}

// Discover fetches baseURL once and returns up to limit distinct absolute
// links on the same host, in document order.
func (c *LinkCrawler) Discover(ctx context.Context, baseURL string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultLinkLimit
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base %s: %w", baseURL, err)
	}

	body, err := c.fetcher.Fetch(ctx, baseURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", baseURL, err)
	}

	return sameHostLinks(doc, base, limit), nil
}

// Links is Discover over a page that was already fetched and parsed.
func (c *LinkCrawler) Links(doc *goquery.Document, baseURL string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultLinkLimit
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base %s: %w", baseURL, err)
	}

	return sameHostLinks(doc, base, limit), nil
}

func sameHostLinks(doc *goquery.Document, base *url.URL, limit int) []string {
	base = stripFragment(base)
	base.Host = strings.ToLower(base.Host)

	self := base.String()
	seen := map[string]bool{self: true}

	if base.Path == "" {
		seen[self+"/"] = true
	}

	var links []string

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return true
		}

		parsed, err := url.Parse(href)
		if err != nil {
			return true
		}

		resolved := base.ResolveReference(parsed)

		// Drops javascript:, mailto:, tel: and friends.
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return true
		}

		resolved.Host = strings.ToLower(resolved.Host)
		if resolved.Host != base.Host {
			return true
		}

		if skipExtensions[strings.ToLower(path.Ext(resolved.Path))] {
			return true
		}

		full := stripFragment(resolved).String()
		if seen[full] {
			return true
		}

		seen[full] = true
		links = append(links, full)

		return len(links) < limit
	})

	return links
}

func stripFragment(u *url.URL) *url.URL {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""

	return &c
}

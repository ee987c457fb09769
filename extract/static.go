package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	mailtoSelector = "a[href^='mailto:'], a[href^='Mailto:'], a[href^='MAILTO:']"
	cfSpanSelector = ".__cf_email__[data-cfemail]"
	cfLinkSelector = "a[href*='/cdn-cgi/l/email-protection#']"
)

// StaticExtractor mines the delivered HTML of a page without running scripts.
type StaticExtractor struct {
	fetcher Fetcher
}

// NewStaticExtractor returns a StaticExtractor using f for network access.
func NewStaticExtractor(f Fetcher) *StaticExtractor {
	return &StaticExtractor{fetcher: f}
}

// Extract fetches url and returns every address found in it. On failure the
// returned set is empty, never nil, and the error says why.
func (e *StaticExtractor) Extract(ctx context.Context, url string) (AddressSet, error) {
	set, _, err := e.Scan(ctx, url)

	return set, err
}

// Scan is Extract that also hands back the parsed page, so it can be mined
// for links without fetching it again. The document is nil on error.
func (e *StaticExtractor) Scan(ctx context.Context, url string) (AddressSet, *goquery.Document, error) {
	set := NewAddressSet()

	body, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return set, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return set, nil, fmt.Errorf("parsing %s: %w", url, err)
	}

	extractFromDoc(doc, set)

	return set, doc, nil
}

// extractFromDoc applies the text, mailto and cfemail strategies to doc.
func extractFromDoc(doc *goquery.Document, set AddressSet) {
	doc.Find(mailtoSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}

		if addr := addressFromMailto(href); addr != "" {
			set.Add(addr, SourceStatic)
		}
	})

	doc.Find(cfSpanSelector).Each(func(_ int, s *goquery.Selection) {
		addDecoded(set, s.AttrOr("data-cfemail", ""))
	})

	doc.Find(cfLinkSelector).Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if idx := strings.LastIndex(href, "#"); idx >= 0 {
			addDecoded(set, href[idx+1:])
		}
	})

	// Visible text only; scripts tend to carry tracking junk.
	docCopy := doc.Clone()
	docCopy.Find("script, style, noscript").Remove()
	set.AddText(docCopy.Text(), SourceStatic)
}

// addressFromMailto strips the scheme and any query and returns the rest
// only when the whole remainder is an address.
func addressFromMailto(href string) string {
	value := strings.TrimSpace(href)
	if len(value) < len("mailto:") || !strings.EqualFold(value[:len("mailto:")], "mailto:") {
		return ""
	}

	value = value[len("mailto:"):]

	if idx := strings.Index(value, "?"); idx >= 0 {
		value = value[:idx]
	}

	value = strings.TrimSpace(value)

	if m := addressRe.FindString(value); m == "" || m != value {
		return ""
	}

	return value
}

func addDecoded(set AddressSet, payload string) {
	plain, err := DecodeCFEmail(payload)
	if err != nil {
		return
	}

	for _, addr := range FindAddresses(plain) {
		set.Add(addr, SourceStatic)
	}
}

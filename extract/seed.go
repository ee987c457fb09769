package extract

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// NormalizeSeed turns user input into an absolute http(s) URL. It reports
// false for input that cannot name a reachable site, such as a bare word.
func NormalizeSeed(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}

	host := u.Hostname()
	if host == "" {
		return "", false
	}

	if net.ParseIP(host) == nil {
		if _, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host)); err != nil {
			return "", false
		}
	}

	// Hosts are case-insensitive; one spelling keeps cache keys and host
	// comparisons stable.
	u.Host = strings.ToLower(u.Host)

	return u.String(), true
}

// NormalizeSeeds normalizes every entry of raw, dropping invalid ones and
// duplicates while keeping the first-seen order.
func NormalizeSeeds(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))

	for _, r := range raw {
		u, ok := NormalizeSeed(r)
		if !ok || seen[u] {
			continue
		}

		seen[u] = true
		out = append(out, u)
	}

	return out
}

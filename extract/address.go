package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Source records which strategy first surfaced an address.
type Source string

const (
	SourceStatic   Source = "static"
	SourceRendered Source = "rendered"
)

// rank orders sources when the same address is found more than once.
// Lower wins, so merges are independent of arrival order.
func (s Source) rank() int {
	switch s {
	case SourceStatic:
		return 0
	case SourceRendered:
		return 1
	default:
		return 2
	}
}

var addressRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// FindAddresses returns every address-like token in text, in text order.
func FindAddresses(text string) []string {
	return addressRe.FindAllString(text, -1)
}

// obfuscation markers; the spaced variants come first so they win over the
// bare ones at the same position.
var deobfuscator = strings.NewReplacer(
	" [at] ", "@",
	" (at) ", "@",
	"[at]", "@",
	"(at)", "@",
	" [dot] ", ".",
	" (dot) ", ".",
	"[dot]", ".",
	"(dot)", ".",
)

// Normalize rewrites the known textual obfuscations into their canonical
// characters. Anything not on the list passes through untouched.
func Normalize(text string) string {
	return deobfuscator.Replace(text)
}

// Found is one member of an AddressSet: the address as it appeared in the
// page and the source that surfaced it.
type Found struct {
	Address string
	Source  Source
}

// AddressSet holds distinct addresses keyed by their lowercased form.
// A set is owned by whoever produced it until it is handed to Merge.
type AddressSet map[string]Found

// NewAddressSet returns an empty set.
func NewAddressSet() AddressSet {
	return make(AddressSet)
}

// Add inserts addr tagged with src. Addresses differing only in case are
// one member; the better-ranked source wins, then the lexically smallest
// spelling, so the outcome does not depend on insertion order.
func (s AddressSet) Add(addr string, src Source) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}

	key := strings.ToLower(addr)

	if cur, ok := s[key]; ok {
		cr, nr := cur.Source.rank(), src.rank()
		if cr < nr || (cr == nr && cur.Address <= addr) {
			return
		}
	}

	s[key] = Found{Address: addr, Source: src}
}

// AddText normalizes text and adds every address it contains.
func (s AddressSet) AddText(text string, src Source) {
	for _, addr := range FindAddresses(Normalize(text)) {
		s.Add(addr, src)
	}
}

// Merge unions other into s and returns s.
func (s AddressSet) Merge(other AddressSet) AddressSet {
	for _, f := range other {
		s.Add(f.Address, f.Source)
	}

	return s
}

// Source reports which strategy found addr, compared case-insensitively,
// or "" when addr is not a member.
func (s AddressSet) Source(addr string) Source {
	return s[strings.ToLower(strings.TrimSpace(addr))].Source
}

// Members returns the members sorted by their spelling.
func (s AddressSet) Members() []Found {
	out := make([]Found, 0, len(s))
	for _, f := range s {
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })

	return out
}

// Addresses returns the member spellings sorted lexicographically.
func (s AddressSet) Addresses() []string {
	members := s.Members()

	out := make([]string, len(members))
	for i, f := range members {
		out[i] = f.Address
	}

	return out
}

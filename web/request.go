package web

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/gosom/contact-extractor/extract"
)

// FilterMode selects which records an extraction response carries.
type FilterMode string

const (
	FilterValid   FilterMode = "valid"
	FilterInvalid FilterMode = "invalid"
	FilterAll     FilterMode = "all"
)

// ParseFilter maps a request value onto a FilterMode. An absent value means
// valid; any unrecognized value means all.
func ParseFilter(s string) FilterMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "valid":
		return FilterValid
	case "invalid":
		return FilterInvalid
	default:
		return FilterAll
	}
}

func (f FilterMode) keep(r extract.ContactRecord) bool {
	switch f {
	case FilterValid:
		return r.Status == extract.Valid
	case FilterInvalid:
		return r.Status == extract.Invalid
	default:
		return true
	}
}

// FilterParam is the raw filter value of a request. Any JSON value is
// accepted: strings are kept as sent, null is treated as absent, and
// anything else selects FilterAll.
type FilterParam string

func (p *FilterParam) UnmarshalJSON(b []byte) error {
	var s string

	switch {
	case bytes.Equal(bytes.TrimSpace(b), []byte("null")):
		return nil
	case json.Unmarshal(b, &s) == nil:
		*p = FilterParam(s)
	default:
		*p = FilterParam(FilterAll)
	}

	return nil
}

// ExtractRequest is the body of an extraction call.
type ExtractRequest struct {
	URLs   []string    `json:"urls"`
	Filter FilterParam `json:"filter"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ExtractResponse is the result of an extraction call.
type ExtractResponse struct {
	Status  string                  `json:"status"`
	Count   int                     `json:"count"`
	Emails  []extract.ContactRecord `json:"emails"`
	Stats   *extract.Stats          `json:"stats,omitempty"`
	Message string                  `json:"message"`
	Cached  bool                    `json:"cached,omitempty"`
}

// cloneResponse deep-copies r so cached values never alias caller memory.
func cloneResponse(r ExtractResponse) ExtractResponse {
	if r.Emails != nil {
		emails := make([]extract.ContactRecord, len(r.Emails))
		for i, rec := range r.Emails {
			rec.Actions = slices.Clone(rec.Actions)
			emails[i] = rec
		}

		r.Emails = emails
	}

	if r.Stats != nil {
		s := *r.Stats
		r.Stats = &s
	}

	return r
}

// ExportRequest is the body of an export call.
type ExportRequest struct {
	Emails []string `json:"emails"`
	Format string   `json:"format"`
}

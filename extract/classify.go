package extract

import (
	"strings"
	"time"

	"github.com/mcnijman/go-emailaddress"
)

// Validity is the outcome of the syntactic address check.
type Validity string

const (
	Valid   Validity = "Valid"
	Invalid Validity = "Invalid"
)

// ContactRecord is the structured form of one discovered address.
type ContactRecord struct {
	Address string   `json:"email"`
	Status  Validity `json:"status"`
	Domain  string   `json:"domain"`
	Source  Source   `json:"source"`
	Actions []string `json:"actions"`
}

// Stats aggregates one extraction request.
type Stats struct {
	SeedsProcessed int   `json:"seeds_processed"`
	TotalFound     int   `json:"total_found"`
	ValidCount     int   `json:"valid_count"`
	InvalidCount   int   `json:"invalid_count"`
	ElapsedMS      int64 `json:"elapsed_ms"`
}

// Classifier turns an AddressSet into sorted ContactRecords.
type Classifier struct {
	validate func(string) bool
}

// NewClassifier returns a classifier using validate for the syntax check.
// A nil validate selects IsValidAddress.
func NewClassifier(validate func(string) bool) *Classifier {
	if validate == nil {
		validate = IsValidAddress
	}

	return &Classifier{validate: validate}
}

// IsValidAddress reports whether s parses as an email address.
func IsValidAddress(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	_, err := emailaddress.Parse(s)

	return err == nil
}

// Classify validates every address in set and builds the records, sorted
// by address, together with the request statistics.
func (c *Classifier) Classify(set AddressSet, seeds int, elapsed time.Duration) ([]ContactRecord, Stats) {
	stats := Stats{
		SeedsProcessed: seeds,
		ElapsedMS:      elapsed.Milliseconds(),
	}

	records := make([]ContactRecord, 0, len(set))

	for _, f := range set.Members() {
		addr := f.Address
		rec := ContactRecord{
			Address: addr,
			Source:  f.Source,
		}

		atIdx := strings.LastIndex(addr, "@")
		if atIdx >= 0 {
			rec.Domain = addr[atIdx+1:]
		}

		if atIdx >= 0 && c.validate(addr) {
			rec.Status = Valid
			rec.Actions = []string{"copy", "mailto"}
			stats.ValidCount++
		} else {
			rec.Status = Invalid
			rec.Actions = []string{"copy"}
			stats.InvalidCount++
		}

		records = append(records, rec)
	}

	stats.TotalFound = len(records)

	return records, stats
}

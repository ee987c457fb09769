package web

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned for export formats other than txt, csv, json.
var ErrUnknownFormat = errors.New("unknown export format")

// Export is a serialized address list ready to be downloaded.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// BuildExport serializes emails in the requested format.
func BuildExport(emails []string, format string) (Export, error) {
	format = strings.ToLower(strings.TrimSpace(format))

	switch format {
	case "txt":
		var b bytes.Buffer
		for _, e := range emails {
			b.WriteString(e)
			b.WriteByte('\n')
		}

		return Export{Filename: "emails.txt", ContentType: "text/plain; charset=utf-8", Body: b.Bytes()}, nil
	case "csv":
		var b bytes.Buffer

		w := csv.NewWriter(&b)
		if err := w.Write([]string{"email"}); err != nil {
			return Export{}, err
		}

		for _, e := range emails {
			if err := w.Write([]string{e}); err != nil {
				return Export{}, err
			}
		}

		w.Flush()

		if err := w.Error(); err != nil {
			return Export{}, err
		}

		return Export{Filename: "emails.csv", ContentType: "text/csv", Body: b.Bytes()}, nil
	case "json":
		if emails == nil {
			emails = []string{}
		}

		body, err := json.MarshalIndent(map[string][]string{"emails": emails}, "", "  ")
		if err != nil {
			return Export{}, fmt.Errorf("failed to encode json: %w", err)
		}

		return Export{Filename: "emails.json", ContentType: "application/json", Body: body}, nil
	default:
		return Export{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

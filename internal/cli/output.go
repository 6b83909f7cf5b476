package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zoria/nautiljon-planner/internal/release"
)

// SummaryFormat specifies how the run summary is printed
type SummaryFormat string

const (
	SummaryText SummaryFormat = "text"
	SummaryJSON SummaryFormat = "json"
	SummaryNone SummaryFormat = "none"
)

// ParseSummaryFormat validates a summary format name
func ParseSummaryFormat(s string) (SummaryFormat, error) {
	switch f := SummaryFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case SummaryText, SummaryJSON, SummaryNone:
		return f, nil
	default:
		return "", fmt.Errorf("invalid summary format: %s (must be 'text', 'json' or 'none')", s)
	}
}

// Summary describes a finished export
type Summary struct {
	CheckedAt time.Time         `json:"checked_at"`
	Planning  string            `json:"planning"`
	URL       string            `json:"url"`
	Path      string            `json:"path"`
	Format    string            `json:"format"`
	Count     int               `json:"count"`
	Events    int               `json:"events,omitempty"`
	Keywords  []string          `json:"keywords"`
	Releases  []*release.Record `json:"releases,omitempty"`
}

// WriteSummary writes the summary in the specified format. Releases are only
// listed in verbose text mode and always in JSON mode.
func WriteSummary(w io.Writer, s *Summary, format SummaryFormat, verbose bool) error {
	switch format {
	case SummaryJSON:
		return writeJSON(w, s)
	case SummaryText:
		return writeText(w, s, verbose)
	case SummaryNone:
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the summary as JSON
func writeJSON(w io.Writer, s *Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}

// writeText outputs the summary as human-readable text
func writeText(w io.Writer, s *Summary, verbose bool) error {
	if s.Count == 0 {
		fmt.Fprintf(w, "No releases found. Wrote empty %s file to %s\n", s.Format, s.Path)
		return nil
	}

	fmt.Fprintf(w, "Wrote %d %s to %s (%s)\n", s.Count, plural(s.Count, "release", "releases"), s.Path, s.Format)
	if s.Format == "ics" && s.Events != s.Count {
		fmt.Fprintf(w, "Calendar events: %d (undated releases and duplicate titles are skipped)\n", s.Events)
	}

	if verbose {
		for _, rec := range s.Releases {
			fmt.Fprintf(w, "  %-10s  %s", rec.HumanDate(), rec.Title)
			if publisher := release.Deref(rec.Publisher); publisher != "" {
				fmt.Fprintf(w, " (%s)", publisher)
			}
			if rec.Price != "" {
				fmt.Fprintf(w, " - %s", rec.Price)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

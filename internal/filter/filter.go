// Package filter narrows release records down to a configured interest list.
//
// A record is kept when at least one keyword appears in its title, compared
// case-insensitively as a plain substring. The match is intentionally loose:
// keywords are free text and may match mid-word, so "Shy" also keeps "Pushy
// Girl". An empty keyword list keeps every record.
//
// Example usage:
//
//	f := filter.NewKeywordFilter([]string{"Frieren", "Black Clover"})
//	kept := f.Apply(records)
package filter

import (
	"fmt"
	"strings"

	"github.com/zoria/nautiljon-planner/internal/metrics"
	"github.com/zoria/nautiljon-planner/internal/release"
)

// KeywordFilter keeps records whose title contains one of its keywords.
type KeywordFilter struct {
	keywords []string // trimmed, as configured
	lowered  []string // lowercase copies used for matching

	Metrics *metrics.Metrics
}

// NewKeywordFilter creates a filter from a keyword list. Keywords are trimmed,
// blank entries are dropped (they would match everything) and case-insensitive
// duplicates are collapsed. Order is preserved.
func NewKeywordFilter(keywords []string) *KeywordFilter {
	f := &KeywordFilter{
		keywords: []string{},
		lowered:  []string{},
	}

	seen := make(map[string]bool)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		lower := strings.ToLower(kw)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		f.keywords = append(f.keywords, kw)
		f.lowered = append(f.lowered, lower)
	}

	return f
}

// Keywords returns a copy of the effective keyword list.
func (f *KeywordFilter) Keywords() []string {
	out := make([]string, len(f.keywords))
	copy(out, f.keywords)
	return out
}

// IsEmpty checks if the filter has any keywords.
// An empty filter passes every record through.
func (f *KeywordFilter) IsEmpty() bool {
	return f == nil || len(f.lowered) == 0
}

// Matches reports whether title contains at least one keyword (case-insensitive substring).
func (f *KeywordFilter) Matches(title string) bool {
	if f.IsEmpty() {
		return true
	}

	titleLower := strings.ToLower(title)
	for _, kw := range f.lowered {
		if strings.Contains(titleLower, kw) {
			return true
		}
	}
	return false
}

// Apply returns the matching records in their original relative order.
// The result is always a new slice, even when the filter is empty.
func (f *KeywordFilter) Apply(records []*release.Record) []*release.Record {
	filtered := make([]*release.Record, 0, len(records))
	for _, rec := range records {
		kept := f.Matches(rec.Title)
		if f != nil {
			f.Metrics.IncFiltered(kept)
		}
		if kept {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// String returns a human-readable description of the active keywords.
func (f *KeywordFilter) String() string {
	if f.IsEmpty() {
		return "No keyword filter (all releases)"
	}
	return fmt.Sprintf("Keywords (%d): %s", len(f.keywords), strings.Join(f.keywords, ", "))
}

package release

import (
	"fmt"
	"sort"
	"strings"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByTable SortOrder = "table"
	SortByDate  SortOrder = "date"
	SortByTitle SortOrder = "title"
)

// ParseSortOrder validates a sort order name. Empty means table order.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByTable:
		return SortByTable, nil
	case SortByDate:
		return SortByDate, nil
	case SortByTitle:
		return SortByTitle, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'table', 'date' or 'title')", s)
	}
}

// Sort returns a sorted copy of records. The input slice is left untouched.
// Sorting is stable, so equal keys keep their table order.
func Sort(records []*Record, order SortOrder) []*Record {
	sorted := make([]*Record, len(records))
	copy(sorted, records)

	switch order {
	case SortByDate:
		sort.SliceStable(sorted, func(i, j int) bool {
			return compareByDate(sorted[i], sorted[j])
		})
	case SortByTitle:
		sort.SliceStable(sorted, func(i, j int) bool {
			ti, tj := strings.ToLower(sorted[i].Title), strings.ToLower(sorted[j].Title)
			if ti != tj {
				return ti < tj
			}
			return compareByDate(sorted[i], sorted[j])
		})
	}

	return sorted
}

// compareByDate compares two records by their date
// Returns true if record i should come before record j
func compareByDate(i, j *Record) bool {
	dateI, okI := i.Date()
	dateJ, okJ := j.Date()

	// If both dates are valid, compare them
	if okI && okJ {
		return dateI.Before(dateJ)
	}

	// If only one date is valid, put the valid one first
	if okI {
		return true
	}
	return false
}

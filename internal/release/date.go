package release

import (
	"strings"
	"time"
)

// DateLayout is the planning table's date format (DD/MM/YYYY).
// Single digit days and months are accepted when parsing.
const DateLayout = "2/1/2006"

const (
	humanLayout = "02/01/2006"
	icsLayout   = "20060102"
)

// ParseDate parses a planning date.
// Returns time.Time{} (zero value) and false if parsing fails.
func ParseDate(dateText string) (time.Time, bool) {
	dateText = strings.TrimSpace(dateText)
	if dateText == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(DateLayout, dateText)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Date returns the parsed release date and whether it could be parsed.
func (r *Record) Date() (time.Time, bool) {
	return ParseDate(r.ReleaseDate)
}

// HasDate reports whether the release date is usable for date-based output
func (r *Record) HasDate() bool {
	_, ok := r.Date()
	return ok
}

// ICSDate returns the release date as YYYYMMDD, or "" when unparsable.
func (r *Record) ICSDate() string {
	t, ok := r.Date()
	if !ok {
		return ""
	}
	return t.Format(icsLayout)
}

// ICSEndDate returns the exclusive end of the all-day event (release date + 1 day),
// or "" when unparsable.
func (r *Record) ICSEndDate() string {
	t, ok := r.Date()
	if !ok {
		return ""
	}
	return t.AddDate(0, 0, 1).Format(icsLayout)
}

// HumanDate returns the date normalized to DD/MM/YYYY.
// Falls back to the raw text so nothing is lost for display.
func (r *Record) HumanDate() string {
	t, ok := r.Date()
	if !ok {
		return r.ReleaseDate
	}
	return t.Format(humanLayout)
}

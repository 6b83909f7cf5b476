// Package calendar renders release records as an iCalendar document.
//
// Each release with a parsable date becomes one all-day VEVENT spanning
// [release date, release date + 1 day). Releases without a usable date are
// left out. At most one event is emitted per distinct title: the first record
// with a given title wins. Events keep the order of their first occurrence in
// the input, so sorting is the caller's decision.
//
// The output contains no wall-clock timestamps; rendering the same records
// twice yields byte-identical documents.
package calendar

import (
	"fmt"
	"io"
	"strings"

	"github.com/zoria/nautiljon-planner/internal/release"
)

const (
	prodID    = "-//Nautiljon Planner//nautiljon-planner//FR"
	uidDomain = "nautiljon-planner"
)

// Render returns the calendar document for records.
func Render(records []*release.Record) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString(fmt.Sprintf("PRODID:%s\r\n", prodID))
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	for _, rec := range dedupeByTitle(records) {
		ics.WriteString(renderEvent(rec))
	}

	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

// Write renders records to w.
func Write(w io.Writer, records []*release.Record) error {
	if _, err := io.WriteString(w, Render(records)); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// CountEvents reports how many VEVENTs Render would emit for records.
func CountEvents(records []*release.Record) int {
	return len(dedupeByTitle(records))
}

// dedupeByTitle keeps the first dated record for each distinct title,
// preserving input order. Records are keyed like their UID so no two kept
// events share one.
func dedupeByTitle(records []*release.Record) []*release.Record {
	byKey := make(map[string]struct{}, len(records))
	kept := make([]*release.Record, 0, len(records))

	for _, rec := range records {
		if !rec.HasDate() {
			continue
		}
		key := rec.Key()
		if _, exists := byKey[key]; exists {
			continue
		}
		byKey[key] = struct{}{}
		kept = append(kept, rec)
	}

	return kept
}

// renderEvent renders one all-day VEVENT. The caller guarantees a parsable date.
func renderEvent(rec *release.Record) string {
	var ev strings.Builder

	start := rec.ICSDate()

	ev.WriteString("BEGIN:VEVENT\r\n")
	ev.WriteString(fmt.Sprintf("UID:%s@%s\r\n", rec.Key(), uidDomain))
	ev.WriteString(fmt.Sprintf("DTSTAMP:%sT000000Z\r\n", start))
	ev.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(rec.Title)))
	ev.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description(rec))))
	ev.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", start))
	ev.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", rec.ICSEndDate()))
	if rec.PurchaseURL != nil {
		ev.WriteString(fmt.Sprintf("URL:%s\r\n", *rec.PurchaseURL))
	}
	ev.WriteString("TRANSP:TRANSPARENT\r\n")
	ev.WriteString("END:VEVENT\r\n")

	return ev.String()
}

// description joins the event details with newlines; escapeICS turns them
// into literal \n sequences so the property stays on one line.
func description(rec *release.Record) string {
	lines := []string{
		"Publisher: " + release.Deref(rec.Publisher),
		"Release date: " + rec.HumanDate(),
		"Price: " + rec.Price,
		"Link: " + release.Deref(rec.PurchaseURL),
	}
	return strings.Join(lines, "\n")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

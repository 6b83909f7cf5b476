// Package export writes release records as JSON, CSV or iCalendar documents.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zoria/nautiljon-planner/internal/calendar"
	"github.com/zoria/nautiljon-planner/internal/release"
)

// Format specifies the output format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatICS  Format = "ics"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatICS:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (must be 'json', 'csv' or 'ics')", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Write writes records to w in the specified format
func Write(w io.Writer, format Format, records []*release.Record) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatICS:
		return calendar.Write(w, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile renders records and writes them to path, creating parent
// directories. The document is rendered in memory first so a failed render
// never leaves a partial file behind.
func WriteFile(path string, format Format, records []*release.Record) error {
	var buf bytes.Buffer
	if err := Write(&buf, format, records); err != nil {
		return err
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// DefaultPath returns planning_YYYYmmdd_HHMMSS.<ext> for the given time.
func DefaultPath(format Format, now time.Time) string {
	return fmt.Sprintf("planning_%s.%s", now.Format("20060102_150405"), format.Extension())
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

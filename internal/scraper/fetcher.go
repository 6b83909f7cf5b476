// Package scraper turns the Nautiljon planning page into release records.
//
// A PageFetcher renders the page and returns the raw markup of the planning
// table body. ExtractRows splits that markup into positional RawRecords and a
// Normalizer converts them into release.Record values.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	BaseURL       = "https://www.nautiljon.com"
	TableSelector = "#planning tbody"
	UserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	Timeout       = 30 * time.Second
)

// Planning identifies one of the site's release plannings.
type Planning string

const (
	PlanningManga      Planning = "manga"
	PlanningLightNovel Planning = "ln"
)

// ParsePlanning validates a planning name.
func ParsePlanning(s string) (Planning, error) {
	switch Planning(strings.ToLower(strings.TrimSpace(s))) {
	case "", PlanningManga:
		return PlanningManga, nil
	case PlanningLightNovel:
		return PlanningLightNovel, nil
	default:
		return "", fmt.Errorf("invalid planning: %s (must be 'manga' or 'ln')", s)
	}
}

// URL returns the planning page address under baseURL.
func (p Planning) URL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/planning/" + string(p) + "/"
}

var (
	// ErrTableNotFound means the planning table never appeared, either because
	// the page did not render it before the timeout or because it is absent.
	ErrTableNotFound = errors.New("planning table not found")

	// ErrRowMalformed marks a table row that cannot become a record.
	ErrRowMalformed = errors.New("malformed planning row")
)

// PageFetcher loads a page and returns the outer HTML of the planning table body.
// Implementations must return an error wrapping ErrTableNotFound when the
// table container does not show up within timeout.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (string, error)
}

// StaticFetcher returns fixed markup, such as a saved page, without network
// access. Used by tests and the calendar preview script.
type StaticFetcher struct {
	Markup string
	Err    error
}

// Fetch returns the configured markup or error.
func (f *StaticFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Markup, nil
}

func tableNotFound(selector string, timeout time.Duration, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %q not present", ErrTableNotFound, selector)
	}
	return fmt.Errorf("%w: waited %s for %q: %v", ErrTableNotFound, timeout, selector, cause)
}

package scraper

import (
	"fmt"
	"iter"
	"strings"

	"github.com/zoria/nautiljon-planner/internal/logger"
	"github.com/zoria/nautiljon-planner/internal/metrics"
	"github.com/zoria/nautiljon-planner/internal/release"
)

// Normalizer converts RawRecords into release records.
type Normalizer struct {
	BaseURL string
	Log     *logger.Logger
	Metrics *metrics.Metrics
}

// NewNormalizer creates a Normalizer resolving relative links against baseURL.
func NewNormalizer(baseURL string) *Normalizer {
	return &Normalizer{BaseURL: baseURL}
}

// Normalize maps one raw row to a record. Only a missing title is an error;
// every other field degrades to empty or nil.
func (n *Normalizer) Normalize(raw RawRecord) (*release.Record, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: row %d has no title", ErrRowMalformed, raw.Row)
	}

	rec := &release.Record{
		Title:        title,
		ReleaseDate:  strings.TrimSpace(raw.DateText),
		Price:        strings.TrimSpace(raw.Price),
		Publisher:    release.Optional(strings.TrimSpace(raw.Publisher)),
		PurchaseURL:  release.Optional(n.absolute(raw.Purchase)),
		ThumbnailURL: release.Optional(n.absolute(raw.Thumbnail)),
	}

	if !rec.HasDate() {
		n.log().Warn("Unparsable release date", logger.Fields{
			"row":   raw.Row,
			"title": title,
			"date":  rec.ReleaseDate,
		})
		n.Metrics.IncDateUnparsable()
	}

	return rec, nil
}

// NormalizeAll normalizes every row of seq, logging and skipping rejected rows.
func (n *Normalizer) NormalizeAll(seq iter.Seq[RawRecord]) []*release.Record {
	records := make([]*release.Record, 0)
	for raw := range seq {
		rec, err := n.Normalize(raw)
		if err != nil {
			n.log().Warn("Skipping planning row", logger.Fields{
				"row":    raw.Row,
				"reason": err.Error(),
			})
			n.Metrics.IncRow(metrics.RowRejected)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// absolute resolves href against the base URL. Links that already carry an
// http(s) scheme pass through unchanged; an empty href stays empty.
func (n *Normalizer) absolute(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}

	base := strings.TrimRight(n.baseURL(), "/")
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}

func (n *Normalizer) baseURL() string {
	if n.BaseURL != "" {
		return n.BaseURL
	}
	return BaseURL
}

func (n *Normalizer) log() *logger.Logger {
	if n.Log != nil {
		return n.Log
	}
	return logger.Default()
}

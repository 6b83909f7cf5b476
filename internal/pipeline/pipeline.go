// Package pipeline runs one planner pass: fetch the planning table, extract
// and normalize its rows, apply the keyword filter and hand the records to an
// exporter or a notifier. Stages run sequentially; only the fetch blocks.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/zoria/nautiljon-planner/internal/calendar"
	"github.com/zoria/nautiljon-planner/internal/export"
	"github.com/zoria/nautiljon-planner/internal/filter"
	"github.com/zoria/nautiljon-planner/internal/logger"
	"github.com/zoria/nautiljon-planner/internal/metrics"
	"github.com/zoria/nautiljon-planner/internal/notifier"
	"github.com/zoria/nautiljon-planner/internal/release"
	"github.com/zoria/nautiljon-planner/internal/scraper"
)

// Pipeline holds the collaborators of a run. A Pipeline is not reused across
// runs; build a fresh one each time.
type Pipeline struct {
	Fetcher scraper.PageFetcher
	URL     string
	BaseURL string
	Timeout time.Duration
	Filter  *filter.KeywordFilter
	Order   release.SortOrder

	Log     *logger.Logger
	Metrics *metrics.Metrics
}

// Result describes a written artifact.
type Result struct {
	Path    string
	Format  export.Format
	Records int
	// Events is the number of VEVENTs for calendar output.
	Events int
}

// Collect fetches the planning page and returns the filtered, ordered records.
// Only fetch failures are returned as errors; malformed rows are skipped.
func (p *Pipeline) Collect(ctx context.Context) ([]*release.Record, error) {
	log := p.log()

	log.Info("Fetching planning", logger.Fields{
		"url":     p.URL,
		"timeout": p.Timeout.String(),
	})

	start := time.Now()
	markup, err := p.Fetcher.Fetch(ctx, p.URL, p.Timeout)
	p.Metrics.ObserveFetch(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetching planning: %w", err)
	}

	extractor := &scraper.Extractor{Log: p.Log, Metrics: p.Metrics}
	rows, err := extractor.Rows(markup)
	if err != nil {
		return nil, err
	}

	normalizer := scraper.NewNormalizer(p.BaseURL)
	normalizer.Log = p.Log
	normalizer.Metrics = p.Metrics
	records := normalizer.NormalizeAll(rows)

	if p.Filter != nil && p.Filter.Metrics == nil {
		p.Filter.Metrics = p.Metrics
	}
	kept := p.Filter.Apply(records)
	kept = release.Sort(kept, p.Order)

	log.Info("Collected releases", logger.Fields{
		"records": len(records),
		"kept":    len(kept),
		"filter":  p.Filter.String(),
	})
	return kept, nil
}

// Export collects records and writes them to path in format. Nothing is
// written when collection fails. An empty result still produces a valid,
// empty document.
func (p *Pipeline) Export(ctx context.Context, path string, format export.Format) (*Result, error) {
	records, err := p.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return p.write(records, path, format)
}

// ExportRecords writes already collected records.
func (p *Pipeline) ExportRecords(records []*release.Record, path string, format export.Format) (*Result, error) {
	return p.write(records, path, format)
}

func (p *Pipeline) write(records []*release.Record, path string, format export.Format) (*Result, error) {
	if err := export.WriteFile(path, format, records); err != nil {
		return nil, fmt.Errorf("exporting %s: %w", format, err)
	}
	p.Metrics.SetExported(len(records))

	result := &Result{Path: path, Format: format, Records: len(records)}
	if format == export.FormatICS {
		result.Events = calendar.CountEvents(records)
	}

	p.log().Info("Wrote planning", logger.Fields{
		"path":    result.Path,
		"format":  string(result.Format),
		"records": result.Records,
	})
	return result, nil
}

// Notify collects records and posts one notification per record.
// Transport failures are reported, not returned.
func (p *Pipeline) Notify(ctx context.Context, n notifier.Notifier, opts notifier.DispatchOptions) (notifier.Report, error) {
	records, err := p.Collect(ctx)
	if err != nil {
		return notifier.Report{}, err
	}
	return p.NotifyRecords(ctx, n, records, opts), nil
}

// NotifyRecords posts notifications for already collected records.
func (p *Pipeline) NotifyRecords(ctx context.Context, n notifier.Notifier, records []*release.Record, opts notifier.DispatchOptions) notifier.Report {
	if opts.Log == nil {
		opts.Log = p.Log
	}
	if opts.Metrics == nil {
		opts.Metrics = p.Metrics
	}
	return notifier.Dispatch(ctx, n, records, opts)
}

func (p *Pipeline) log() *logger.Logger {
	if p.Log != nil {
		return p.Log
	}
	return logger.Default()
}

package notifier

import (
	"context"
	"time"

	"github.com/zoria/nautiljon-planner/internal/logger"
	"github.com/zoria/nautiljon-planner/internal/metrics"
	"github.com/zoria/nautiljon-planner/internal/release"
)

// DispatchOptions controls a Dispatch run.
type DispatchOptions struct {
	// Interval is the pause between two posts. Zero posts back to back.
	Interval time.Duration
	// Max caps the number of records posted. Zero means no cap.
	Max int

	Log     *logger.Logger
	Metrics *metrics.Metrics
}

// Failure records a post that did not go through.
type Failure struct {
	Title string
	Err   error
}

// Report summarizes a Dispatch run.
type Report struct {
	Attempted int
	Sent      int
	Failures  []Failure
	// Err is set when the context ended the run early.
	Err error
}

// Failed reports whether any post failed.
func (r Report) Failed() bool {
	return len(r.Failures) > 0
}

// Dispatch posts one payload per record, in order. A failed post is logged,
// counted and recorded in the report; the remaining records are still posted.
func Dispatch(ctx context.Context, n Notifier, records []*release.Record, opts DispatchOptions) Report {
	log := opts.Log
	if log == nil {
		log = logger.Default()
	}

	if opts.Max > 0 && len(records) > opts.Max {
		records = records[:opts.Max]
	}

	var report Report
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			report.Err = err
			break
		}

		if i > 0 && opts.Interval > 0 {
			if err := sleep(ctx, opts.Interval); err != nil {
				report.Err = err
				break
			}
		}

		report.Attempted++
		if err := n.Post(ctx, BuildPayload(rec)); err != nil {
			log.Error("Failed to post notification", logger.Fields{
				"title": rec.Title,
				"index": i + 1,
				"total": len(records),
			}, err)
			opts.Metrics.IncNotification(false)
			report.Failures = append(report.Failures, Failure{Title: rec.Title, Err: err})
			continue
		}

		log.Debug("Posted notification", logger.Fields{"title": rec.Title})
		opts.Metrics.IncNotification(true)
		report.Sent++
	}

	log.Info("Notification dispatch finished", logger.Fields{
		"attempted": report.Attempted,
		"sent":      report.Sent,
		"failed":    len(report.Failures),
	})
	return report
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

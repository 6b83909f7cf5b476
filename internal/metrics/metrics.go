// Package metrics tracks per-run counters for the planning pipeline.
//
// Every run gets its own registry so nothing leaks between scheduled runs.
// All helpers are nil-safe: a nil *Metrics turns them into no-ops.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Row outcomes recorded by the extractor and normalizer.
const (
	RowExtracted = "extracted"
	RowSkipped   = "skipped"
	RowRejected  = "rejected"
)

// Metrics bundles Prometheus collectors for one pipeline run.
type Metrics struct {
	Registry        *prometheus.Registry
	RowsTotal       *prometheus.CounterVec
	RecordsFiltered *prometheus.CounterVec
	DatesUnparsable prometheus.Counter
	Notifications   *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	RecordsExported prometheus.Gauge
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	rows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_rows_total",
			Help: "Planning table rows by extraction outcome.",
		},
		[]string{"outcome"},
	)
	filtered := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_records_filtered_total",
			Help: "Records evaluated by the keyword filter.",
		},
		[]string{"result"},
	)
	dates := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "planner_dates_unparsable_total",
			Help: "Records whose release date could not be parsed.",
		},
	)
	notifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_notifications_total",
			Help: "Notification attempts by result.",
		},
		[]string{"result"},
	)
	fetch := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "planner_fetch_duration_seconds",
			Help:    "Time spent loading the planning page.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)
	exported := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "planner_records_exported",
			Help: "Records written by the last export.",
		},
	)

	registry.MustRegister(rows, filtered, dates, notifications, fetch, exported)

	return &Metrics{
		Registry:        registry,
		RowsTotal:       rows,
		RecordsFiltered: filtered,
		DatesUnparsable: dates,
		Notifications:   notifications,
		FetchDuration:   fetch,
		RecordsExported: exported,
	}
}

// IncRow counts a table row with the given outcome.
func (m *Metrics) IncRow(outcome string) {
	if m == nil {
		return
	}
	m.RowsTotal.WithLabelValues(outcome).Inc()
}

// IncFiltered counts a keyword filter decision.
func (m *Metrics) IncFiltered(kept bool) {
	if m == nil {
		return
	}
	result := "dropped"
	if kept {
		result = "kept"
	}
	m.RecordsFiltered.WithLabelValues(result).Inc()
}

// IncDateUnparsable counts a release date that failed to parse.
func (m *Metrics) IncDateUnparsable() {
	if m == nil {
		return
	}
	m.DatesUnparsable.Inc()
}

// IncNotification counts a notification attempt.
func (m *Metrics) IncNotification(ok bool) {
	if m == nil {
		return
	}
	result := "failed"
	if ok {
		result = "sent"
	}
	m.Notifications.WithLabelValues(result).Inc()
}

// ObserveFetch records how long the page fetch took.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// SetExported records the number of records in the written artifact.
func (m *Metrics) SetExported(n int) {
	if m == nil {
		return
	}
	m.RecordsExported.Set(float64(n))
}

// WriteTextfile writes the registry in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(exportsTotal, exportDuration, exportRowsTotal) }

var (
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "CSV export requests by outcome (ok/empty/malformed/invalid_range/unavailable/timeout/error).",
		},
		[]string{"outcome"},
	)

	exportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "export_duration_seconds",
			Help:    "End-to-end duration of CSV exports.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	exportRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "export_rows_total",
			Help: "Total number of vacancy rows rendered into CSV.",
		},
	)
)

func ObserveExport(outcome string, rows int, d time.Duration) {
	exportsTotal.WithLabelValues(norm(outcome)).Inc()
	exportDuration.Observe(d.Seconds())
	if rows > 0 {
		exportRowsTotal.Add(float64(rows))
	}
}

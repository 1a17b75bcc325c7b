package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(dbPoolStats, dbQueryDuration, dbPoolCreatedTotal) }

var (
	dbPoolStats = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_stats",
			Help: "Current state of the database connection pool.",
		},
		[]string{"state"}, // 'total', 'idle', 'in_use'
	)

	dbQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Latency of listing store queries.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query", "success"},
	)

	dbPoolCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_pool_created_total",
			Help: "Connection pool creation attempts by result.",
		},
		[]string{"result"},
	)
)

func SetDBPoolStats(total, idle, inUse int32) {
	dbPoolStats.WithLabelValues("total").Set(float64(total))
	dbPoolStats.WithLabelValues("idle").Set(float64(idle))
	dbPoolStats.WithLabelValues("in_use").Set(float64(inUse))
}

func ObserveDBQuery(query string, d time.Duration, err error) {
	dbQueryDuration.WithLabelValues(norm(query), successLabel(err)).Observe(d.Seconds())
}

func IncPoolCreated(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	dbPoolCreatedTotal.WithLabelValues(result).Inc()
}

func successLabel(err error) string {
	if err != nil {
		return "false"
	}
	return "true"
}

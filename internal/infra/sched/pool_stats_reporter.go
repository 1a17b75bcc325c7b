package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vacancy-export-bot/internal/infra/metrics"
)

// PoolStatsSource reports connection pool counters; ok is false while no pool exists.
type PoolStatsSource interface {
	Stats() (total, idle, inUse int32, ok bool)
}

// PoolStatsReporter periodically copies pool counters into the db_pool_stats gauge.
type PoolStatsReporter struct {
	interval time.Duration
	src      PoolStatsSource
	log      *zerolog.Logger
}

func NewPoolStatsReporter(interval time.Duration, src PoolStatsSource, logger *zerolog.Logger) *PoolStatsReporter {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	l := logger.With().Str("component", "PoolStatsReporter").Logger()
	return &PoolStatsReporter{interval: interval, src: src, log: &l}
}

func (w *PoolStatsReporter) Run(ctx context.Context) error {
	w.log.Debug().Dur("interval", w.interval).Msg("starting pool stats reporter")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *PoolStatsReporter) report() {
	total, idle, inUse, ok := w.src.Stats()
	if !ok {
		return
	}
	metrics.SetDBPoolStats(total, idle, inUse)
	if inUse == total && total > 0 {
		w.log.Warn().Int32("total", total).Msg("connection pool saturated")
	}
}

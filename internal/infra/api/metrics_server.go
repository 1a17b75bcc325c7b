package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// MetricsServer exposes /metrics for processes without their own HTTP surface, such as the bot.
type MetricsServer struct {
	port  int
	grace time.Duration
	log   *zerolog.Logger
}

func NewMetricsServer(port int, grace time.Duration, logger *zerolog.Logger) *MetricsServer {
	l := logger.With().Str("component", "MetricsServer").Logger()
	return &MetricsServer{port: port, grace: grace, log: &l}
}

func (m *MetricsServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return Chain(r, Recover(m.log))
}

// Run serves until ctx is cancelled.
func (m *MetricsServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", m.port),
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, m.grace, m.log)
}

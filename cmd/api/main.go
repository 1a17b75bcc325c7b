package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"vacancy-export-bot/internal/config"
	"vacancy-export-bot/internal/infra/api"
	pg "vacancy-export-bot/internal/infra/db/postgres"
	"vacancy-export-bot/internal/infra/i18n"
	"vacancy-export-bot/internal/infra/logging"
	"vacancy-export-bot/internal/infra/metrics"
	"vacancy-export-bot/internal/infra/sched"
	"vacancy-export-bot/internal/usecase"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ----
	provider := pg.NewProvider(cfg.Database, logger)
	defer provider.Close()

	warmCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout+time.Second)
	if err := provider.Warmup(warmCtx); err != nil {
		// first request retries
		logger.Warn().Err(err).Msg("database warm-up failed, continuing")
	}
	cancel()

	go func() { _ = sched.NewPoolStatsReporter(cfg.Database.StatsInterval, provider, logger).Run(ctx) }()

	// ---- Use cases ----
	vacancyRepo := pg.NewPostgresVacancyRepo(provider, cfg.Database.QueryTimeout)
	exportUC := usecase.NewExportUseCase(vacancyRepo, logger)

	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.API.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("load translations")
	}

	// ---- HTTP ----
	srv := api.NewServer(exportUC, translator, cfg.API, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server stopped")
	}
	logger.Info().Msg("export service stopped")
}

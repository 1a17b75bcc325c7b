package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vacancy-export-bot/internal/config"
	"vacancy-export-bot/internal/domain/ports/repository"
	"vacancy-export-bot/internal/infra/adapters/export"
	tele "vacancy-export-bot/internal/infra/adapters/telegram"
	"vacancy-export-bot/internal/infra/api"
	"vacancy-export-bot/internal/infra/i18n"
	"vacancy-export-bot/internal/infra/logging"
	"vacancy-export-bot/internal/infra/memory"
	"vacancy-export-bot/internal/infra/metrics"
	red "vacancy-export-bot/internal/infra/redis"
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
	if err := cfg.ValidateBot(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("load translations")
	}

	// ---- Session store (Redis when configured) ----
	var (
		states      repository.DialogueStateRepository
		rateLimiter tele.RateLimiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		states = red.NewDialogueStateRepo(redisClient, cfg.Redis.TTL)
		rateLimiter = red.NewRateLimiter(redisClient)
		logger.Info().Msg("dialogue sessions stored in redis")
	} else {
		states = memory.NewDialogueStateRepo(cfg.Redis.TTL)
		logger.Info().Msg("dialogue sessions kept in memory")
	}

	// ---- Export service client ----
	exportClient, err := export.NewHTTPClient(cfg.Export, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("export client")
	}

	// ---- Telegram ----
	if err := os.MkdirAll(cfg.Bot.DownloadDir, 0o750); err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.Bot.DownloadDir).Msg("download dir")
	}
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, translator, rateLimiter, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	dialogueUC := usecase.NewDialogueUseCase(states, exportClient, botAdapter, translator, usecase.DialogueOptions{
		DownloadDir: cfg.Bot.DownloadDir,
		KeepFiles:   cfg.Bot.KeepFiles,
	}, logger)
	botAdapter.SetDialogue(dialogueUC)

	// ---- Metrics listener ----
	if cfg.Bot.MetricsPort > 0 {
		go func() {
			if err := api.NewMetricsServer(cfg.Bot.MetricsPort, cfg.API.ShutdownGrace, logger).Run(ctx); err != nil {
				logger.Error().Err(err).Msg("metrics server")
			}
		}()
	}

	if !cfg.Bot.KeepFiles {
		go func() { _ = sched.NewFileJanitor(cfg.Bot.DownloadDir, cfg.Bot.FileTTL, logger).Run(ctx) }()
	}

	if err := botAdapter.StartPolling(ctx); err != nil {
		logger.Error().Err(err).Msg("telegram polling stopped")
	}
	logger.Info().Msg("bot stopped")
}

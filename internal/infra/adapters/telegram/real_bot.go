package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vacancy-export-bot/internal/config"
	"vacancy-export-bot/internal/domain/ports/adapter"
	"vacancy-export-bot/internal/infra/i18n"
	"vacancy-export-bot/internal/infra/logging"
	"vacancy-export-bot/internal/infra/worker"
	"vacancy-export-bot/internal/usecase"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// botAPI is the part of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// RateLimiter is satisfied by the Redis fixed-window limiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RealTelegramBotAdapter long-polls updates and feeds them to the export dialogue.
// Updates of one user are processed sequentially through a keyed worker pool.
type RealTelegramBotAdapter struct {
	bot         botAPI
	cfg         *config.BotConfig
	translator  *i18n.Translator
	rateLimiter RateLimiter
	dialogue    usecase.DialogueUseCase
	pool        *worker.KeyedPool
	log         *zerolog.Logger
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, translator *i18n.Translator, rateLimiter RateLimiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return newAdapter(bot, cfg, translator, rateLimiter, logger), nil
}

func newAdapter(bot botAPI, cfg *config.BotConfig, translator *i18n.Translator, rateLimiter RateLimiter, logger *zerolog.Logger) *RealTelegramBotAdapter {
	l := logger.With().Str("component", "TelegramAdapter").Logger()
	return &RealTelegramBotAdapter{
		bot:         bot,
		cfg:         cfg,
		translator:  translator,
		rateLimiter: rateLimiter,
		pool:        worker.NewKeyedPool(cfg.Workers, 16, logger),
		log:         &l,
	}
}

// SetDialogue attaches the dialogue use case. It must be called before StartPolling.
func (r *RealTelegramBotAdapter) SetDialogue(d usecase.DialogueUseCase) {
	r.dialogue = d
}

// StartPolling blocks until ctx is cancelled, then waits for in-flight
// updates to finish.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.dialogue == nil {
		return errors.New("dialogue use case is not set")
	}
	if err := r.SetMenuCommands(ctx); err != nil {
		r.log.Warn().Err(err).Msg("failed to set menu commands")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	// workers get a context that outlives polling so queued updates can finish
	r.pool.Start(context.WithoutCancel(ctx))
	defer r.pool.Stop()

	r.log.Info().Int("workers", r.cfg.Workers).Msg("polling started")
	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			r.log.Info().Msg("polling stopped")
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			r.dispatch(ctx, up)
		}
	}
}

func (r *RealTelegramBotAdapter) dispatch(ctx context.Context, up tgbotapi.Update) {
	if up.Message == nil || up.Message.From == nil {
		return
	}
	key := up.Message.From.ID
	err := r.pool.Submit(ctx, key, func(ctx context.Context) error {
		ctx = logging.WithTraceID(ctx, uuid.NewString())
		return r.handleUpdate(ctx, up)
	})
	if err != nil && ctx.Err() == nil {
		r.log.Error().Err(err).Int64("tg_id", key).Msg("dispatch update")
	}
}

// SendMessage sends plain text to a chat.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

// SendDocument uploads the file at path with a caption.
func (r *RealTelegramBotAdapter) SendDocument(ctx context.Context, chatID int64, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	_, err := r.bot.Send(doc)
	return err
}

// SetMenuCommands publishes the command list shown in the Telegram menu.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context) error {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: r.translator.T("cmd_start_desc")},
		tgbotapi.BotCommand{Command: "help", Description: r.translator.T("cmd_help_desc")},
	)
	_, err := r.bot.Request(cmds)
	return err
}

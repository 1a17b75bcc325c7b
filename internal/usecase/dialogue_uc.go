package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"vacancy-export-bot/internal/domain"
	"vacancy-export-bot/internal/domain/model"
	"vacancy-export-bot/internal/domain/ports/adapter"
	"vacancy-export-bot/internal/domain/ports/repository"
	"vacancy-export-bot/internal/infra/i18n"
	"vacancy-export-bot/internal/infra/logging"
	"vacancy-export-bot/internal/infra/metrics"
)

// Compile-time check
var _ DialogueUseCase = (*dialogueUC)(nil)

// DialogueUseCase drives the per-user export conversation:
// IDLE -> awaiting_start -> awaiting_end -> IDLE.
type DialogueUseCase interface {
	// Start resets any session and asks for the start date.
	Start(ctx context.Context, tgID int64) error
	// HandleText feeds one plain text message into the user's session.
	HandleText(ctx context.Context, tgID int64, text string) error
}

type DialogueOptions struct {
	DownloadDir string
	KeepFiles   bool
}

// Replies are sent to tgID: the bot only talks in private chats, where chat id equals user id.
type dialogueUC struct {
	states repository.DialogueStateRepository
	client adapter.ExportClient
	bot    adapter.TelegramBotAdapter
	tr     *i18n.Translator
	opts   DialogueOptions

	log *zerolog.Logger
}

func NewDialogueUseCase(
	states repository.DialogueStateRepository,
	client adapter.ExportClient,
	bot adapter.TelegramBotAdapter,
	tr *i18n.Translator,
	opts DialogueOptions,
	logger *zerolog.Logger,
) *dialogueUC {
	if opts.DownloadDir == "" {
		opts.DownloadDir = os.TempDir()
	}
	l := logger.With().Str("component", "DialogueUseCase").Logger()
	return &dialogueUC{states: states, client: client, bot: bot, tr: tr, opts: opts, log: &l}
}

func (u *dialogueUC) Start(ctx context.Context, tgID int64) error {
	if err := u.states.ClearState(ctx, tgID); err != nil {
		return fmt.Errorf("clear dialogue state: %w", err)
	}
	st := &repository.DialogueState{Step: repository.StepAwaitingStart}
	if err := u.states.SetState(ctx, tgID, st); err != nil {
		return fmt.Errorf("set dialogue state: %w", err)
	}
	return u.bot.SendMessage(ctx, tgID, u.tr.T("ask_start_date"))
}

func (u *dialogueUC) HandleText(ctx context.Context, tgID int64, text string) error {
	ctx = logging.WithTgID(ctx, tgID)

	st, err := u.states.GetState(ctx, tgID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get dialogue state: %w", err)
		}
		st = &repository.DialogueState{Step: repository.StepIdle}
	}

	switch st.Step {
	case repository.StepAwaitingStart:
		return u.onStartDate(ctx, tgID, text)
	case repository.StepAwaitingEnd:
		return u.onEndDate(ctx, tgID, st.StartDate, text)
	default:
		return u.bot.SendMessage(ctx, tgID, u.tr.T("idle_hint"))
	}
}

// A malformed start date keeps the session waiting for another try.
func (u *dialogueUC) onStartDate(ctx context.Context, tgID int64, text string) error {
	start, err := model.ParseDate(text)
	if err != nil {
		return u.bot.SendMessage(ctx, tgID, u.tr.T("bad_start_date"))
	}
	st := &repository.DialogueState{
		Step:      repository.StepAwaitingEnd,
		StartDate: start.Format(model.DateLayout),
	}
	if err := u.states.SetState(ctx, tgID, st); err != nil {
		return fmt.Errorf("set dialogue state: %w", err)
	}
	return u.bot.SendMessage(ctx, tgID, u.tr.T("ask_end_date"))
}

// Every path out of awaiting_end ends the session, including a malformed end date.
func (u *dialogueUC) onEndDate(ctx context.Context, tgID int64, startText, text string) error {
	l := logging.With(ctx, u.log)
	defer func() {
		if err := u.states.ClearState(ctx, tgID); err != nil {
			l.Warn().Err(err).Msg("clear dialogue state")
		}
	}()

	end, err := model.ParseDate(text)
	if err != nil {
		metrics.IncDialogueOutcome("bad_end_date")
		return u.bot.SendMessage(ctx, tgID, u.tr.T("bad_end_date"))
	}
	endText := end.Format(model.DateLayout)

	if err := u.bot.SendMessage(ctx, tgID, u.tr.T("generating")); err != nil {
		l.Warn().Err(err).Msg("send progress notice")
	}

	resp, err := u.client.RequestExport(ctx, startText, endText)
	if err != nil {
		metrics.IncDialogueOutcome("error")
		l.Error().Err(err).Str("start", startText).Str("end", endText).Msg("export request failed")
		return u.bot.SendMessage(ctx, tgID, u.tr.T("export_failed"))
	}

	if resp.StatusCode != http.StatusOK {
		metrics.IncDialogueOutcome("bad_status")
		l.Warn().Int("status", resp.StatusCode).Str("start", startText).Str("end", endText).Msg("export service refused")
		return u.bot.SendMessage(ctx, tgID, u.tr.T("export_status_error", resp.StatusCode))
	}

	if !resp.IsCSV() {
		if msg, ok := u.advisory(resp.Body); ok {
			metrics.IncDialogueOutcome("empty")
			return u.bot.SendMessage(ctx, tgID, msg)
		}
		metrics.IncDialogueOutcome("error")
		l.Error().Str("content_type", resp.ContentType).Msg("unexpected export response")
		return u.bot.SendMessage(ctx, tgID, u.tr.T("export_failed"))
	}

	if err := u.deliver(ctx, tgID, startText, endText, resp.Body); err != nil {
		metrics.IncDialogueOutcome("error")
		l.Error().Err(err).Msg("deliver csv")
		return u.bot.SendMessage(ctx, tgID, u.tr.T("export_failed"))
	}
	metrics.IncDialogueOutcome("delivered")
	l.Info().Str("start", startText).Str("end", endText).Int("bytes", len(resp.Body)).Msg("csv delivered")
	return nil
}

// advisory extracts {"message": ...} from a non-CSV success body.
func (u *dialogueUC) advisory(body []byte) (string, bool) {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	if strings.TrimSpace(payload.Message) == "" {
		return "", false
	}
	return payload.Message, true
}

// deliver writes the CSV to <download_dir>/<ulid>/<name>, uploads it and removes it.
func (u *dialogueUC) deliver(ctx context.Context, tgID int64, startText, endText string, data []byte) error {
	dir := filepath.Join(u.opts.DownloadDir, ulid.Make().String())
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	if !u.opts.KeepFiles {
		defer func() {
			if err := os.RemoveAll(dir); err != nil {
				u.log.Warn().Err(err).Str("dir", dir).Msg("remove delivered file")
			}
		}()
	}

	path := filepath.Join(dir, model.ExportFilename(startText, endText))
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	err := u.bot.SendDocument(ctx, tgID, path, u.tr.T("document_caption", startText, endText))
	metrics.IncDocumentSent(err)
	if err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

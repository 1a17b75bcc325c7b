package adapter

import "context"

// TelegramBotAdapter is what the dialogue needs from the chat transport.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	// SendDocument uploads the local file at path with an optional caption.
	SendDocument(ctx context.Context, chatID int64, path, caption string) error
}

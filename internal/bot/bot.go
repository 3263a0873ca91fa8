package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	telegramMessageMaxLength = 4096

	// Escaping at most doubles a chunk, so raw chunks stay under half the
	// limit with room for the header.
	summaryChunkLength = telegramMessageMaxLength/2 - 128

	sendSpinnerInterval = 4 * time.Second
)

// Level is the severity of a system notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Bot delivers summaries and notifications to a single Telegram chat.
type Bot struct {
	api    *tgbot.Bot
	chatID int64
	log    *slog.Logger
}

func New(token string, chatID int64, log *slog.Logger, opts ...tgbot.Option) (*Bot, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token is empty")
	}

	if chatID == 0 {
		return nil, errors.New("chat ID is empty")
	}

	api, err := tgbot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &Bot{
		api:    api,
		chatID: chatID,
		log:    log,
	}, nil
}

// SendSummary posts a summary under a bold title, split across as many
// messages as needed.
func (b *Bot) SendSummary(ctx context.Context, title string, summary string) error {
	chunks := formatSummaryMessages(title, summary)

	var errs []error
	for i, chunk := range chunks {
		if err := b.send(ctx, chunk); err != nil {
			errs = append(errs, fmt.Errorf("send chunk %d/%d: %w", i+1, len(chunks), err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	b.log.InfoContext(ctx, "Summary is sent",
		"chatID", b.chatID,
		"title", title,
		"messageCount", len(chunks))

	return nil
}

// SendSystemNotification posts an operational notice.
func (b *Bot) SendSystemNotification(
	ctx context.Context,
	level Level,
	title string,
	body string,
) error {
	if err := b.send(ctx, formatNotification(level, title, body)); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	return nil
}

// WithTyping shows the typing indicator in the chat while fn runs.
func (b *Bot) WithTyping(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		b.sendTyping(ctx)

		t := time.NewTicker(sendSpinnerInterval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				b.sendTyping(ctx)
			}
		}
	}()

	return fn()
}

func (b *Bot) sendTyping(ctx context.Context) {
	_, err := b.api.SendChatAction(ctx, &tgbot.SendChatActionParams{
		ChatID: b.chatID,
		Action: models.ChatActionTyping,
	})
	if err != nil && ctx.Err() == nil {
		b.log.WarnContext(ctx, "Failed to send chat action",
			"error", err,
			"chatID", b.chatID)
	}
}

func (b *Bot) send(ctx context.Context, text string) error {
	_, err := b.api.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    b.chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})

	return err
}

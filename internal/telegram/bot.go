// Package telegram is the messaging collaborator: it delivers incoming
// messages to the pipeline and sends back a single reply per message.
package telegram

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Pomiro/assistant/internal/assistant"
)

// sendRate limits outgoing messages to stay under the Bot API's global
// sending allowance.
var sendRate = rate.Limit(25)

// Handler processes one incoming message and returns the reply text.
type Handler interface {
	Handle(ctx context.Context, msg assistant.RawMessage) string
}

// Bot runs the long-polling loop against the Telegram Bot API.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler Handler
	logger  *slog.Logger
	limiter *rate.Limiter
}

// New creates a bot for the given token.
func New(token string, handler Handler, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "create bot api")
	}

	logger.Info("authorized on telegram", "account", api.Self.UserName)

	return &Bot{
		api:     api,
		handler: handler,
		logger:  logger,
		limiter: rate.NewLimiter(sendRate, 5),
	}, nil
}

// Run polls for updates until the context is canceled. Each message is
// handled in its own goroutine; handlers share no mutable state beyond the
// collaborators themselves.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	g, ctx := errgroup.WithContext(ctx)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return g.Wait()
		case update, ok := <-updates:
			if !ok {
				return g.Wait()
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}

			message := update.Message
			g.Go(func() error {
				b.dispatch(ctx, message)
				return nil
			})
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, message *tgbotapi.Message) {
	var reply string
	if message.IsCommand() {
		// /start is the one explicit command; anything else slash-shaped
		// gets the same capability listing.
		reply = assistant.HelpMessage
	} else {
		reply = b.handler.Handle(ctx, assistant.RawMessage{
			ChatID:     message.Chat.ID,
			Text:       message.Text,
			ReceivedAt: time.Now(),
		})
	}

	b.send(ctx, message.Chat.ID, reply)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("send reply failed", "chat_id", chatID, "error", err.Error())
	}
}

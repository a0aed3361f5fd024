package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aescanero/dago-node-calculator/internal/handler"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleTimeout bounds handling and sending a single reply
const handleTimeout = 30 * time.Second

// Client is the subset of *tgbotapi.BotAPI the bot uses
type Client interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

// MessageHandler produces the reply for an inbound message
type MessageHandler interface {
	Handle(ctx context.Context, msg handler.Message) (*handler.Reply, error)
}

// Options tunes polling and concurrency
type Options struct {
	// Timeout is the long polling timeout in seconds
	Timeout int

	// Concurrency bounds the number of messages handled at once
	Concurrency int
}

// Bot answers Telegram messages
type Bot struct {
	client  Client
	handler MessageHandler
	opts    Options
	logger  *zap.Logger
}

// New creates a new Telegram bot
func New(client Client, messageHandler MessageHandler, opts Options, logger *zap.Logger) *Bot {
	if opts.Timeout <= 0 {
		opts.Timeout = 60
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bot{
		client:  client,
		handler: messageHandler,
		opts:    opts,
		logger:  logger,
	}
}

// Run polls for updates until ctx is cancelled or the update channel closes.
// Updates already received when ctx is cancelled are still answered.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.opts.Timeout
	updates := b.client.GetUpdatesChan(u)

	b.logger.Info("starting telegram polling",
		zap.Int("timeout", b.opts.Timeout),
		zap.Int("concurrency", b.opts.Concurrency),
	)

	// replies outlive the polling context so shutdown does not drop them
	handleCtx := context.WithoutCancel(ctx)

	sem := make(chan struct{}, b.opts.Concurrency)
	var wg sync.WaitGroup
	defer wg.Wait()

	dispatch := func(update tgbotapi.Update) {
		msg := update.Message
		if msg == nil || msg.Text == "" || msg.Chat == nil {
			return
		}

		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			msgCtx, cancel := context.WithTimeout(handleCtx, handleTimeout)
			defer cancel()
			b.handleMessage(msgCtx, msg)
		}()
	}

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			b.drain(updates, dispatch)
			b.logger.Info("telegram polling stopped")
			return nil

		case update, ok := <-updates:
			if !ok {
				b.logger.Info("telegram update channel closed")
				return nil
			}
			dispatch(update)
		}
	}
}

// drain dispatches the updates already buffered in the channel
func (b *Bot) drain(updates tgbotapi.UpdatesChannel, dispatch func(tgbotapi.Update)) {
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.logger.Debug("answering buffered update", zap.Int("update_id", update.UpdateID))
			dispatch(update)
		default:
			return
		}
	}
}

// handleMessage answers a single message
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	in := handler.Message{
		ID:     strconv.Itoa(msg.MessageID),
		ChatID: msg.Chat.ID,
		Text:   msg.Text,
	}
	if msg.From != nil {
		in.From = msg.From.FirstName
	}

	reply, err := b.handler.Handle(ctx, in)
	if err != nil {
		b.logger.Error("failed to handle message",
			zap.Int64("chat_id", in.ChatID),
			zap.String("message_id", in.ID),
			zap.Error(err),
		)
		return
	}
	if reply == nil {
		return
	}

	if err := b.send(msg, reply); err != nil {
		b.logger.Error("failed to send reply",
			zap.Int64("chat_id", in.ChatID),
			zap.String("message_id", in.ID),
			zap.Error(err),
		)
	}
}

// send delivers a reply. Outside private chats the reply quotes the original message.
func (b *Bot) send(msg *tgbotapi.Message, reply *handler.Reply) error {
	out := tgbotapi.NewMessage(msg.Chat.ID, reply.Text)
	out.ParseMode = reply.ParseMode
	if !msg.Chat.IsPrivate() {
		out.ReplyToMessageID = msg.MessageID
	}

	if _, err := b.client.Send(out); err != nil {
		return fmt.Errorf("send to chat %d: %w", msg.Chat.ID, err)
	}
	return nil
}

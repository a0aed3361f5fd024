package handler

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/aescanero/dago-node-calculator/internal/calc"
	"github.com/aescanero/dago-node-calculator/internal/eval/template"
	"github.com/aescanero/dago-node-calculator/internal/router"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Message is an inbound chat message
type Message struct {
	ID     string `json:"id,omitempty"`
	ChatID int64  `json:"chat_id"`
	From   string `json:"from,omitempty"`
	Text   string `json:"text"`
}

// Reply is the text to send back to the originating chat
type Reply struct {
	Text      string        `json:"text"`
	ParseMode string        `json:"parse_mode,omitempty"`
	Action    router.Action `json:"action"`
	Result    *calc.Result  `json:"result,omitempty"`
}

// Handler routes messages and builds replies
type Handler struct {
	evaluator *calc.Evaluator
	router    *router.Router
	engine    *template.Engine
	templates Templates
	maxLength int
	logger    *zap.Logger
}

// New creates a new handler. maxLength <= 0 disables the length check.
func New(
	evaluator *calc.Evaluator,
	routerInstance *router.Router,
	engine *template.Engine,
	templates Templates,
	maxLength int,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		evaluator: evaluator,
		router:    routerInstance,
		engine:    engine,
		templates: templates,
		maxLength: maxLength,
		logger:    logger,
	}
}

// ValidateTemplates checks that every reply template parses
func (h *Handler) ValidateTemplates() error {
	for name, tmpl := range map[string]string{
		"start":    h.templates.Start,
		"help":     h.templates.Help,
		"result":   h.templates.Result,
		"failure":  h.templates.Failure,
		"too_long": h.templates.TooLong,
	} {
		if err := h.engine.ValidateTemplate(tmpl); err != nil {
			return fmt.Errorf("template %s: %w", name, err)
		}
	}
	return nil
}

// Handle processes a message. It returns a nil reply for ignored messages.
func (h *Handler) Handle(ctx context.Context, msg Message) (*Reply, error) {
	h.logger.Info("received message",
		zap.String("message_id", msg.ID),
		zap.Int64("chat_id", msg.ChatID),
		zap.String("from", msg.From),
		zap.String("text", msg.Text),
	)

	decision, err := h.router.Route(ctx, router.Message{
		ChatID: msg.ChatID,
		From:   msg.From,
		Text:   msg.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("routing failed: %w", err)
	}

	switch decision.Action {
	case router.ActionStart:
		// the start text is Markdown, so the sender's name must not open entities
		return h.render(decision.Action, h.templates.Start, ParseModeMarkdown, map[string]interface{}{
			"from": tgbotapi.EscapeText(ParseModeMarkdown, msg.From),
		})

	case router.ActionHelp:
		return h.render(decision.Action, h.templates.Help, "", map[string]interface{}{})

	case router.ActionCalculate:
		return h.calculate(msg)

	case router.ActionIgnore:
		h.logger.Debug("ignoring message",
			zap.String("message_id", msg.ID),
			zap.String("reasoning", decision.Reasoning),
		)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown action: %s", decision.Action)
	}
}

// calculate evaluates the message text and renders the outcome
func (h *Handler) calculate(msg Message) (*Reply, error) {
	if h.maxLength > 0 && utf8.RuneCountInString(msg.Text) > h.maxLength {
		h.logger.Warn("expression too long",
			zap.String("message_id", msg.ID),
			zap.Int("length", utf8.RuneCountInString(msg.Text)),
			zap.Int("max_length", h.maxLength),
		)
		return h.render(router.ActionCalculate, h.templates.TooLong, "", map[string]interface{}{
			"max": h.maxLength,
		})
	}

	result := h.evaluator.Evaluate(msg.Text)

	var reply *Reply
	var err error
	if result.OK {
		reply, err = h.render(router.ActionCalculate, h.templates.Result, "", map[string]interface{}{
			"value": result.Value,
		})
	} else {
		reply, err = h.render(router.ActionCalculate, h.templates.Failure, "", map[string]interface{}{
			"message": result.Message,
			"reason":  string(result.Reason),
		})
	}
	if err != nil {
		return nil, err
	}

	reply.Result = &result
	return reply, nil
}

func (h *Handler) render(action router.Action, tmpl, parseMode string, data map[string]interface{}) (*Reply, error) {
	text, err := h.engine.Render(tmpl, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s reply: %w", action, err)
	}

	return &Reply{
		Text:      text,
		ParseMode: parseMode,
		Action:    action,
	}, nil
}

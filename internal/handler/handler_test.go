package handler

import (
	"context"
	"strings"
	"testing"

	"github.com/aescanero/dago-node-calculator/internal/calc"
	"github.com/aescanero/dago-node-calculator/internal/eval/template"
	"github.com/aescanero/dago-node-calculator/internal/router"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newHandler(t *testing.T, maxLength int, logger *zap.Logger) *Handler {
	t.Helper()
	r, err := router.NewRouter(router.DefaultRules(), router.ActionCalculate, logger)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return New(calc.NewEvaluator(logger), r, template.NewEngine(), DefaultTemplates(), maxLength, logger)
}

func TestHandleCalculate(t *testing.T) {
	h := newHandler(t, 1000, zap.NewNop())

	tests := []struct {
		text string
		want *Reply
	}{
		{"2 + 2", &Reply{
			Text:   "The result is: 4",
			Action: router.ActionCalculate,
			Result: &calc.Result{OK: true, Value: "4"},
		}},
		{"100 / 2.5", &Reply{
			Text:   "The result is: 40.0",
			Action: router.ActionCalculate,
			Result: &calc.Result{OK: true, Value: "40.0"},
		}},
		{"10 / 0", &Reply{
			Text:   calc.MessageDivisionByZero,
			Action: router.ActionCalculate,
			Result: &calc.Result{Reason: calc.ReasonDivisionByZero, Message: calc.MessageDivisionByZero},
		}},
		{"2 + a", &Reply{
			Text:   calc.MessageInvalidChars,
			Action: router.ActionCalculate,
			Result: &calc.Result{Reason: calc.ReasonInvalidChars, Message: calc.MessageInvalidChars},
		}},
		{"2 + ", &Reply{
			Text:   calc.MessageGeneric,
			Action: router.ActionCalculate,
			Result: &calc.Result{Reason: calc.ReasonGeneric, Message: calc.MessageGeneric},
		}},
	}

	for _, tt := range tests {
		got, err := h.Handle(context.Background(), Message{ID: "1", ChatID: 7, From: "Ada", Text: tt.text})
		if err != nil {
			t.Fatalf("Handle(%q): %v", tt.text, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Handle(%q) mismatch (-want +got):\n%s", tt.text, diff)
		}
	}
}

func TestHandleCommands(t *testing.T) {
	h := newHandler(t, 1000, zap.NewNop())
	ctx := context.Background()

	start, err := h.Handle(ctx, Message{ChatID: 1, From: "Ada", Text: "/start"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if start.Action != router.ActionStart || start.ParseMode != ParseModeMarkdown {
		t.Errorf("unexpected start reply: %+v", start)
	}
	if !strings.HasPrefix(start.Text, "👋 Hello, Ada!") {
		t.Errorf("start text = %q", start.Text)
	}

	anonymous, err := h.Handle(ctx, Message{ChatID: 1, Text: "/start"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.Contains(anonymous.Text, "Hello, there!") {
		t.Errorf("anonymous start text = %q", anonymous.Text)
	}

	marked, err := h.Handle(ctx, Message{ChatID: 1, From: "snake_case*star", Text: "/start"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.HasPrefix(marked.Text, `👋 Hello, snake\_case\*star!`) {
		t.Errorf("markdown in name not escaped: %q", marked.Text)
	}

	help, err := h.Handle(ctx, Message{ChatID: 1, Text: "/help"})
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	if help.Action != router.ActionHelp || help.ParseMode != "" || help.Result != nil {
		t.Errorf("unexpected help reply: %+v", help)
	}
	if !strings.Contains(help.Text, "`/` : Division") {
		t.Errorf("help text = %q", help.Text)
	}

	for _, text := range []string{"/unknown", ""} {
		reply, err := h.Handle(ctx, Message{ChatID: 1, Text: text})
		if err != nil {
			t.Fatalf("Handle(%q): %v", text, err)
		}
		if reply != nil {
			t.Errorf("Handle(%q) = %+v, want no reply", text, reply)
		}
	}

	// a leading slash without a command name is an expression
	slash, err := h.Handle(ctx, Message{ChatID: 1, Text: "/2+3"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if slash == nil || slash.Text != calc.MessageGeneric {
		t.Errorf("unexpected reply for /2+3: %+v", slash)
	}
}

func TestHandleTooLong(t *testing.T) {
	h := newHandler(t, 10, zap.NewNop())

	reply, err := h.Handle(context.Background(), Message{Text: strings.Repeat("1+", 6) + "1"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply.Text != "Expression is too long (maximum 10 characters)" {
		t.Errorf("reply text = %q", reply.Text)
	}
	if reply.Result != nil {
		t.Error("expression must not be evaluated")
	}

	// the bound counts characters, not bytes
	unicode := newHandler(t, 3, zap.NewNop())
	reply, err = unicode.Handle(context.Background(), Message{Text: "１＋１"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if reply.Result == nil || reply.Result.Reason != calc.ReasonInvalidChars {
		t.Errorf("expected invalid characters, got %+v", reply)
	}
}

func TestHandleLogsReceivedMessage(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := newHandler(t, 0, zap.New(core))

	if _, err := h.Handle(context.Background(), Message{ID: "m1", ChatID: 9, From: "Ada", Text: "1 +"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	received := logs.FilterMessage("received message").All()
	if len(received) != 1 {
		t.Fatalf("expected one received message log, got %d", len(received))
	}
	if got := received[0].ContextMap()["text"]; got != "1 +" {
		t.Errorf("text field = %v", got)
	}
	if logs.FilterMessage("failed to evaluate expression").Len() != 1 {
		t.Error("expected evaluation failure to be logged")
	}
}

func TestHandleTemplateError(t *testing.T) {
	r, err := router.NewRouter(router.DefaultRules(), router.ActionCalculate, nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	templates := DefaultTemplates()
	templates.Result = "{{#if value}}"
	h := New(calc.NewEvaluator(nil), r, template.NewEngine(), templates, 0, nil)

	if err := h.ValidateTemplates(); err == nil {
		t.Error("expected ValidateTemplates error")
	}
	if _, err := h.Handle(context.Background(), Message{Text: "1 + 1"}); err == nil {
		t.Error("expected render error")
	}
}

func TestDefaultTemplatesValid(t *testing.T) {
	h := newHandler(t, 0, zap.NewNop())
	if err := h.ValidateTemplates(); err != nil {
		t.Fatalf("ValidateTemplates: %v", err)
	}
}

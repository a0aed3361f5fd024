package cel

import (
	"context"
	"testing"
)

func messageVars(text, command string, isCommand bool) map[string]interface{} {
	return map[string]interface{}{
		MessageVar: map[string]interface{}{
			"text":       text,
			"command":    command,
			"args":       "",
			"is_command": isCommand,
			"chat_id":    int64(42),
			"from":       "Ada",
		},
	}
}

func TestEvaluate(t *testing.T) {
	e := NewEvaluator()
	ctx := context.Background()

	tests := []struct {
		expr string
		vars map[string]interface{}
		want bool
	}{
		{"message.is_command && message.command == 'help'", messageVars("/help", "help", true), true},
		{"message.is_command && message.command == 'help'", messageVars("2 + 2", "", false), false},
		{"size(message.text) == 0", messageVars("", "", false), true},
		{"message.chat_id == 42", messageVars("1", "", false), true},
		{"message.from.startsWith('A')", messageVars("1", "", false), true},
	}

	for _, tt := range tests {
		got, err := e.Evaluate(ctx, tt.expr, tt.vars)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", tt.expr, err)
		}
		matched, ok := got.(bool)
		if !ok {
			t.Fatalf("Evaluate(%q) returned %T, want bool", tt.expr, got)
		}
		if matched != tt.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, matched, tt.want)
		}
	}
}

func TestEvaluateCompileError(t *testing.T) {
	e := NewEvaluator()
	if _, err := e.Evaluate(context.Background(), "message.text ==", messageVars("", "", false)); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestEvaluateCachesPrograms(t *testing.T) {
	e := NewEvaluator()
	vars := messageVars("/start", "start", true)

	for i := 0; i < 3; i++ {
		if _, err := e.Evaluate(context.Background(), "message.command == 'start'", vars); err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
	}
	if len(e.cache) != 1 {
		t.Fatalf("cache size = %d, want 1", len(e.cache))
	}
}

func TestValidateExpression(t *testing.T) {
	e := NewEvaluator()

	for _, expr := range []string{"message.is_command", "message.command == 'help'", "true"} {
		if err := e.ValidateExpression(expr); err != nil {
			t.Errorf("ValidateExpression(%q): %v", expr, err)
		}
	}
	for _, expr := range []string{"1 + 2", "'text'", "message.command =="} {
		if err := e.ValidateExpression(expr); err == nil {
			t.Errorf("ValidateExpression(%q): expected error", expr)
		}
	}
}

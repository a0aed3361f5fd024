package router

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/aescanero/dago-node-calculator/internal/eval/cel"
	"go.uber.org/zap"
)

// Action is what the bot does with a message
type Action string

const (
	// ActionStart replies with the welcome text
	ActionStart Action = "start"

	// ActionHelp replies with usage instructions
	ActionHelp Action = "help"

	// ActionCalculate evaluates the message as an arithmetic expression
	ActionCalculate Action = "calculate"

	// ActionIgnore produces no reply
	ActionIgnore Action = "ignore"
)

// Valid reports whether a is a known action
func (a Action) Valid() bool {
	switch a {
	case ActionStart, ActionHelp, ActionCalculate, ActionIgnore:
		return true
	default:
		return false
	}
}

// Message is the routing view of an inbound chat message
type Message struct {
	ChatID int64
	From   string
	Text   string
}

// Rule represents a CEL-based routing rule
type Rule struct {
	Condition string `json:"condition"`
	Action    Action `json:"action"`
}

// Decision represents the result of routing a message
type Decision struct {
	Action    Action `json:"action"`
	Command   string `json:"command,omitempty"`
	Args      string `json:"args,omitempty"`
	Reasoning string `json:"reasoning"`
	PathTaken string `json:"path_taken"` // "rule", "fallback"
}

// Router handles routing decisions
type Router struct {
	celEvaluator *cel.Evaluator
	rules        []Rule
	fallback     Action
	logger       *zap.Logger
}

// DefaultRules returns the standard command handling rules
func DefaultRules() []Rule {
	return []Rule{
		{Condition: `message.is_command && message.command == "start"`, Action: ActionStart},
		{Condition: `message.is_command && message.command == "help"`, Action: ActionHelp},
		{Condition: `message.is_command == true`, Action: ActionIgnore},
		{Condition: `size(message.text) == 0`, Action: ActionIgnore},
	}
}

// NewRouter creates a new router after validating its rules
func NewRouter(rules []Rule, fallback Action, logger *zap.Logger) (*Router, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Router{
		celEvaluator: cel.NewEvaluator(),
		rules:        rules,
		fallback:     fallback,
		logger:       logger,
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid routing rules: %w", err)
	}

	return r, nil
}

// Validate validates the routing configuration
func (r *Router) Validate() error {
	if !r.fallback.Valid() {
		return fmt.Errorf("unknown fallback action: %q", r.fallback)
	}

	for i, rule := range r.rules {
		if rule.Condition == "" {
			return fmt.Errorf("rule %d: condition is required", i)
		}
		if !rule.Action.Valid() {
			return fmt.Errorf("rule %d: unknown action %q", i, rule.Action)
		}
		if err := r.celEvaluator.ValidateExpression(rule.Condition); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}

	return nil
}

// Route classifies a message
func (r *Router) Route(ctx context.Context, msg Message) (*Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	command, args, isCommand := ParseCommand(msg.Text)

	decision := r.evaluateRules(ctx, msg, command, args, isCommand)
	decision.Command = command
	decision.Args = args

	r.logger.Debug("routing decision",
		zap.Int64("chat_id", msg.ChatID),
		zap.String("action", string(decision.Action)),
		zap.String("path", decision.PathTaken),
		zap.String("reasoning", decision.Reasoning),
	)

	return decision, nil
}

// ParseCommand splits a "/command@bot args" message.
// Only a slash followed by a name of letters, digits and underscores is a
// command; plain text and arithmetic such as "/2+3" return isCommand false.
func ParseCommand(text string) (command, args string, isCommand bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest := text[1:], ""
	if i := strings.IndexFunc(head, unicode.IsSpace); i >= 0 {
		head, rest = head[:i], head[i:]
	}
	if name, _, found := strings.Cut(head, "@"); found {
		head = name
	}
	if !isCommandName(head) {
		return "", "", false
	}

	return strings.ToLower(head), strings.TrimSpace(rest), true
}

func isCommandName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9') {
			return false
		}
	}
	return true
}

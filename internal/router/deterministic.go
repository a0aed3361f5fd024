package router

import (
	"context"
	"fmt"

	"github.com/aescanero/dago-node-calculator/internal/eval/cel"
	"go.uber.org/zap"
)

// evaluateRules walks the rules in order and returns the first match, or the fallback
func (r *Router) evaluateRules(ctx context.Context, msg Message, command, args string, isCommand bool) *Decision {
	celVars := prepareMessageForCEL(msg, command, args, isCommand)

	for i, rule := range r.rules {
		r.logger.Debug("evaluating rule",
			zap.Int("rule_index", i),
			zap.String("condition", rule.Condition),
		)

		result, err := r.celEvaluator.Evaluate(ctx, rule.Condition, celVars)
		if err != nil {
			r.logger.Warn("rule evaluation error",
				zap.Int("rule_index", i),
				zap.String("condition", rule.Condition),
				zap.Error(err),
			)
			// Continue to next rule on error
			continue
		}

		matched, ok := result.(bool)
		if !ok {
			r.logger.Warn("rule condition did not return boolean",
				zap.Int("rule_index", i),
				zap.String("condition", rule.Condition),
				zap.Any("result", result),
			)
			continue
		}

		if matched {
			return &Decision{
				Action:    rule.Action,
				Reasoning: fmt.Sprintf("matched rule %d: %s", i, rule.Condition),
				PathTaken: "rule",
			}
		}
	}

	return &Decision{
		Action:    r.fallback,
		Reasoning: "no rules matched",
		PathTaken: "fallback",
	}
}

// prepareMessageForCEL converts a message to the map CEL conditions see
func prepareMessageForCEL(msg Message, command, args string, isCommand bool) map[string]interface{} {
	return map[string]interface{}{
		cel.MessageVar: map[string]interface{}{
			"text":       msg.Text,
			"command":    command,
			"args":       args,
			"is_command": isCommand,
			"chat_id":    msg.ChatID,
			"from":       msg.From,
		},
	}
}

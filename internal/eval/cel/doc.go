// Package cel provides a CEL (Common Expression Language) evaluator for message dispatch rules.
//
// CEL is a non-Turing complete expression language that provides fast, safe evaluation
// of the conditions that decide how an inbound chat message is handled. It is never
// used to evaluate user arithmetic; that is the job of package calc.
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	vars := map[string]interface{}{
//	    "message": map[string]interface{}{
//	        "text":       "/help",
//	        "is_command": true,
//	        "command":    "help",
//	    },
//	}
//
//	result, err := evaluator.Evaluate(ctx, "message.is_command && message.command == 'help'", vars)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	matched := result.(bool) // true
//
// Variables available to conditions:
//   - message.text - raw message text
//   - message.command - command name without the leading slash, "" for plain text
//   - message.args - text following the command
//   - message.is_command - whether the text starts with '/'
//   - message.chat_id - originating chat
//   - message.from - sender display name
package cel

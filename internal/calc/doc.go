// Package calc evaluates the arithmetic expressions users send to the bot.
//
// Input is checked against a fixed allow-list of characters before any parsing
// happens. Expressions that pass are parsed by a small recursive-descent parser
// (numbers, +, -, *, /, parentheses and unary signs) and evaluated with exact
// integer arithmetic. Division always produces a float.
//
// Example usage:
//
//	evaluator := calc.NewEvaluator(logger)
//
//	result := evaluator.Evaluate("100 / 2.5")
//	if !result.OK {
//	    fmt.Println(result.Message)
//	    return
//	}
//	fmt.Println(result.Value) // 40.0
//
// Failures are reported as one of three reasons:
//   - invalid_chars - a character outside 0-9 . + - * / ( ) and space
//   - division_by_zero - a divisor evaluated to zero
//   - generic_error - anything else; the cause is logged, never returned
package calc

// Package template provides a Handlebars template engine for rendering bot replies.
//
// The engine supports Handlebars syntax with a few helpers for formatting sender
// names and results.
//
// Example usage:
//
//	engine := template.NewEngine()
//
//	data := map[string]interface{}{
//	    "value": "40.0",
//	}
//
//	result, err := engine.Render("The result is: {{value}}", data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Output: The result is: 40.0
//
// Built-in helpers:
//   - uppercase - Convert string to uppercase
//   - lowercase - Convert string to lowercase
//   - trim - Trim whitespace from string
//   - default - Return default value if first arg is empty
//
// Replies are plain text, so templates should use triple braces for user
// supplied values ({{{from}}}) to avoid HTML escaping.
package template

package handler

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// ParseModeMarkdown asks the front end to render the reply as Markdown
const ParseModeMarkdown = tgbotapi.ModeMarkdown

// Templates holds the Handlebars templates used for replies.
//
// Start sees {{from}}, already escaped for Markdown; Result sees {{value}}; Failure sees {{message}} and
// {{reason}}; TooLong sees {{max}}.
type Templates struct {
	Start   string
	Help    string
	Result  string
	Failure string
	TooLong string
}

// DefaultTemplates returns the stock reply texts
func DefaultTemplates() Templates {
	return Templates{
		Start: "👋 Hello, {{{default from \"there\"}}}!\n\n" +
			"I am your friendly calculator bot. Just send me a simple math expression " +
			"and I'll solve it for you.\n\n" +
			"For example: `10 * 5` or `100 / 2.5`\n\n" +
			"I can handle addition (+), subtraction (-), multiplication (*), and division (/).",
		Help: "Need help? Here's how to use me:\n\n" +
			"1. Send a mathematical expression like `50 + 50`.\n" +
			"2. I will calculate the result and send it back to you.\n\n" +
			"Supported operations:\n" +
			"`+` : Addition\n" +
			"`-` : Subtraction\n" +
			"`*` : Multiplication\n" +
			"`/` : Division",
		Result:  "The result is: {{{value}}}",
		Failure: "{{{message}}}",
		TooLong: "Expression is too long (maximum {{max}} characters)",
	}
}

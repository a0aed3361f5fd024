// Package bot is the Telegram front end of the calculator.
//
// It long-polls the Bot API for updates, passes the text of every message to
// the shared message handler, and sends the reply back to the originating chat.
//
// Example usage:
//
//	api, err := tgbotapi.NewBotAPI(token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b := bot.New(api, h, bot.Options{Timeout: 60, Concurrency: 8}, logger)
//	if err := b.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Run returns once ctx is cancelled and every in-flight message has been answered.
package bot

// Package handler turns an inbound chat message into the bot's reply.
//
// It is shared by every front end (Telegram, Redis Streams): the front end
// extracts the text, calls Handle, and sends back whatever Reply it gets.
//
//	h := handler.New(evaluator, router, engine, handler.DefaultTemplates(), 1000, logger)
//	reply, err := h.Handle(ctx, handler.Message{ChatID: 42, From: "Ada", Text: "2 + 2"})
//	// reply.Text == "The result is: 4"
//
// A nil reply with a nil error means the message should be ignored.
package handler

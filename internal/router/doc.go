// Package router decides how an inbound chat message is handled.
//
// Every message is classified into one Action by evaluating an ordered list of
// CEL rules against the message. The first rule that evaluates to true wins;
// when none matches, the router falls back to a configured action.
//
// Example:
//
//	r, err := router.NewRouter(router.DefaultRules(), router.ActionCalculate, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	decision, err := r.Route(ctx, router.Message{Text: "/help", ChatID: 42})
//	// decision.Action == router.ActionHelp
//
// Default rules:
//
//	message.is_command && message.command == "start"  -> start
//	message.is_command && message.command == "help"   -> help
//	message.is_command                                 -> ignore
//	size(message.text) == 0                            -> ignore
//	(fallback)                                         -> calculate
package router

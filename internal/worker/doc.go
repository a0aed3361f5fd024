// Package worker implements the Redis Streams front end of the calculator bot.
//
// The worker reads chat messages from a request stream through a consumer group,
// hands each one to the message handler, and publishes the reply to a result
// stream. Failures are published to "<result stream>.errors".
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//
//	worker := worker.NewWorker(cfg, redisClient, h, store.NewRedisStore(redisClient, logger), logger)
//	if err := worker.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer worker.Stop()
//
// Request messages carry a JSON document in their "data" field:
//
//	{"request_id": "abc", "chat_id": 42, "from": "Ada", "text": "2 + 2"}
//
// Replies are stored by request id, so a request delivered twice is answered
// with the same reply instead of being evaluated again.
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(8082, logger)
//	healthServer.AddCheck("redis", worker.RedisCheck(redisClient))
//	healthServer.Start()
//	defer healthServer.Stop()
package worker

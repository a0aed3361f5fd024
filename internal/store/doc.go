// Package store persists bot replies in Redis so that redelivered stream
// requests are answered with the reply computed the first time.
//
//	s := store.NewRedisStore(redisClient, logger)
//	if err := s.Save(ctx, requestID, reply, time.Hour); err != nil {
//	    return err
//	}
//	stored, err := s.Load(ctx, requestID)
//	if errors.Is(err, store.ErrNotFound) {
//	    // not processed yet
//	}
package store

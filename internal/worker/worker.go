package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aescanero/dago-node-calculator/internal/config"
	"github.com/aescanero/dago-node-calculator/internal/handler"
	"github.com/aescanero/dago-node-calculator/internal/router"
	"github.com/aescanero/dago-node-calculator/internal/store"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// handleTimeout bounds handling, publishing and acknowledging one message
const handleTimeout = 30 * time.Second

// MessageHandler produces the reply for an inbound message
type MessageHandler interface {
	Handle(ctx context.Context, msg handler.Message) (*handler.Reply, error)
}

// ReplyStore remembers replies by request id
type ReplyStore interface {
	Save(ctx context.Context, requestID string, reply *handler.Reply, ttl time.Duration) error
	Load(ctx context.Context, requestID string) (*store.StoredReply, error)
}

// Worker consumes chat messages from a Redis stream and publishes replies
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	handler       MessageHandler
	replies       ReplyStore
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	streamKey     string
	consumerGroup string
	resultStream  string
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	messageHandler MessageHandler,
	replies ReplyStore,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		handler:       messageHandler,
		replies:       replies,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
	}
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting stream worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	w.wg.Add(1)
	go w.processWork()

	w.logger.Info("stream worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop stops reading and waits for the in-flight batch to be answered and acknowledged
func (w *Worker) Stop() error {
	w.logger.Info("stopping stream worker", zap.String("worker_id", w.id))

	w.cancel()
	w.wg.Wait()

	w.logger.Info("stream worker stopped", zap.String("worker_id", w.id))
	return nil
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP error means the group already exists, which is fine
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork processes work from the Redis stream.
// Entries this consumer read but never acknowledged are handled before new ones.
func (w *Worker) processWork() {
	defer w.wg.Done()
	w.logger.Info("starting work processing loop")

	readID := "0"
	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
			streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
				Group:    w.consumerGroup,
				Consumer: w.id,
				Streams:  []string{w.streamKey, readID},
				Count:    10,
				Block:    w.config.BlockTime,
			}).Result()

			if err != nil {
				if errors.Is(err, redis.Nil) || w.ctx.Err() != nil {
					continue
				}
				w.logger.Error("failed to read from stream",
					zap.Error(err),
				)
				w.sleep(w.ctx, time.Second)
				continue
			}

			handled := 0
			for _, stream := range streams {
				for _, message := range stream.Messages {
					w.handleMessage(message)
					handled++
					if readID != ">" {
						readID = message.ID
					}
				}
			}

			if readID != ">" && handled == 0 {
				w.logger.Debug("pending entries drained", zap.String("consumer", w.id))
				readID = ">"
			}
		}
	}
}

// StreamRequest is a chat message delivered through the request stream
type StreamRequest struct {
	RequestID string `json:"request_id"`
	ChatID    int64  `json:"chat_id"`
	From      string `json:"from,omitempty"`
	Text      string `json:"text"`
}

// StreamReply is published to the result stream for every answered request
type StreamReply struct {
	ReplyID   string        `json:"reply_id"`
	RequestID string        `json:"request_id"`
	ChatID    int64         `json:"chat_id"`
	Action    router.Action `json:"action"`
	Text      string        `json:"text"`
	ParseMode string        `json:"parse_mode,omitempty"`
	OK        bool          `json:"ok"`
	Value     string        `json:"value,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	Replayed  bool          `json:"replayed,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// handleMessage handles a single request message.
// It runs to completion even after Stop so the batch is not lost.
func (w *Worker) handleMessage(message redis.XMessage) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(w.ctx), handleTimeout)
	defer cancel()

	messageID := message.ID
	w.logger.Debug("processing request",
		zap.String("message_id", messageID),
	)

	request, err := parseRequest(message.Values)
	if err != nil {
		w.logger.Error("failed to parse request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.acknowledgeMessage(ctx, messageID)
		return
	}

	// redelivered messages keep their stream id, which makes it a stable request id
	if request.RequestID == "" {
		request.RequestID = messageID
	}

	if err := w.processRequest(ctx, request); err != nil {
		w.logger.Error("failed to process request",
			zap.String("message_id", messageID),
			zap.String("request_id", request.RequestID),
			zap.Error(err),
		)
		w.publishError(ctx, request, err)
	}

	w.acknowledgeMessage(ctx, messageID)
}

// parseRequest parses a request from a Redis message
func parseRequest(values map[string]interface{}) (*StreamRequest, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var request StreamRequest
	if err := json.Unmarshal([]byte(dataStr), &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}

	return &request, nil
}

// processRequest answers a request, replaying a stored reply when one exists
func (w *Worker) processRequest(ctx context.Context, request *StreamRequest) error {
	stored, err := w.replies.Load(ctx, request.RequestID)
	switch {
	case err == nil:
		w.logger.Info("replaying stored reply",
			zap.String("request_id", request.RequestID),
		)
		if stored.Ignored || stored.Reply == nil {
			return nil
		}
		return w.publishReply(ctx, request, stored.Reply, true)
	case !errors.Is(err, store.ErrNotFound):
		w.logger.Warn("failed to load stored reply",
			zap.String("request_id", request.RequestID),
			zap.Error(err),
		)
	}

	reply, err := w.handler.Handle(ctx, handler.Message{
		ID:     request.RequestID,
		ChatID: request.ChatID,
		From:   request.From,
		Text:   request.Text,
	})
	if err != nil {
		return fmt.Errorf("handling failed: %w", err)
	}

	if err := w.replies.Save(ctx, request.RequestID, reply, w.config.ResultTTL); err != nil {
		w.logger.Warn("failed to store reply",
			zap.String("request_id", request.RequestID),
			zap.Error(err),
		)
	}

	if reply == nil {
		return nil
	}

	if err := w.publishReply(ctx, request, reply, false); err != nil {
		return fmt.Errorf("failed to publish reply: %w", err)
	}

	return nil
}

// publishReply publishes a reply to the result stream
func (w *Worker) publishReply(ctx context.Context, request *StreamRequest, reply *handler.Reply, replayed bool) error {
	out := StreamReply{
		ReplyID:   uuid.NewString(),
		RequestID: request.RequestID,
		ChatID:    request.ChatID,
		Action:    reply.Action,
		Text:      reply.Text,
		ParseMode: reply.ParseMode,
		OK:        true,
		Replayed:  replayed,
		Timestamp: time.Now().UTC(),
	}
	if reply.Result != nil {
		out.OK = reply.Result.OK
		out.Value = reply.Result.Value
		out.Reason = string(reply.Result.Reason)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	if err := w.publish(ctx, w.resultStream, data); err != nil {
		return err
	}

	w.logger.Info("published reply",
		zap.String("request_id", request.RequestID),
		zap.Int64("chat_id", request.ChatID),
		zap.String("action", string(reply.Action)),
	)

	return nil
}

// publish adds data to a stream, retrying up to MaxRetries times
func (w *Worker) publish(ctx context.Context, stream string, data []byte) error {
	var err error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			w.logger.Warn("retrying publish",
				zap.String("stream", stream),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if !w.sleep(ctx, time.Duration(attempt)*100*time.Millisecond) {
				break
			}
		}

		err = w.redisClient.XAdd(ctx, &redis.XAddArgs{
			Stream: stream,
			Values: map[string]interface{}{
				"data": string(data),
			},
		}).Err()
		if err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to publish to stream %s: %w", stream, err)
}

// publishError publishes an error event
func (w *Worker) publishError(ctx context.Context, request *StreamRequest, err error) {
	errorEvent := map[string]interface{}{
		"request_id": request.RequestID,
		"chat_id":    request.ChatID,
		"error":      err.Error(),
		"timestamp":  time.Now().UTC(),
	}

	data, marshalErr := json.Marshal(errorEvent)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	// Publish error to a separate stream
	if publishErr := w.publish(ctx, w.resultStream+".errors", data); publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(ctx context.Context, messageID string) {
	err := w.redisClient.XAck(ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}

// sleep waits for d or until ctx is done. It reports whether the full duration elapsed.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

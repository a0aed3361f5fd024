package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/dago-node-calculator/internal/handler"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "calc:reply:"

// ErrNotFound is returned when no reply is stored for a request
var ErrNotFound = errors.New("reply not found")

// StoredReply is a reply together with the time it was produced
type StoredReply struct {
	RequestID string         `json:"request_id"`
	Reply     *handler.Reply `json:"reply,omitempty"`
	Ignored   bool           `json:"ignored,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// RedisStore implements reply storage on top of Redis string keys
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a new Redis reply store
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		logger: logger,
	}
}

func key(requestID string) string {
	return keyPrefix + requestID
}

// Save stores the reply for a request. A nil reply records an ignored message.
// ttl <= 0 keeps the key forever.
func (s *RedisStore) Save(ctx context.Context, requestID string, reply *handler.Reply, ttl time.Duration) error {
	if requestID == "" {
		return fmt.Errorf("request id is required")
	}

	stored := StoredReply{
		RequestID: requestID,
		Reply:     reply,
		Ignored:   reply == nil,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key(requestID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save reply: %w", err)
	}

	s.logger.Debug("stored reply",
		zap.String("request_id", requestID),
		zap.Duration("ttl", ttl),
	)

	return nil
}

// Load loads the reply stored for a request
func (s *RedisStore) Load(ctx context.Context, requestID string) (*StoredReply, error) {
	data, err := s.client.Get(ctx, key(requestID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("request %s: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load reply: %w", err)
	}

	var stored StoredReply
	if err := json.Unmarshal([]byte(data), &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reply: %w", err)
	}

	return &stored, nil
}

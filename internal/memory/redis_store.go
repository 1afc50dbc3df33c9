package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisHook is a PersistenceHook backed by Redis. Conversations are stored
// as JSON under "conv:{key}" with an optional TTL.
type RedisHook struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisHook creates a Redis-backed persistence hook. ttl of zero means
// no expiry.
func NewRedisHook(client *redis.Client, ttl time.Duration) *RedisHook {
	return &RedisHook{client: client, ttl: ttl}
}

func (h *RedisHook) redisKey(key string) string {
	return "conv:" + key
}

// Load fetches the conversation for key. A missing key returns (nil, nil).
func (h *RedisHook) Load(ctx context.Context, key string) (*Conversation, error) {
	data, err := h.client.Get(ctx, h.redisKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var conv Conversation
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return &conv, nil
}

// Save stores the conversation for key.
func (h *RedisHook) Save(ctx context.Context, key string, c *Conversation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	if err := h.client.Set(ctx, h.redisKey(key), data, h.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

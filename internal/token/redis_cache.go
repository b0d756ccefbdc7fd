package token

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/icebob/kantab-sub001/internal/logger"
)

// RedisCache shares verification results between replicas. All operations
// are best-effort with a short deadline; failures degrade to a cache miss.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

const redisOpTimeout = 200 * time.Millisecond

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		prefix: "tokenverify:",
	}
}

func (c *RedisCache) Get(key string) (*Claims, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("token cache read failed", map[string]any{"error": err.Error()})
		return nil, false
	}

	var claims Claims
	if err := json.Unmarshal([]byte(val), &claims); err != nil {
		return nil, false
	}
	return &claims, true
}

func (c *RedisCache) Set(key string, claims *Claims) {
	data, err := json.Marshal(claims)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		logger.Warn("token cache write failed", map[string]any{"error": err.Error()})
	}
}

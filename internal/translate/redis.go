package translate

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisKeyPrefix = "translation:"

// RedisCache is a Cache backed by Redis, for deployments that run several
// server instances and want them to share translation results.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zerolog.Logger
}

// NewRedisCache builds a cache on the given client. Entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl, log: logger}
}

// Get returns a cached value if present. Redis errors are logged and
// reported as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("translation cache get failed")
		}
		return "", false
	}
	return value, true
}

// Set stores a value with the configured TTL. Failures are logged only;
// the translation result is already in hand.
func (c *RedisCache) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, redisKeyPrefix+key, value, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("translation cache set failed")
	}
}

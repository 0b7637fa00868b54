package cache

import (
	"context"
	"errors"
	"time"

	"pickupstand/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisCache implements ports.Cache over go-redis. All errors are
// logged and reported back as misses/false so a Redis outage never
// takes a request down with it — the database constraints remain the
// source of truth for anything correctness-critical.
type RedisCache struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewRedisCache creates a cache backed by the given Redis address.
func NewRedisCache(addr string, logger zerolog.Logger) *RedisCache {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisCache{rdb: rdb, logger: logger}
}

// Ping checks connectivity at boot.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get returns the value and whether the key existed.
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Redis GET failed")
		return "", false, err
	}
	return val, true, nil
}

// Set stores a value with a TTL.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Redis SET failed")
		return err
	}
	return nil
}

// SetNX returns true when the key was newly set.
func (c *RedisCache) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Redis SETNX failed")
		return false, err
	}
	return ok, nil
}

// NoopCache is used when REDIS_ADDR is unset: every read misses and
// every SetNX claims the key so callers fall through to the database.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string) (string, bool, error) { return "", false, nil }
func (NoopCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return nil
}
func (NoopCache) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}

var _ ports.Cache = (*RedisCache)(nil)
var _ ports.Cache = NoopCache{}

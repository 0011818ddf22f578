package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "sales:chart:"

// RedisChartCache shares rendered charts between dashboard replicas.
type RedisChartCache struct {
	client    *redis.Client
	ttl       time.Duration
	prefix    string
	telemetry Telemetry
}

// RedisChartCacheOption customizes the Redis cache.
type RedisChartCacheOption func(*RedisChartCache)

// WithRedisPrefix overrides the key prefix.
func WithRedisPrefix(prefix string) RedisChartCacheOption {
	return func(c *RedisChartCache) {
		c.prefix = prefix
	}
}

// WithRedisTelemetry reports cache read/write failures.
func WithRedisTelemetry(t Telemetry) RedisChartCacheOption {
	return func(c *RedisChartCache) {
		c.telemetry = t
	}
}

// NewRedisChartCache wraps a go-redis client.
func NewRedisChartCache(client *redis.Client, ttl time.Duration, opts ...RedisChartCacheOption) *RedisChartCache {
	c := &RedisChartCache{client: client, ttl: ttl, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(c)
	}
	c.telemetry = normalizeTelemetry(c.telemetry)
	return c
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("dashboard: redis ping: %w", err)
	}
	return client, nil
}

// GetOrRender reads the chart from Redis or renders and stores it. Redis
// failures degrade to rendering without the cache.
func (c *RedisChartCache) GetOrRender(ctx context.Context, key string, render func() (string, error)) (string, error) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return render()
	}
	redisKey := c.prefix + key
	html, err := c.client.Get(ctx, redisKey).Result()
	if err == nil {
		return html, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.telemetry.Record(ctx, "dashboard.cache.read_error", map[string]any{"key": redisKey, "error": err.Error()})
	}
	html, err = render()
	if err != nil {
		return "", err
	}
	if err := c.client.Set(ctx, redisKey, html, c.ttl).Err(); err != nil {
		c.telemetry.Record(ctx, "dashboard.cache.write_error", map[string]any{"key": redisKey, "error": err.Error()})
	}
	return html, nil
}

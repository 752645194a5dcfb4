// Package goredis adapts a go-redis client to the conn.Conn capability set.
package goredis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Conn wraps a go-redis client. The wrapper is stateless; connection
// pooling, timeouts, and retries belong to the client.
type Conn struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// Option configures a Conn.
type Option func(*Conn)

// WithLogger attaches a logger; each primitive is logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Conn) {
		c.logger = logger
	}
}

// New creates a Conn over an already-configured go-redis client.
func New(client redis.UniversalClient, opts ...Option) *Conn {
	c := &Conn{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Append appends value to the list at listKey (RPUSH).
func (c *Conn) Append(ctx context.Context, listKey, value string) error {
	c.logger.Debug("rpush", zap.String("key", listKey), zap.String("value", value))
	return c.client.RPush(ctx, listKey, value).Err()
}

// SetField upserts one hash field (HSET).
func (c *Conn) SetField(ctx context.Context, key, field, value string) error {
	c.logger.Debug("hset", zap.String("key", key), zap.String("field", field), zap.String("value", value))
	return c.client.HSet(ctx, key, field, value).Err()
}

// GetField returns one hash field (HGET), reporting false when absent.
func (c *Conn) GetField(ctx context.Context, key, field string) (string, bool, error) {
	c.logger.Debug("hget", zap.String("key", key), zap.String("field", field))
	v, err := c.client.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// GetAllFields returns a snapshot of the hash at key (HGETALL).
func (c *Conn) GetAllFields(ctx context.Context, key string) (map[string]string, error) {
	c.logger.Debug("hgetall", zap.String("key", key))
	return c.client.HGetAll(ctx, key).Result()
}

// IncrBy atomically increments a hash field (HINCRBY).
func (c *Conn) IncrBy(ctx context.Context, key, field string, amount int64) (int64, error) {
	c.logger.Debug("hincrby", zap.String("key", key), zap.String("field", field), zap.Int64("amount", amount))
	return c.client.HIncrBy(ctx, key, field, amount).Result()
}

// Range returns list elements between start and stop inclusive (LRANGE).
func (c *Conn) Range(ctx context.Context, listKey string, start, stop int64) ([]string, error) {
	c.logger.Debug("lrange", zap.String("key", listKey), zap.Int64("start", start), zap.Int64("stop", stop))
	return c.client.LRange(ctx, listKey, start, stop).Result()
}

// Len returns the list length (LLEN).
func (c *Conn) Len(ctx context.Context, listKey string) (int64, error) {
	c.logger.Debug("llen", zap.String("key", listKey))
	return c.client.LLen(ctx, listKey).Result()
}

// Clear wipes the selected database (FLUSHDB).
func (c *Conn) Clear(ctx context.Context) error {
	c.logger.Debug("flushdb")
	return c.client.FlushDB(ctx).Err()
}

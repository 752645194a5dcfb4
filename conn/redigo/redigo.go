// Package redigo adapts a redigo connection pool to the conn.Conn
// capability set. It is interchangeable with the goredis adapter; both
// speak to the same key layout.
package redigo

import (
	"context"
	"errors"

	"github.com/gomodule/redigo/redis"
)

// Conn wraps a redigo pool. Each operation borrows a connection from the
// pool and returns it when done.
type Conn struct {
	pool *redis.Pool
}

// New creates a Conn over an already-configured redigo pool.
func New(pool *redis.Pool) *Conn {
	return &Conn{pool: pool}
}

func (c *Conn) do(ctx context.Context, cmd string, args ...any) (any, error) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return redis.DoContext(conn, ctx, cmd, args...)
}

// Append appends value to the list at listKey (RPUSH).
func (c *Conn) Append(ctx context.Context, listKey, value string) error {
	_, err := c.do(ctx, "RPUSH", listKey, value)
	return err
}

// SetField upserts one hash field (HSET).
func (c *Conn) SetField(ctx context.Context, key, field, value string) error {
	_, err := c.do(ctx, "HSET", key, field, value)
	return err
}

// GetField returns one hash field (HGET), reporting false when absent.
func (c *Conn) GetField(ctx context.Context, key, field string) (string, bool, error) {
	v, err := redis.String(c.do(ctx, "HGET", key, field))
	if errors.Is(err, redis.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// GetAllFields returns a snapshot of the hash at key (HGETALL).
func (c *Conn) GetAllFields(ctx context.Context, key string) (map[string]string, error) {
	fields, err := redis.StringMap(c.do(ctx, "HGETALL", key))
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// IncrBy atomically increments a hash field (HINCRBY).
func (c *Conn) IncrBy(ctx context.Context, key, field string, amount int64) (int64, error) {
	return redis.Int64(c.do(ctx, "HINCRBY", key, field, amount))
}

// Range returns list elements between start and stop inclusive (LRANGE).
func (c *Conn) Range(ctx context.Context, listKey string, start, stop int64) ([]string, error) {
	elements, err := redis.Strings(c.do(ctx, "LRANGE", listKey, start, stop))
	if err != nil {
		return nil, err
	}
	return elements, nil
}

// Len returns the list length (LLEN).
func (c *Conn) Len(ctx context.Context, listKey string) (int64, error) {
	return redis.Int64(c.do(ctx, "LLEN", listKey))
}

// Clear wipes the selected database (FLUSHDB).
func (c *Conn) Clear(ctx context.Context) error {
	_, err := c.do(ctx, "FLUSHDB")
	return err
}

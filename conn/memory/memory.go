// Package memory provides an in-process Conn with Redis-compatible list and
// hash semantics. It backs the unit tests and is handy for prototyping; real
// deployments use the goredis, redigo, or dynamo adapters.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// Conn is an in-memory store. The zero value is not usable; call New.
// All operations are safe for concurrent use.
type Conn struct {
	mu     sync.Mutex
	lists  map[string][]string
	hashes map[string]map[string]string
}

// New creates an empty in-memory store.
func New() *Conn {
	return &Conn{
		lists:  make(map[string][]string),
		hashes: make(map[string]map[string]string),
	}
}

// Append adds value to the tail of the list at listKey.
func (c *Conn) Append(_ context.Context, listKey, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[listKey] = append(c.lists[listKey], value)
	return nil
}

// SetField upserts one field of the hash at key.
func (c *Conn) SetField(_ context.Context, key, field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.hashes[key]
	if !ok {
		h = make(map[string]string)
		c.hashes[key] = h
	}
	h[field] = value
	return nil
}

// GetField returns one hash field, reporting false when absent.
func (c *Conn) GetField(_ context.Context, key, field string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.hashes[key][field]
	return v, ok, nil
}

// GetAllFields returns a copy of the hash at key.
func (c *Conn) GetAllFields(_ context.Context, key string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.hashes[key]))
	for k, v := range c.hashes[key] {
		out[k] = v
	}
	return out, nil
}

// IncrBy atomically adds amount to a numeric hash field, treating an absent
// field as zero, and returns the new value.
func (c *Conn) IncrBy(_ context.Context, key, field string, amount int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.hashes[key]
	if !ok {
		h = make(map[string]string)
		c.hashes[key] = h
	}
	var current int64
	if raw, ok := h[field]; ok {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("memory: field %s of %s is not an integer", field, key)
		}
		current = n
	}
	current += amount
	h[field] = strconv.FormatInt(current, 10)
	return current, nil
}

// Range returns list elements between start and stop inclusive, with
// Redis LRANGE semantics: negative indices count from the tail and
// out-of-range windows are clamped.
func (c *Conn) Range(_ context.Context, listKey string, start, stop int64) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.lists[listKey]
	length := int64(len(list))

	if start < 0 {
		start += length
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += length
	}
	if stop >= length {
		stop = length - 1
	}
	if start > stop || start >= length || stop < 0 {
		return nil, nil
	}

	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

// Len returns the element count of the list at listKey.
func (c *Conn) Len(_ context.Context, listKey string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.lists[listKey])), nil
}

// Clear wipes all keys.
func (c *Conn) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = make(map[string][]string)
	c.hashes = make(map[string]map[string]string)
	return nil
}

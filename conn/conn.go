// Package conn defines the store capability set the repository depends on.
//
// A Conn is a thin wrapper over a key-value client exposing ordered lists,
// hashes, and an atomic counter. The concrete adapters live in the
// subpackages goredis, redigo, dynamo, and memory; all of them are
// interchangeable behind this interface.
package conn

import "context"

// Conn is the set of store primitives the repository requires.
//
// Implementations must make each call individually atomic; no method is
// expected to participate in a larger transaction.
type Conn interface {
	// Append adds value to the tail of the ordered list at listKey,
	// creating the list if absent.
	Append(ctx context.Context, listKey, value string) error

	// SetField upserts one field of the hash at key.
	SetField(ctx context.Context, key, field, value string) error

	// GetField returns the value of one hash field. The second return is
	// false when the field (or hash) does not exist.
	GetField(ctx context.Context, key, field string) (string, bool, error)

	// GetAllFields returns a snapshot of every field in the hash at key.
	// A missing hash yields an empty map, not an error.
	GetAllFields(ctx context.Context, key string) (map[string]string, error)

	// IncrBy atomically adds amount to a numeric hash field and returns
	// the new value. An absent field behaves as zero.
	IncrBy(ctx context.Context, key, field string, amount int64) (int64, error)

	// Range returns list elements between start and stop inclusive.
	// Negative indices count from the tail, -1 being the last element.
	Range(ctx context.Context, listKey string, start, stop int64) ([]string, error)

	// Len returns the current element count of the list at listKey.
	Len(ctx context.Context, listKey string) (int64, error)

	// Clear wipes every key in the store. Administrative and test use only.
	Clear(ctx context.Context) error
}

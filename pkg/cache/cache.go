// Package cache provides a small content-addressed cache used to persist
// per-commit diff statistics between runs.
//
// Diff stats are the only expensive part of reading a repository, and they
// are immutable for a given commit hash, so entries never need invalidation.
// Two implementations exist: FileCache (entries stored under a directory)
// and NullCache (no-op, used for --no-cache and in tests).
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache stores opaque byte values under string keys.
// Implementations must be safe for sequential use by a single goroutine;
// commit-view never accesses the cache concurrently.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present (a miss is not an error).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrCacheMiss is returned by helpers that treat a miss as an error.
var ErrCacheMiss = errors.New("cache miss")

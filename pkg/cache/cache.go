package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = errors.New("cache: key not found")

// Cache defines the interface for caching services.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// NoopCache never stores anything. It stands in when no Redis is configured.
type NoopCache struct{}

// Get always misses.
func (NoopCache) Get(context.Context, string) (string, error) { return "", ErrMiss }

// Set discards the value.
func (NoopCache) Set(context.Context, string, string, time.Duration) error { return nil }

// Delete is a no-op.
func (NoopCache) Delete(context.Context, ...string) error { return nil }

// Close is a no-op.
func (NoopCache) Close() error { return nil }

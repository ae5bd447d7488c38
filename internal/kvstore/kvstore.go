// Package kvstore implements an optional persistence port used to warm-start
// custom asset mappings the asset mapper accumulates at runtime. A
// conforming deployment may stub this to an in-memory map; this package
// provides both that stub and a real Redis-backed adapter.
package kvstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when key does not exist.
var ErrNotFound = errors.New("kvstore: key not found")

// KVStore is a minimal byte-oriented key/value persistence port.
type KVStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// InMemory is a process-local stand-in for a real KV store, useful in
// tests and single-process deployments that don't need mappings to
// survive a restart.
type InMemory struct {
	mu    sync.RWMutex
	items map[string]inMemoryEntry
}

type inMemoryEntry struct {
	value   []byte
	expires time.Time // zero = no expiry
}

// NewInMemory creates an empty in-memory KV store.
func NewInMemory() *InMemory {
	return &InMemory{items: make(map[string]inMemoryEntry)}
}

func (m *InMemory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	m.items[key] = inMemoryEntry{value: value, expires: expires}
	return nil
}

func (m *InMemory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		return nil, ErrNotFound
	}
	return e.value, nil
}

func (m *InMemory) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Redis is a real KV store backed by a redis client, for deployments that
// want custom asset mappings to survive a restart.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing *redis.Client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	return n > 0, err
}

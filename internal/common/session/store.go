// Package session keeps the client-side state a browser would hold in local
// storage: the auth token, the cached user, the one-shot verification
// hand-off and the wizard draft.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"supplier-portal/internal/common/database"
	apperrors "supplier-portal/internal/common/errors"
)

// ErrNotFound is returned when a key is not set.
var ErrNotFound = errors.New("session: key not found")

// Store is a flat string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	// Take reads and removes key in one step.
	Take(ctx context.Context, key string) (string, error)
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryStore) Take(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	delete(m.data, key)
	return v, nil
}

// RedisStore namespaces keys under prefix so several CLI profiles or
// workers can share one Redis.
type RedisStore struct {
	client *database.RedisClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a Store backed by Redis. ttl 0 keeps keys forever.
func NewRedisStore(client *database.RedisClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(k string) string {
	return r.prefix + k
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key))
	if errors.Is(err, database.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", apperrors.NewSessionStoreError("get", err)
	}
	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl); err != nil {
		return apperrors.NewSessionStoreError("set", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.client.Del(ctx, full...); err != nil {
		return apperrors.NewSessionStoreError("delete", err)
	}
	return nil
}

func (r *RedisStore) Take(ctx context.Context, key string) (string, error) {
	v, err := r.client.GetDel(ctx, r.key(key))
	if errors.Is(err, database.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", apperrors.NewSessionStoreError("take", err)
	}
	return v, nil
}

// Package memory provides in-memory repository implementations used in
// development, tests and when no external store is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// defaultTTL applies when Set is called with a zero TTL.
const defaultTTL = 24 * time.Hour

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// CacheRepository implements outbound.CacheRepository in memory
type CacheRepository struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
	now   func() time.Time
}

// NewCacheRepository creates a new in-memory cache repository
func NewCacheRepository() *CacheRepository {
	return &CacheRepository{
		data: make(map[string]cacheItem),
		now:  time.Now,
	}
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mutex.RLock()
	item, exists := r.data[key]
	r.mutex.RUnlock()

	if !exists || r.now().After(item.expiresAt) {
		return nil, outbound.ErrCacheMiss
	}
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.data[key] = cacheItem{value: stored, expiresAt: r.now().Add(ttl)}
	return nil
}

// Delete removes keys from cache
func (r *CacheRepository) Delete(ctx context.Context, keys ...string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, key := range keys {
		delete(r.data, key)
	}
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	item, exists := r.data[key]
	return exists && !r.now().After(item.expiresAt), nil
}

// Purge drops expired entries and returns how many were removed.
func (r *CacheRepository) Purge() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()
	removed := 0
	for key, item := range r.data {
		if now.After(item.expiresAt) {
			delete(r.data, key)
			removed++
		}
	}
	return removed
}

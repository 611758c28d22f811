// Package redis provides Redis-backed repository implementations
package redis

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/cache"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// CacheRepository implements outbound.CacheRepository on Redis
type CacheRepository struct {
	client *cache.RedisClient
	prefix string
	logger *zap.Logger
}

// NewCacheRepository creates a cache repository. Keys are namespaced
// with prefix.
func NewCacheRepository(client *cache.RedisClient, prefix string, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{
		client: client,
		prefix: prefix,
		logger: logger.Named("cache-repository"),
	}
}

func (r *CacheRepository) key(k string) string {
	return r.prefix + k
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key))
	if err != nil {
		if !errors.Is(err, outbound.ErrCacheMiss) {
			r.logger.Debug("Cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, err
	}
	return data, nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl); err != nil {
		r.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Delete removes values from cache
func (r *CacheRepository) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.key(k)
	}
	if err := r.client.Delete(ctx, prefixed...); err != nil {
		r.logger.Error("Cache delete failed", zap.Strings("keys", keys), zap.Error(err))
		return err
	}
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	return r.client.Exists(ctx, r.key(key))
}

// Package cache provides the Redis connection shared by the cache and draft
// repositories.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("redis circuit breaker is open")

// RedisClient wraps a go-redis client with a circuit breaker so an
// unreachable Redis degrades to cache misses instead of slow requests.
type RedisClient struct {
	client  *redis.Client
	logger  *zap.Logger
	breaker *CircuitBreaker
}

// CircuitState represents circuit breaker states
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker opens after maxFailures consecutive failures and lets a
// probe through once timeout has passed.
type CircuitBreaker struct {
	maxFailures     int
	timeout         time.Duration
	failures        int
	lastFailureTime time.Time
	state           CircuitState
	mu              sync.Mutex
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(maxFailures int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{maxFailures: maxFailures, timeout: timeout}
}

// NewRedisClient connects to Redis. REDIS_URL wins over host and port.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*RedisClient, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.Database,
		}
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	rc := &RedisClient{
		client:  redis.NewClient(opts),
		logger:  logger.Named("redis"),
		breaker: NewCircuitBreaker(5, 30*time.Second),
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		_ = rc.client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	rc.logger.Info("Redis client initialized", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return rc, nil
}

// Client exposes the underlying client for pipelines.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

// Ping tests Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.do(func() error { return r.client.Ping(ctx).Err() })
}

// Get returns outbound.ErrCacheMiss for absent keys.
func (r *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := r.do(func() error {
		b, err := r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return outbound.ErrCacheMiss
		}
		out = b
		return err
	})
	return out, err
}

// Set stores value with a TTL. A zero TTL keeps the key forever.
func (r *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.do(func() error { return r.client.Set(ctx, key, value, ttl).Err() })
}

// Delete removes keys
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.do(func() error { return r.client.Del(ctx, keys...).Err() })
}

// Exists reports whether key is present
func (r *RedisClient) Exists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := r.do(func() error {
		var err error
		n, err = r.client.Exists(ctx, key).Result()
		return err
	})
	return n > 0, err
}

// SAdd adds members to a set
func (r *RedisClient) SAdd(ctx context.Context, key string, members ...string) error {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return r.do(func() error { return r.client.SAdd(ctx, key, args...).Err() })
}

// SMembers lists the members of a set
func (r *RedisClient) SMembers(ctx context.Context, key string) ([]string, error) {
	var members []string
	err := r.do(func() error {
		var err error
		members, err = r.client.SMembers(ctx, key).Result()
		return err
	})
	return members, err
}

// SRem removes members from a set
func (r *RedisClient) SRem(ctx context.Context, key string, members ...string) error {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return r.do(func() error { return r.client.SRem(ctx, key, args...).Err() })
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	r.logger.Info("Closing Redis client")
	return r.client.Close()
}

// do runs op behind the circuit breaker. Cache misses do not count as
// failures.
func (r *RedisClient) do(op func() error) error {
	if !r.breaker.AllowRequest() {
		return ErrCircuitOpen
	}
	err := op()
	switch {
	case err == nil, errors.Is(err, outbound.ErrCacheMiss):
		r.breaker.RecordSuccess()
	default:
		r.breaker.RecordFailure()
		r.logger.Warn("Redis command failed", zap.Error(err))
	}
	return err
}

// AllowRequest reports whether a call may go through.
func (cb *CircuitBreaker) AllowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if time.Since(cb.lastFailureTime) > cb.timeout {
			cb.state = CircuitHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess closes the breaker.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.state = CircuitClosed
}

// RecordFailure counts a failure and opens the breaker at the threshold.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	cb.lastFailureTime = time.Now()
	if cb.state == CircuitHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

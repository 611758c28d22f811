package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alchemorsel/cookbook/internal/infrastructure/http/render"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

// RateLimitRecorder counts rejected requests
type RateLimitRecorder interface {
	RecordRateLimited(route string)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter holds one token bucket per client address. Buckets
// idle for longer than the cleanup interval are dropped by Run.
type ClientRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	recorder RateLimitRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewClientRateLimiter allows perMinute requests per client with the given burst
func NewClientRateLimiter(perMinute, burst int, idle time.Duration, recorder RateLimitRecorder, logger *zap.Logger) *ClientRateLimiter {
	if perMinute <= 0 {
		perMinute = 20
	}
	if burst <= 0 {
		burst = 1
	}
	if idle <= 0 {
		idle = time.Minute
	}
	return &ClientRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		idle:     idle,
		recorder: recorder,
		logger:   logger.Named("rate-limit"),
		now:      time.Now,
	}
}

func (l *ClientRateLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

// Cleanup drops idle buckets and reports how many remain
func (l *ClientRateLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idle)
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
	return len(l.visitors)
}

// Run cleans up on every tick until stop is closed
func (l *ClientRateLimiter) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			remaining := l.Cleanup()
			l.logger.Debug("Rate limiter cleanup", zap.Int("clients", remaining))
		case <-stop:
			return
		}
	}
}

// Limit rejects requests over the client's budget with 429
func (l *ClientRateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := l.limiterFor(clientIP(r))
		if !limiter.Allow() {
			l.recorder.RecordRateLimited(routePattern(r))
			retryAfter := time.Duration(float64(time.Second) / float64(l.limit))
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+0.5)))
			render.Error(w, r, l.logger, errors.NewTooManyRequestsError())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP expects chi's RealIP to have already rewritten RemoteAddr
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

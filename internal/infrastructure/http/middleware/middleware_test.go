package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/alchemorsel/cookbook/pkg/errors"
)

type recorded struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []recorded
	limited  []string
}

func (f *fakeRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration, _ int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recorded{method, route, status})
}

func (f *fakeRecorder) RecordRateLimited(route string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limited = append(f.limited, route)
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{}`))
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	rec := &fakeRecorder{}
	r := chi.NewRouter()
	r.Use(Metrics(rec))
	r.Get("/api/recipes/{id}", okHandler)

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/recipes/"+id, nil))
	}

	require.Len(t, rec.requests, 2)
	for _, got := range rec.requests {
		assert.Equal(t, recorded{http.MethodGet, "/api/recipes/{id}", http.StatusOK}, got)
	}
}

func TestLogger_LevelsByStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := chi.NewRouter()
	r.Use(Logger(zap.New(core)))
	r.Get("/ok", okHandler)
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) })
	r.Get("/health", okHandler)

	for _, path := range []string{"/ok", "/boom", "/missing", "/health"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "Request completed", entries[0].Message)
	assert.Equal(t, "Server error", entries[1].Message)
	assert.Equal(t, "Client error", entries[2].Message)
	assert.Equal(t, "Probe", entries[3].Message)
	assert.Equal(t, int64(http.StatusBadGateway), entries[1].ContextMap()["status"])
}

func TestSecurityHeaders(t *testing.T) {
	h := Security(true)(http.HandlerFunc(okHandler))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))

	w = httptest.NewRecorder()
	Security(false)(http.HandlerFunc(okHandler)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestJSONOnly(t *testing.T) {
	h := JSONOnly(zaptest.NewLogger(t))(http.HandlerFunc(okHandler))

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"json body", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"form body", http.MethodPost, `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing content type", http.MethodPut, `{}`, "", http.StatusUnsupportedMediaType},
		{"no body", http.MethodPost, ``, "", http.StatusOK},
		{"read", http.MethodGet, ``, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/grocery", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestClientRateLimiter(t *testing.T) {
	rec := &fakeRecorder{}
	limiter := NewClientRateLimiter(60, 2, time.Minute, rec, zaptest.NewLogger(t))

	r := chi.NewRouter()
	r.With(limiter.Limit).Post("/api/recipes/generate", okHandler)

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/recipes/generate", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5001").Code)

	w := call("10.0.0.1:5002")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeTooManyRequests, body.Code)
	assert.Equal(t, []string{"/api/recipes/generate"}, rec.limited)

	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000").Code, "other clients have their own bucket")
}

func TestClientRateLimiter_Cleanup(t *testing.T) {
	limiter := NewClientRateLimiter(60, 1, time.Minute, &fakeRecorder{}, zaptest.NewLogger(t))
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.limiterFor("10.0.0.1")
	now = now.Add(30 * time.Second)
	limiter.limiterFor("10.0.0.2")
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, limiter.Cleanup())
	_, stillThere := limiter.visitors["10.0.0.2"]
	assert.True(t, stillThere)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		limiter.Run(stop)
		close(done)
	}()
	close(stop)
	<-done
}

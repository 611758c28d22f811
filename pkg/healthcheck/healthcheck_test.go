package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ok(context.Context) error { return nil }

func down(context.Context) error { return errors.New("connection refused") }

func TestHealthCheck_Check_NoCheckers(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())

	response := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.NotNil(t, response.Checks)
	assert.Empty(t, response.Checks)
}

func TestHealthCheck_Check_Aggregates(t *testing.T) {
	tests := []struct {
		name     string
		database PingFunc
		cache    PingFunc
		want     Status
	}{
		{"all up", ok, ok, StatusHealthy},
		{"cache down degrades", ok, down, StatusDegraded},
		{"database down is unhealthy", down, ok, StatusUnhealthy},
		{"both down", down, down, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New("1.0.0", zap.NewNop())
			hc.Register("database", NewPingChecker(tt.database, true))
			hc.Register("cache", NewPingChecker(tt.cache, false))

			response := hc.Check(context.Background())

			assert.Equal(t, tt.want, response.Status)
			require.Len(t, response.Checks, 2)
			assert.Equal(t, "cache", response.Checks[0].Name)
			assert.Equal(t, "database", response.Checks[1].Name)
		})
	}
}

func TestHealthCheck_Cache(t *testing.T) {
	var calls int32
	hc := New("1.0.0", zap.NewNop())
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	hc.now = func() time.Time { return now }
	hc.Register("database", NewPingChecker(func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, true))

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	now = now.Add(6 * time.Second)
	hc.Check(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHealthCheck_SetCacheTTL(t *testing.T) {
	var calls int32
	hc := New("1.0.0", zap.NewNop())
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	hc.now = func() time.Time { return now }
	hc.Register("database", NewPingChecker(func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, true))

	hc.SetCacheTTL(time.Minute)
	hc.Check(context.Background())
	now = now.Add(30 * time.Second)
	hc.Check(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	hc.SetCacheTTL(0)
	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHealthCheck_Handler(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("database", NewPingChecker(down, true))

	w := httptest.NewRecorder()
	hc.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	checks := body["checks"].([]interface{})
	require.Len(t, checks, 1)
	check := checks[0].(map[string]interface{})
	assert.Equal(t, "database", check["name"])
	assert.Equal(t, "connection refused", check["message"])
	assert.Contains(t, check, "duration_ms")
}

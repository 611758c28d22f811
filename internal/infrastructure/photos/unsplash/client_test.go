package unsplash

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/transport"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	apperrors "github.com/alchemorsel/cookbook/pkg/errors"
)

const searchBody = `{
  "total": 133,
  "total_pages": 7,
  "results": [
    {
      "id": "eOLpJytrbsQ",
      "description": "A bowl of ramen",
      "alt_description": "noodles in broth",
      "width": 4000,
      "height": 3000,
      "urls": {"raw": "https://images.unsplash.com/raw", "regular": "https://images.unsplash.com/regular", "thumb": "https://images.unsplash.com/thumb"},
      "user": {"name": "Kenji", "username": "kenji_eats", "links": {"html": "https://unsplash.com/@kenji_eats"}},
      "links": {"html": "https://unsplash.com/photos/eOLpJytrbsQ", "download_location": "https://api.unsplash.com/photos/eOLpJytrbsQ/download"}
    }
  ]
}`

func newTestClient(t *testing.T, url string) *Client {
	return NewClient(config.UnsplashConfig{
		AccessKey: "access-key",
		BaseURL:   url,
		Timeout:   5 * time.Second,
	}, zaptest.NewLogger(t)).WithRetryPolicy(transport.RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxElapsedTime:  time.Second,
	})
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/photos", r.URL.Path)
		assert.Equal(t, "Client-ID access-key", r.Header.Get("Authorization"))
		assert.Equal(t, "v1", r.Header.Get("Accept-Version"))
		assert.Equal(t, "mac & cheese", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "15", r.URL.Query().Get("per_page"))
		assert.Equal(t, "squarish", r.URL.Query().Get("orientation"))
		_, _ = w.Write([]byte(searchBody))
	}))
	defer server.Close()

	result, err := newTestClient(t, server.URL).Search(context.Background(), outbound.PhotoSearchQuery{
		Query: "mac & cheese", Page: 2, PerPage: 15, Orientation: "squarish",
	})
	require.NoError(t, err)

	assert.Equal(t, 133, result.Total)
	assert.Equal(t, 7, result.TotalPages)
	require.Len(t, result.Results, 1)
	photo := result.Results[0]
	assert.Equal(t, "eOLpJytrbsQ", photo.ID)
	assert.Equal(t, "noodles in broth", photo.AltDescription)
	assert.Equal(t, "https://images.unsplash.com/regular", photo.URLs.Regular)
	assert.Equal(t, "kenji_eats", photo.User.Username)
	assert.Equal(t, "https://unsplash.com/@kenji_eats", photo.User.Links.HTML)
	assert.Equal(t, "https://api.unsplash.com/photos/eOLpJytrbsQ/download", photo.Links.DownloadLocation)
}

func TestSearch_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"total":0,"total_pages":0,"results":null}`))
	}))
	defer server.Close()

	result, err := newTestClient(t, server.URL).Search(context.Background(), outbound.PhotoSearchQuery{Query: "kale"})
	require.NoError(t, err)
	assert.NotNil(t, result.Results)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSearch_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":["OAuth error: The access token is invalid"]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Search(context.Background(), outbound.PhotoSearchQuery{Query: "kale"})

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode())
	assert.Contains(t, appErr.Details, "OAuth error")
}

func TestSearch_NotConfigured(t *testing.T) {
	c := NewClient(config.UnsplashConfig{BaseURL: "https://api.unsplash.com"}, zaptest.NewLogger(t))

	_, err := c.Search(context.Background(), outbound.PhotoSearchQuery{Query: "kale"})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotConfigured))
}

func TestTrackDownload(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/photos/abc/download", r.URL.Path)
		assert.Equal(t, "Client-ID access-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"url":"https://images.unsplash.com/abc"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	require.NoError(t, c.TrackDownload(context.Background(), server.URL+"/photos/abc/download?ixid=xyz"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	err := c.TrackDownload(context.Background(), "https://attacker.example/photos/abc/download")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

// Package unsplash provides the stock photo search adapter
package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/transport"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

const serviceName = "photo search"

// Client implements outbound.PhotoSearcher
type Client struct {
	accessKey string
	baseURL   string
	client    *http.Client
	retry     transport.RetryPolicy
	logger    *zap.Logger
}

// NewClient creates the photo search client
func NewClient(cfg config.UnsplashConfig, logger *zap.Logger) *Client {
	retry := transport.DefaultRetryPolicy()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if cfg.AccessKey == "" {
		logger.Warn("Unsplash access key not set, photo search is disabled")
	}

	return &Client{
		accessKey: cfg.AccessKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    transport.NewHTTPClient("unsplash", timeout),
		retry:     retry,
		logger:    logger.Named("unsplash"),
	}
}

// WithRetryPolicy replaces the retry policy
func (c *Client) WithRetryPolicy(p transport.RetryPolicy) *Client {
	c.retry = p
	return c
}

// Search calls /search/photos
func (c *Client) Search(ctx context.Context, q outbound.PhotoSearchQuery) (*outbound.PhotoSearchResult, error) {
	if c.accessKey == "" {
		return nil, errors.NewNotConfiguredError(serviceName)
	}

	params := url.Values{}
	params.Set("query", q.Query)
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Orientation != "" {
		params.Set("orientation", q.Orientation)
	}
	endpoint := c.baseURL + "/search/photos?" + params.Encode()

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var result outbound.PhotoSearchResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("decode photo search: %w", err)
	}
	if result.Results == nil {
		result.Results = []outbound.Photo{}
	}

	c.logger.Debug("Photo search completed",
		zap.String("query", q.Query),
		zap.Int("total", result.Total),
		zap.String("rate_remaining", resp.Header.Get("X-Ratelimit-Remaining")),
	)
	return &result, nil
}

// TrackDownload pings the download location of a used photo. Only
// locations on the API host are accepted.
func (c *Client) TrackDownload(ctx context.Context, downloadLocation string) error {
	if c.accessKey == "" {
		return errors.NewNotConfiguredError(serviceName)
	}
	target, err := url.Parse(downloadLocation)
	if err != nil {
		return errors.NewValidationError("invalid download location")
	}
	base, err := url.Parse(c.baseURL)
	if err != nil || !strings.EqualFold(target.Host, base.Host) {
		return errors.NewValidationError("download location is not on the photo API host")
	}

	_, err = c.get(ctx, target.String())
	return err
}

func (c *Client) get(ctx context.Context, endpoint string) (*transport.Response, error) {
	return transport.Do(ctx, c.client, serviceName, c.retry,
		func(ctx context.Context) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "Client-ID "+c.accessKey)
			req.Header.Set("Accept-Version", "v1")
			return req, nil
		},
		func(err error, wait time.Duration) {
			c.logger.Warn("Retrying photo API call", zap.Error(err), zap.Duration("wait", wait))
		},
	)
}

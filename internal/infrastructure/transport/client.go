// Package transport holds the outbound HTTP plumbing shared by the API
// adapters: a traced client and a bounded retry loop for 429 and 5xx.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/alchemorsel/cookbook/pkg/errors"
)

const maxBodyBytes = 4 << 20

// NewHTTPClient returns a client whose spans are named after the service
func NewHTTPClient(service string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return fmt.Sprintf("%s %s %s", service, r.Method, r.URL.Path)
			}),
		),
	}
}

// RetryPolicy bounds the retry loop
type RetryPolicy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy allows three attempts within thirty seconds
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxElapsedTime:  30 * time.Second,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxElapsedTime > 0 {
		b.MaxElapsedTime = p.MaxElapsedTime
	}
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, attempts-1), ctx)
}

// Response is a fully read upstream answer
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Do sends the request built by newRequest until it gets an answer that
// is neither 429 nor 5xx, or the policy gives up. Network errors are
// retried too. A final non-2xx answer becomes an UpstreamError.
func Do(ctx context.Context, client *http.Client, service string, policy RetryPolicy, newRequest func(ctx context.Context) (*http.Request, error), notify func(error, time.Duration)) (*Response, error) {
	var resp *Response

	operation := func() error {
		req, err := newRequest(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}

		httpResp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("%s request failed: %w", service, err)
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("read %s response: %w", service, err)
		}

		if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
			resp = &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: body}
			return nil
		}

		upstream := errors.NewUpstreamError(service, httpResp.StatusCode, string(body))
		if Retryable(httpResp.StatusCode) {
			return upstream
		}
		return backoff.Permanent(upstream)
	}

	if err := backoff.RetryNotify(operation, policy.backOff(ctx), notify); err != nil {
		return nil, err
	}
	return resp, nil
}

// Retryable reports whether a status is worth another attempt
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

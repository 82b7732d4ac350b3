// Package transport is the shared HTTP plumbing for the external
// collaborators (transaction feed and the two historical-rate sources):
// bounded timeout per request plus a small retry budget with exponential
// backoff. Timeouts, 429 and 5xx responses are retried; other 4xx are
// surfaced immediately as permanent.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/sellerdesk/payout-reconciler/internal/domain"
)

const maxRetries = 3

type Client struct {
	http   *http.Client
	logger *zap.Logger
}

func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// GetJSON issues a GET and decodes the body into v. A *domain.StatusError
// is returned for non-2xx responses; a 404 comes back as a StatusError
// with Status 404 so callers can map it onto their own not-found sentinel.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err // transport-level failure, retryable
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			serr := &domain.StatusError{Status: resp.StatusCode, URL: url}
			if serr.Retryable() {
				return serr
			}
			return backoff.Permanent(serr)
		}

		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s: %w", url, err))
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying upstream call",
			zap.String("url", url),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	return backoff.RetryNotify(op, policy, notify)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var serr *domain.StatusError
	return errors.As(err, &serr) && serr.Status == http.StatusNotFound
}

// Package fetch performs the HTTP GETs used by the daemon and the update
// agent: schedule documents, wallpapers, digests and binaries.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	defaultTimeout    = 2 * time.Minute
	defaultRetries    = 2
	defaultRetryDelay = 3 * time.Second
)

// StatusError reports a non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected HTTP status %d", e.URL, e.Code)
}

// Client wraps an http.Client with a user agent and a retry policy.
type Client struct {
	http       *http.Client
	userAgent  string
	retries    uint64
	retryDelay time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithRetry sets how many times a failed request is retried and the initial
// delay between attempts. Zero retries disables retrying.
func WithRetry(retries uint64, delay time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.retryDelay = delay
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client identifying itself as userAgent.
func New(userAgent string, opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: defaultTimeout},
		userAgent:  userAgent,
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bytes downloads url into memory, reading at most limit bytes when limit > 0.
func (c *Client) Bytes(ctx context.Context, url string, limit int64) ([]byte, error) {
	var data []byte
	err := c.retry(ctx, url, func() error {
		body, err := c.get(ctx, url)
		if err != nil {
			return err
		}
		defer closeBody(body)

		var r io.Reader = body
		if limit > 0 {
			r = io.LimitReader(body, limit)
		}
		data, err = io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}
		return nil
	})
	return data, err
}

// ToFile downloads url into dst on fs, truncating dst before every attempt.
// A failed download removes dst.
func (c *Client) ToFile(ctx context.Context, fs afero.Fs, url, dst string) (err error) {
	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create destination file %q: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %q: %w", dst, cerr)
		}
		if err != nil {
			if rerr := fs.Remove(dst); rerr != nil && !os.IsNotExist(rerr) {
				log.WithError(rerr).Warnf("remove partial download %s", dst)
			}
		}
	}()

	return c.retry(ctx, url, func() error {
		if err := out.Truncate(0); err != nil {
			return backoff.Permanent(fmt.Errorf("truncate %q: %w", dst, err))
		}
		if _, err := out.Seek(0, io.SeekStart); err != nil {
			return backoff.Permanent(fmt.Errorf("seek %q: %w", dst, err))
		}
		body, err := c.get(ctx, url)
		if err != nil {
			return err
		}
		defer closeBody(body)
		if _, err := io.Copy(out, body); err != nil {
			return fmt.Errorf("write response body to %q: %w", dst, err)
		}
		return nil
	})
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		closeBody(resp.Body)
		statusErr := &StatusError{URL: url, Code: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(statusErr)
		}
		return nil, statusErr
	}
	return resp.Body, nil
}

func (c *Client) retry(ctx context.Context, url string, op func() error) error {
	if c.retries == 0 {
		return unwrapPermanent(op())
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryDelay
	notify := func(err error, wait time.Duration) {
		log.WithError(err).WithField("url", url).Warnf("download failed, retrying in %v", wait)
	}
	return backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(policy, c.retries), ctx), notify)
}

func unwrapPermanent(err error) error {
	if perm, ok := err.(*backoff.PermanentError); ok {
		return perm.Err
	}
	return err
}

func closeBody(body io.Closer) {
	if err := body.Close(); err != nil {
		log.WithError(err).Debug("close response body")
	}
}

// Package client talks to a running daily daemon over its control API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/five82/daily/internal/api"
)

// StatusFetcher is implemented by *Client; the console depends on it so it
// can be driven by fakes.
type StatusFetcher interface {
	FetchStatus(ctx context.Context) (*api.StatusResponse, error)
}

var _ StatusFetcher = (*Client)(nil)

// APIError is a non-2xx reply from the daemon.
type APIError struct {
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// Client is an HTTP client for one daemon.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	DefaultAddress   = "127.0.0.1:11452"
	defaultUserAgent = "dailyctl/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client for addr, a host:port or URL. A wildcard bind
// address such as 0.0.0.0 is dialled on loopback.
func NewClient(addr string) (*Client, error) {
	base, err := parseBaseURL(addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the daemon URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchStatus retrieves the daemon status.
func (c *Client) FetchStatus(ctx context.Context) (*api.StatusResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload api.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SetOverride asks the daemon to show imageURL for the given hours.
func (c *Client) SetOverride(ctx context.Context, imageURL string, hours int) (*api.OverrideResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	req := api.OverrideRequest{URL: imageURL, Hours: &hours}
	var payload api.OverrideResponse
	if err := c.do(ctx, http.MethodPost, "/api/temp_wallpaper", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Path: path, Status: resp.StatusCode}
		var reply api.OverrideResponse
		if json.NewDecoder(resp.Body).Decode(&reply) == nil {
			apiErr.Message = reply.Message
		}
		return apiErr
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		trimmed = DefaultAddress
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse daemon address %q: %w", addr, err)
	}
	if host, port, err := net.SplitHostPort(u.Host); err == nil {
		if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
			u.Host = net.JoinHostPort("127.0.0.1", port)
		}
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

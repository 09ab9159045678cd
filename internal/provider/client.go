// Package provider is the JSON-over-HTTP boundary to the downstream signal
// providers: the classifier, the source scanner and the claim verifiers.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/util"
	"github.com/ppiankov/credence/internal/worker"
)

const maxErrorBody = 512

// StatusError is returned when a provider answers with a non-2xx status
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// ErrMalformed marks a 2xx response whose payload could not be decoded or validated
var ErrMalformed = errors.New("malformed response")

// Client posts JSON to provider endpoints
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimiter throttles calls per downstream host
func WithLimiter(l *worker.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client resolving relative endpoints against baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "credence",
		maxBytes:   2_000_000,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a client with proxy and rate limiting from cfg
func NewClientFromConfig(cfg *model.Config) *Client {
	transport := util.NewTransport(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	c := NewClient(cfg.Endpoints.BaseURL,
		WithHTTPClient(&http.Client{Transport: transport}),
		WithUserAgent(cfg.HTTP.UserAgent),
		WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)),
	)
	if cfg.HTTP.MaxBodyBytes > 0 {
		c.maxBytes = cfg.HTTP.MaxBodyBytes
	}
	return c
}

// Resolve turns an endpoint path into an absolute URL
func (c *Client) Resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

// PostJSON posts in to endpoint and decodes a 2xx response into out.
// A non-positive timeout leaves the deadline to ctx.
func (c *Client) PostJSON(ctx context.Context, endpoint string, timeout time.Duration, in, out any) error {
	target := c.Resolve(endpoint)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, target); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w from %s: %v", ErrMalformed, endpoint, err)
	}
	return nil
}

// Malformed wraps a validation failure of a decoded payload
func Malformed(endpoint string, err error) error {
	return fmt.Errorf("%w from %s: %v", ErrMalformed, endpoint, err)
}

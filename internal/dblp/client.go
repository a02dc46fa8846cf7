// Package dblp is a client for the DBLP publication search API.
package dblp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the DBLP API base URL.
	BaseURL = "https://dblp.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit caps requests per second per DBLP crawling guidance.
	RateLimit = 2.0

	// DefaultMaxElapsed bounds the total time spent retrying one call.
	DefaultMaxElapsed = 30 * time.Second

	retryInitialInterval = 500 * time.Millisecond
	retryMaxInterval     = 5 * time.Second
)

// Common errors returned by the DBLP client.
var (
	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with DBLP")

	// ErrInvalidResponse indicates a payload that did not decode.
	ErrInvalidResponse = errors.New("invalid response from DBLP")
)

// APIError represents a non-2xx response from the DBLP API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("DBLP API error (status %d): %s", e.StatusCode, e.Message)
}

// Client is a rate-limited HTTP client for the DBLP search API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	maxElapsed time.Duration
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithMaxElapsed caps the total retry time per call.
func WithMaxElapsed(d time.Duration) ClientOption {
	return func(c *Client) {
		c.maxElapsed = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new DBLP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		maxElapsed: DefaultMaxElapsed,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newBackoff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = c.maxElapsed
	return backoff.WithContext(b, ctx)
}

// Search queries the publication search API with a free-text query and
// returns the candidate hits. Zero hits is (nil, nil): no match is an
// ordinary outcome, not an error. Network errors and 5xx responses are
// retried with backoff; 4xx responses and undecodable payloads yield no
// candidates.
func (c *Client) Search(ctx context.Context, query string) ([]Hit, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	searchURL := fmt.Sprintf("%s/search/publ/api?%s", c.baseURL, params.Encode())

	c.logger.Debug("querying DBLP", zap.String("query", query))

	body, err := backoff.RetryWithData(func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Debug("DBLP request failed, will retry", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			c.logger.Debug("DBLP server error, will retry", zap.Int("status", resp.StatusCode))
			return nil, &APIError{StatusCode: resp.StatusCode, Message: "server error"}
		}
		if resp.StatusCode >= 400 {
			return nil, backoff.Permanent(&APIError{StatusCode: resp.StatusCode, Message: "request rejected"})
		}

		return io.ReadAll(resp.Body)
	}, c.newBackoff(ctx))
	if err != nil {
		return nil, err
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if decoded.Result.Hits.Total == "0" || len(decoded.Result.Hits.Hit) == 0 {
		return nil, nil
	}
	return decoded.Result.Hits.Hit, nil
}

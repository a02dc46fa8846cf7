// Package arxiv is a client for the arXiv export services: e-print source
// archives and canonical BibTeX records.
package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gautierdag/bibextract/internal/bib"
)

const (
	// BaseURL is the arXiv export API base URL.
	BaseURL = "https://arxiv.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit caps requests per second; arXiv asks bulk clients to stay
	// well under one request per second.
	RateLimit = 1.0

	// DefaultMaxElapsed bounds the total time spent retrying one call.
	DefaultMaxElapsed = 30 * time.Second

	retryInitialInterval = 500 * time.Millisecond
	retryMaxInterval     = 5 * time.Second
)

// Client is a rate-limited HTTP client for the arXiv export services.
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

// NewClient creates a new arXiv client.
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

// newBackoff builds the retry policy for one call: exponential backoff,
// capped interval, overall elapsed-time ceiling.
func (c *Client) newBackoff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = c.maxElapsed
	return backoff.WithContext(b, ctx)
}

// get performs one GET with retry on network errors and 5xx responses.
// 4xx responses are permanent and surface as an APIError.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	return backoff.RetryWithData(func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Debug("arXiv request failed, will retry", zap.String("url", url), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			c.logger.Debug("arXiv server error, will retry",
				zap.String("url", url), zap.Int("status", resp.StatusCode))
			return nil, &APIError{StatusCode: resp.StatusCode, Message: "server error"}
		}
		if resp.StatusCode >= 400 {
			return nil, backoff.Permanent(&APIError{StatusCode: resp.StatusCode, Message: "request rejected"})
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
		}
		return body, nil
	}, c.newBackoff(ctx))
}

// BibTeX fetches the canonical BibTeX record for an arXiv identifier.
// A payload without the minimum record markers is treated as no record,
// not as an error worth retrying.
func (c *Client) BibTeX(ctx context.Context, arxivID string) (string, error) {
	c.logger.Debug("fetching BibTeX record", zap.String("arxiv_id", arxivID))

	body, err := c.get(ctx, fmt.Sprintf("%s/bibtex/%s", c.baseURL, arxivID))
	if err != nil {
		return "", err
	}

	record := string(body)
	if !bib.ValidRecord(record) {
		return "", fmt.Errorf("%w: record for %s", ErrNotFound, arxivID)
	}
	return record, nil
}

// EPrint downloads the source archive for an arXiv identifier.
func (c *Client) EPrint(ctx context.Context, arxivID string) ([]byte, error) {
	c.logger.Info("downloading source archive", zap.String("arxiv_id", arxivID))

	body, err := c.get(ctx, fmt.Sprintf("%s/e-print/%s", c.baseURL, arxivID))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty archive for %s", ErrInvalidResponse, arxivID)
	}
	return body, nil
}

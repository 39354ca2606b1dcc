// Package client provides the resilient HTTP fetch primitive shared by all
// KrishiConnect data sources: request gating, bounded retries with
// exponential backoff and cooperative cancellation.
//
// Fetch never panics and never returns a bare error. Its Result says which
// of three things happened: the body arrived, every attempt failed, or the
// caller canceled. Callers decide how to degrade; the client does not know
// about caches or sample data.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/krishi-connect/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for outbound requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krishi_requests_total",
		Help: "Total upstream requests by host and status",
	}, []string{"host", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "krishi_request_duration_seconds",
		Help:    "Upstream request duration in seconds by host",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"host"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krishi_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// maxBodyBytes bounds how much of an upstream body Fetch buffers.
const maxBodyBytes = 16 << 20

// Outcome tells how a Fetch ended.
type Outcome int

const (
	// OutcomeSuccess means a 2xx response body was read.
	OutcomeSuccess Outcome = iota
	// OutcomeExhausted means every attempt failed.
	OutcomeExhausted
	// OutcomeCanceled means the caller's context ended first.
	OutcomeCanceled
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Result is the outcome of Fetch.
type Result struct {
	Outcome    Outcome
	Body       []byte
	Header     http.Header
	StatusCode int
	Attempts   int

	// Err is nil on success, wraps ErrRetryExhausted and the last attempt's
	// error when exhausted, and wraps ErrCanceled when canceled.
	Err error
}

// Fetcher performs a GET with retries and reports the outcome. *Client
// implements it; tests substitute fakes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) Result
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) Result

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, url string) Result {
	return f(ctx, url)
}

// Client is the outbound HTTP client.
type Client struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.Tracker
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// Per-attempt timeout
	Timeout time.Duration

	// Retry policy for Fetch
	Retry RetryConfig

	// Outbound request gate
	RateLimit ratelimit.Config
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent: userAgent,
		Timeout:   15 * time.Second,
		Retry:     DefaultRetryConfig(),
		RateLimit: ratelimit.DefaultConfig(),
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("retry max_attempts must be >= 1 (got %d)", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay < 0 {
		return nil, fmt.Errorf("retry base_delay must not be negative")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	logger := log.With().Str("component", "client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: ratelimit.NewTracker(cfg.RateLimit, logger),
		config:      cfg,
		logger:      logger,
	}, nil
}

// Do performs a single request through the rate limit gate.
// Non-success statuses are returned as responses, not errors; the caller
// owns the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	host := req.URL.Host

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(host).Observe(time.Since(startTime).Seconds())
	}()

	allowed, err := c.rateLimiter.ShouldAllowRequest(req.Context())
	if err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	if !allowed {
		requestsTotal.WithLabelValues(host, "rate_limited").Inc()
		errorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
		return nil, &HTTPError{
			StatusCode: http.StatusTooManyRequests,
			ErrorClass: ErrorClassRateLimit,
			Message:    "request blocked",
			Err:        ratelimit.ErrRateLimited,
		}
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	c.logger.Debug().
		Str("host", host).
		Str("path", req.URL.Path).
		Str("method", req.Method).
		Msg("Executing upstream request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() == nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(host, "network_error").Inc()
		}
		return nil, err
	}

	c.rateLimiter.UpdateFromResponse(resp)
	requestsTotal.WithLabelValues(host, strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode >= 400 {
		errorsTotal.WithLabelValues(string(ClassifyStatus(resp.StatusCode))).Inc()
	}

	return resp, nil
}

// Fetch GETs url, retrying transport errors and non-2xx statuses with
// exponential backoff, and reads the whole body.
func (c *Client) Fetch(ctx context.Context, url string) Result {
	var res Result

	attempts, err := retryWithBackoff(ctx, c.config.Retry, c.logger, func(int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		resp, err := c.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			return &HTTPError{
				StatusCode: resp.StatusCode,
				ErrorClass: ClassifyStatus(resp.StatusCode),
				Message:    resp.Status,
			}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		res.Body = body
		res.Header = resp.Header.Clone()
		res.StatusCode = resp.StatusCode
		return nil
	})

	res.Attempts = attempts
	switch {
	case err == nil:
		res.Outcome = OutcomeSuccess
	case isCanceled(err):
		res = Result{Outcome: OutcomeCanceled, Attempts: attempts, Err: err}
	default:
		res = Result{Outcome: OutcomeExhausted, Attempts: attempts, Err: err}
	}
	return res
}

// RateLimitState exposes the gate's current state.
func (c *Client) RateLimitState() ratelimit.State {
	return c.rateLimiter.GetState()
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

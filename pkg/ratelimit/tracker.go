package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "krishi_rate_limit_blocks_total",
		Help: "Total number of requests blocked during an upstream cooldown",
	})

	rateLimitCooldownsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "krishi_rate_limit_cooldowns_total",
		Help: "Total number of cooldowns armed by 429 responses",
	})

	rateLimitCooldownSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "krishi_rate_limit_cooldown_seconds",
		Help: "Length of the most recently armed cooldown in seconds",
	})
)

// ErrRateLimited is returned for requests refused during a cooldown.
var ErrRateLimited = errors.New("rate limit cooldown active")

// Config holds tracker configuration.
type Config struct {
	RequestsPerSecond float64
	Burst             int
	DefaultCooldown   time.Duration
}

// DefaultConfig returns the default tracker configuration.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: DefaultRequestsPerSecond,
		Burst:             DefaultBurst,
		DefaultCooldown:   DefaultCooldown,
	}
}

// Tracker gates outbound requests.
type Tracker struct {
	limiter  *rate.Limiter
	cooldown time.Duration
	logger   zerolog.Logger

	mu    sync.RWMutex
	state State
	now   func() time.Time
}

// NewTracker creates a new rate limit tracker.
func NewTracker(cfg Config, logger zerolog.Logger) *Tracker {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.DefaultCooldown <= 0 {
		cfg.DefaultCooldown = DefaultCooldown
	}

	return &Tracker{
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cooldown: cfg.DefaultCooldown,
		logger:   logger,
		now:      time.Now,
	}
}

// GetState returns a copy of the current state.
func (t *Tracker) GetState() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// ShouldAllowRequest checks if a request should be allowed.
// Returns false during a cooldown. Otherwise it waits for a token, which
// only fails when ctx ends first.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state := t.GetState()
	if state.CoolingDown(t.now()) {
		t.logger.Warn().
			Time("cooldown_until", state.CooldownUntil).
			Msg("Upstream cooldown active - blocking request")
		rateLimitBlocksTotal.Inc()
		return false, nil
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateFromResponse records the outcome of a response. A 429 arms the
// cooldown using Retry-After (seconds or HTTP date) when present.
func (t *Tracker) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	now := t.now()
	t.mu.Lock()
	t.state.LastStatus = resp.StatusCode
	t.state.LastUpdate = now
	if resp.StatusCode != http.StatusTooManyRequests {
		t.mu.Unlock()
		return
	}

	wait := parseRetryAfter(resp.Header.Get("Retry-After"), now)
	if wait <= 0 {
		wait = t.cooldown
	}
	wait = min(wait, MaxCooldown)
	t.state.CooldownUntil = now.Add(wait)
	t.mu.Unlock()

	rateLimitCooldownsTotal.Inc()
	rateLimitCooldownSeconds.Set(wait.Seconds())

	event := t.logger.Warn().Dur("cooldown", wait)
	if resp.Request != nil && resp.Request.URL != nil {
		event = event.Str("host", resp.Request.URL.Host)
	}
	event.Msg("Upstream rate limit hit - cooling down")
}

// parseRetryAfter understands both delta-seconds and HTTP-date forms.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return at.Sub(now)
	}
	return 0
}

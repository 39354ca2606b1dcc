// Package ratelimit keeps outbound requests polite towards public data APIs.
// It combines a token bucket with a cooldown window that is armed whenever
// an upstream answers 429 Too Many Requests.
package ratelimit

import (
	"time"
)

// Defaults for the request gate.
const (
	// DefaultRequestsPerSecond is the steady request rate per tracker.
	DefaultRequestsPerSecond = 5

	// DefaultBurst allows short bursts such as a refresh right after a search.
	DefaultBurst = 5

	// DefaultCooldown applies when a 429 response carries no usable
	// Retry-After header.
	DefaultCooldown = 30 * time.Second

	// MaxCooldown caps what an upstream may ask us to wait.
	MaxCooldown = 10 * time.Minute
)

// State represents the current upstream rate limit state.
type State struct {
	// CooldownUntil is when requests may resume after a 429.
	// Zero when no cooldown was ever armed.
	CooldownUntil time.Time `json:"cooldown_until"`

	// LastStatus is the status code of the last observed response.
	LastStatus int `json:"last_status"`

	// LastUpdate is when the state last changed.
	LastUpdate time.Time `json:"last_update"`
}

// CoolingDown returns true while requests must be held back.
func (s State) CoolingDown(now time.Time) bool {
	return now.Before(s.CooldownUntil)
}

// TimeUntilReset returns the remaining cooldown.
// Returns 0 if the cooldown has already passed.
func (s State) TimeUntilReset() time.Duration {
	duration := time.Until(s.CooldownUntil)
	if duration < 0 {
		return 0
	}
	return duration
}

// IsStale returns true if the state data is older than the given duration.
func (s State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// Package ratelimit tracks the request budget advertised by the Homi API in
// its X-RateLimit-Remaining and X-RateLimit-Reset headers and gates outgoing
// requests before the budget runs out. The state lives in Redis so the CLI,
// the proxy and other client instances share one view of the budget.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyRemaining = "homi:ratelimit:remaining"
	RedisKeyResetAt   = "homi:ratelimit:reset_at"
	RedisKeyUpdatedAt = "homi:ratelimit:updated_at"
)

// Response headers carrying the budget.
const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Thresholds on the remaining request budget.
const (
	// ThresholdCritical blocks requests while fewer than this many remain.
	ThresholdCritical = 1

	// ThresholdWarning throttles requests while fewer than this many remain.
	ThresholdWarning = 10

	// ThresholdHealthy marks the budget healthy at or above this value.
	ThresholdHealthy = 30
)

// State is the last known request budget.
type State struct {
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsHealthy bool      `json:"is_healthy"`
}

// IsStale reports whether the state is older than maxAge.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.UpdatedAt) > maxAge
}

// NeedsBlock reports whether requests must wait for the window to reset.
// A window that has already reset never blocks.
func (s *State) NeedsBlock() bool {
	return s.Remaining < ThresholdCritical && s.TimeUntilReset() > 0
}

// NeedsThrottling reports whether requests should be slowed down.
func (s *State) NeedsThrottling() bool {
	return s.Remaining < ThresholdWarning && !s.NeedsBlock() && s.TimeUntilReset() > 0
}

// TimeUntilReset returns the time until the window resets, 0 if it has.
func (s *State) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// UpdateHealth recomputes IsHealthy from Remaining.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.Remaining >= ThresholdHealthy
}

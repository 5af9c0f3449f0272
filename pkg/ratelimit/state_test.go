package ratelimit

import (
	"testing"
	"time"
)

func TestState_NeedsBlock(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		resetIn   time.Duration
		expected  bool
	}{
		{name: "healthy", remaining: 50, resetIn: time.Minute, expected: false},
		{name: "one left", remaining: ThresholdCritical, resetIn: time.Minute, expected: false},
		{name: "exhausted", remaining: 0, resetIn: time.Minute, expected: true},
		{name: "exhausted but window reset", remaining: 0, resetIn: -time.Second, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &State{Remaining: tt.remaining, ResetAt: time.Now().Add(tt.resetIn)}
			if got := state.NeedsBlock(); got != tt.expected {
				t.Errorf("NeedsBlock() = %v, want %v (remaining=%d)", got, tt.expected, tt.remaining)
			}
		})
	}
}

func TestState_NeedsThrottling(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		expected  bool
	}{
		{name: "healthy", remaining: 50, expected: false},
		{name: "at warning threshold", remaining: ThresholdWarning, expected: false},
		{name: "just below warning", remaining: ThresholdWarning - 1, expected: true},
		{name: "at critical threshold", remaining: ThresholdCritical, expected: true},
		{name: "exhausted blocks instead", remaining: 0, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &State{Remaining: tt.remaining, ResetAt: time.Now().Add(time.Minute)}
			if got := state.NeedsThrottling(); got != tt.expected {
				t.Errorf("NeedsThrottling() = %v, want %v (remaining=%d)", got, tt.expected, tt.remaining)
			}
		})
	}
}

func TestState_TimeUntilReset(t *testing.T) {
	future := &State{ResetAt: time.Now().Add(30 * time.Second)}
	if d := future.TimeUntilReset(); d <= 29*time.Second || d > 30*time.Second {
		t.Errorf("TimeUntilReset() = %v, want about 30s", d)
	}

	past := &State{ResetAt: time.Now().Add(-time.Minute)}
	if d := past.TimeUntilReset(); d != 0 {
		t.Errorf("TimeUntilReset() = %v, want 0", d)
	}
}

func TestState_UpdateHealthAndStale(t *testing.T) {
	state := &State{Remaining: ThresholdHealthy, UpdatedAt: time.Now().Add(-2 * time.Minute)}
	state.UpdateHealth()
	if !state.IsHealthy {
		t.Error("expected healthy at threshold")
	}

	state.Remaining = ThresholdHealthy - 1
	state.UpdateHealth()
	if state.IsHealthy {
		t.Error("expected unhealthy below threshold")
	}

	if !state.IsStale(time.Minute) {
		t.Error("expected stale state")
	}
	if state.IsStale(time.Hour) {
		t.Error("expected fresh state")
	}
}

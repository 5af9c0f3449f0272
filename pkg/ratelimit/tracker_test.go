package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestTracker(t *testing.T) (*Tracker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	tracker := NewTracker(client, zerolog.Nop())
	tracker.SetThrottleDelay(10 * time.Millisecond)
	return tracker, mr
}

func budgetHeaders(remaining, reset string) http.Header {
	h := http.Header{}
	h.Set(HeaderRemaining, remaining)
	h.Set(HeaderReset, reset)
	return h
}

func TestGetState_DefaultHealthy(t *testing.T) {
	tracker, _ := newTestTracker(t)

	state, err := tracker.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if !state.IsHealthy || state.NeedsBlock() || state.NeedsThrottling() {
		t.Errorf("default state should be healthy: %+v", state)
	}
}

func TestUpdateFromHeaders_ValidHeaders(t *testing.T) {
	tests := []struct {
		name            string
		remaining       string
		reset           string
		expectedRemain  int
		expectedHealthy bool
	}{
		{name: "healthy", remaining: "120", reset: "60", expectedRemain: 120, expectedHealthy: true},
		{name: "warning", remaining: "5", reset: "30", expectedRemain: 5, expectedHealthy: false},
		{name: "exhausted", remaining: "0", reset: "45", expectedRemain: 0, expectedHealthy: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, mr := newTestTracker(t)
			ctx := context.Background()

			if err := tracker.UpdateFromHeaders(ctx, budgetHeaders(tt.remaining, tt.reset)); err != nil {
				t.Fatalf("UpdateFromHeaders failed: %v", err)
			}

			state, err := tracker.GetState(ctx)
			if err != nil {
				t.Fatalf("GetState failed: %v", err)
			}
			if state.Remaining != tt.expectedRemain {
				t.Errorf("Remaining = %d, want %d", state.Remaining, tt.expectedRemain)
			}
			if state.IsHealthy != tt.expectedHealthy {
				t.Errorf("IsHealthy = %v, want %v", state.IsHealthy, tt.expectedHealthy)
			}
			if ttl := mr.TTL(RedisKeyRemaining); ttl <= 0 {
				t.Errorf("state keys should expire, TTL = %v", ttl)
			}
		})
	}
}

func TestUpdateFromHeaders_InvalidHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers http.Header
		wantErr bool
	}{
		{name: "no headers", headers: http.Header{}, wantErr: false},
		{name: "non-numeric remaining", headers: budgetHeaders("lots", "60"), wantErr: true},
		{name: "missing reset", headers: http.Header{HeaderRemaining: {"10"}}, wantErr: true},
		{name: "non-numeric reset", headers: budgetHeaders("10", "soon"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, _ := newTestTracker(t)
			err := tracker.UpdateFromHeaders(context.Background(), tt.headers)
			if (err != nil) != tt.wantErr {
				t.Errorf("UpdateFromHeaders() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShouldAllowRequest(t *testing.T) {
	tests := []struct {
		name      string
		remaining string
		allowed   bool
	}{
		{name: "healthy", remaining: "100", allowed: true},
		{name: "throttled", remaining: "3", allowed: true},
		{name: "blocked", remaining: "0", allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, _ := newTestTracker(t)
			ctx := context.Background()

			if err := tracker.UpdateFromHeaders(ctx, budgetHeaders(tt.remaining, "60")); err != nil {
				t.Fatalf("UpdateFromHeaders failed: %v", err)
			}

			allowed, err := tracker.ShouldAllowRequest(ctx)
			if err != nil {
				t.Fatalf("ShouldAllowRequest failed: %v", err)
			}
			if allowed != tt.allowed {
				t.Errorf("ShouldAllowRequest() = %v, want %v", allowed, tt.allowed)
			}
		})
	}
}

func TestShouldAllowRequest_ThrottleRespectsContext(t *testing.T) {
	tracker, _ := newTestTracker(t)
	tracker.SetThrottleDelay(time.Hour)

	if err := tracker.UpdateFromHeaders(context.Background(), budgetHeaders("2", "60")); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	allowed, err := tracker.ShouldAllowRequest(ctx)
	if allowed {
		t.Error("request should not be allowed after cancellation")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestGetState_RedisDown(t *testing.T) {
	tracker, mr := newTestTracker(t)
	mr.Close()

	if _, err := tracker.GetState(context.Background()); err == nil {
		t.Error("expected error when Redis is unavailable")
	}
}

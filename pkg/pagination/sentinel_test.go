package pagination

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/homi-client/pkg/filter"
)

func TestNewSentinel_Threshold(t *testing.T) {
	ctrl := newTestController(newFakeSource(0))

	assert.Equal(t, DefaultThreshold, NewSentinel(ctrl, 0).Threshold())
	assert.Equal(t, DefaultThreshold, NewSentinel(ctrl, 2).Threshold())
	assert.Equal(t, 0.5, NewSentinel(ctrl, 0.5).Threshold())
}

func TestSentinel_Visible(t *testing.T) {
	tests := []struct {
		name         string
		total        int
		ratio        float64
		wantAdvanced bool
	}{
		{name: "barely visible", total: 30, ratio: 0.05},
		{name: "at threshold", total: 30, ratio: 0.1, wantAdvanced: true},
		{name: "fully visible", total: 30, ratio: 1, wantAdvanced: true},
		{name: "no more pages", total: 10, ratio: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			src := newFakeSource(tt.total)
			ctrl := newTestController(src)
			require.NoError(t, ctrl.Fetch(ctx, 1, true, filter.State{}))

			advanced, err := NewSentinel(ctrl, DefaultThreshold).Visible(ctx, tt.ratio)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdvanced, advanced)

			wantCalls := 1
			if tt.wantAdvanced {
				wantCalls = 2
			}
			assert.Len(t, src.Queries(), wantCalls)
		})
	}
}

func TestSentinel_NeverTriggersWhileLoading(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	src := newFakeSource(60)
	ctrl := newTestController(src)
	require.NoError(t, ctrl.Fetch(ctx, 1, true, filter.State{}))

	src.mu.Lock()
	src.gate = func(q url.Values) <-chan struct{} {
		if q.Get(filter.ParamSearch) == "sink" {
			return gate
		}
		return nil
	}
	src.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- ctrl.Fetch(ctx, 1, true, filter.State{Search: "sink"}) }()
	require.Eventually(t, func() bool { return ctrl.State().Loading }, time.Second, time.Millisecond)

	sentinel := NewSentinel(ctrl, DefaultThreshold)
	for i := 0; i < 5; i++ {
		advanced, err := sentinel.Visible(ctx, 1)
		assert.NoError(t, err)
		assert.False(t, advanced)
	}

	close(gate)
	require.NoError(t, <-done)
	assert.Len(t, src.Queries(), 2)

	advanced, err := sentinel.Visible(ctx, 1)
	require.NoError(t, err)
	assert.True(t, advanced, "sentinel re-arms once the fetch completes")
}

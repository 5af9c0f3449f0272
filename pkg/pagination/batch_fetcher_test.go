package pagination

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/homi-client/pkg/filter"
	"github.com/Sternrassler/homi-client/pkg/listing"
)

func TestNewBatchFetcher_Defaults(t *testing.T) {
	bf := NewBatchFetcher[listing.Professional](newFakeSource(0), Config{}, zerolog.Nop())

	assert.Equal(t, DefaultConfig(), bf.config)
}

func TestBatchFetcher_FetchAll(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		omitMeta bool
		wantReqs int
	}{
		{name: "parallel with total", total: 30, wantReqs: 3},
		{name: "single page", total: 5, wantReqs: 1},
		{name: "sequential without metadata", total: 30, omitMeta: true, wantReqs: 3},
		{name: "sequential exact multiple", total: 24, omitMeta: true, wantReqs: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource(tt.total)
			src.omitMeta = tt.omitMeta
			bf := NewBatchFetcher[listing.Professional](src, Config{MaxConcurrency: 2, Timeout: time.Second}, zerolog.Nop())

			items, err := bf.FetchAll(context.Background(), filter.State{Category: "plumbing"})
			require.NoError(t, err)
			require.Len(t, items, tt.total)
			for i, item := range items {
				assert.Equal(t, fmt.Sprintf("pro-%d", i+1), item.ID, "items in page order")
			}
			assert.Len(t, src.Queries(), tt.wantReqs)
			for _, q := range src.Queries() {
				assert.Equal(t, "plumbing", q.Get(filter.ParamCategory))
			}
		})
	}
}

func TestBatchFetcher_MaxPages(t *testing.T) {
	src := newFakeSource(100)
	bf := NewBatchFetcher[listing.Professional](src, Config{PageSize: 10, MaxPages: 3}, zerolog.Nop())

	items, err := bf.FetchAll(context.Background(), filter.State{})
	require.NoError(t, err)
	assert.Len(t, items, 30)
}

func TestBatchFetcher_PartialResults(t *testing.T) {
	boom := errors.New("500 internal server error")
	src := newFakeSource(60)
	src.setFail(3, boom)
	bf := NewBatchFetcher[listing.Professional](src, Config{MaxConcurrency: 1}, zerolog.Nop())

	items, err := bf.FetchAll(context.Background(), filter.State{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "partial data")
	assert.Len(t, items, 24, "pages before the failed page are returned")
}

func TestBatchFetcher_FirstPageFails(t *testing.T) {
	src := newFakeSource(60)
	src.setFail(1, errors.New("dial tcp: connection refused"))
	bf := NewBatchFetcher[listing.Professional](src, DefaultConfig(), zerolog.Nop())

	items, err := bf.FetchAll(context.Background(), filter.State{})
	assert.Nil(t, items)
	assert.ErrorContains(t, err, "fetch first page")
}

package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/homi-client/pkg/filter"
	"github.com/Sternrassler/homi-client/pkg/listing"
)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel page requests.
	MaxConcurrency int

	// Timeout per page fetch.
	Timeout time.Duration

	// PageSize is the limit sent with every request.
	PageSize int

	// MaxPages caps the number of pages fetched.
	MaxPages int
}

// DefaultConfig returns the batch configuration used by homi-browse -all.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
		PageSize:       DefaultPageSize,
		MaxPages:       100,
	}
}

// BatchFetcher fetches every page of a filtered resource.
type BatchFetcher[T any] struct {
	source PageSource[T]
	config Config
	logger zerolog.Logger
}

// NewBatchFetcher creates a batch fetcher.
func NewBatchFetcher[T any](source PageSource[T], config Config, logger zerolog.Logger) *BatchFetcher[T] {
	def := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = def.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.PageSize <= 0 {
		config.PageSize = def.PageSize
	}
	if config.MaxPages <= 0 {
		config.MaxPages = def.MaxPages
	}

	return &BatchFetcher[T]{
		source: source,
		config: config,
		logger: logger.With().Str("component", "batch-fetcher").Logger(),
	}
}

// FetchAll returns the items of every page for snap, in page order.
//
// When the first page reports a total, the remaining pages are fetched in
// parallel. Without a total the pages are followed one by one until the
// server reports no more. On failure the items of the pages before the
// first failed page are returned together with the error.
func (bf *BatchFetcher[T]) FetchAll(ctx context.Context, snap filter.State) ([]T, error) {
	start := time.Now()

	first, err := bf.fetch(ctx, snap, 1)
	if err != nil {
		batchPagesTotal.WithLabelValues(resultError).Inc()
		return nil, fmt.Errorf("fetch first page: %w", err)
	}
	batchPagesTotal.WithLabelValues(resultOK).Inc()

	total, ok := first.Total()
	if !ok {
		return bf.fetchSequential(ctx, snap, first.Data, first.HasMore(bf.config.PageSize))
	}

	totalPages := (total + bf.config.PageSize - 1) / bf.config.PageSize
	if totalPages > bf.config.MaxPages {
		bf.logger.Warn().
			Int("total_pages", totalPages).
			Int("max_pages", bf.config.MaxPages).
			Msg("Result exceeds page cap, truncating")
		totalPages = bf.config.MaxPages
	}

	bf.logger.Info().
		Int("total", total).
		Int("total_pages", totalPages).
		Msg("Starting parallel page fetch")

	if totalPages <= 1 {
		return first.Data, nil
	}

	pages := make([][]T, totalPages)
	pages[0] = first.Data

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bf.config.MaxConcurrency)

	for n := 2; n <= totalPages; n++ {
		n := n
		g.Go(func() error {
			page, err := bf.fetch(gctx, snap, n)
			if err != nil {
				batchPagesTotal.WithLabelValues(resultError).Inc()
				bf.logger.Warn().Err(err).Int("page", n).Msg("Page fetch failed")
				return fmt.Errorf("page %d: %w", n, err)
			}
			batchPagesTotal.WithLabelValues(resultOK).Inc()
			pages[n-1] = page.Data
			return nil
		})
	}
	groupErr := g.Wait()

	var items []T
	fetched := 0
	for _, data := range pages {
		if data == nil {
			break
		}
		items = append(items, data...)
		fetched++
	}

	if groupErr != nil {
		return items, fmt.Errorf("partial data (%d/%d pages): %w", fetched, totalPages, groupErr)
	}

	bf.logger.Info().
		Int("pages", totalPages).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")
	return items, nil
}

func (bf *BatchFetcher[T]) fetchSequential(ctx context.Context, snap filter.State, items []T, hasMore bool) ([]T, error) {
	for n := 2; hasMore && n <= bf.config.MaxPages; n++ {
		page, err := bf.fetch(ctx, snap, n)
		if err != nil {
			batchPagesTotal.WithLabelValues(resultError).Inc()
			return items, fmt.Errorf("partial data (%d pages): page %d: %w", n-1, n, err)
		}
		batchPagesTotal.WithLabelValues(resultOK).Inc()
		items = append(items, page.Data...)
		hasMore = page.HasMore(bf.config.PageSize)
	}
	return items, nil
}

func (bf *BatchFetcher[T]) fetch(ctx context.Context, snap filter.State, n int) (listing.Page[T], error) {
	pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()

	page, err := bf.source.FetchPage(pageCtx, snap.Query(n, bf.config.PageSize))
	if err != nil {
		return page, err
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return page, nil
}

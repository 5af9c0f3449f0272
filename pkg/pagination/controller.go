package pagination

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/homi-client/pkg/filter"
	"github.com/Sternrassler/homi-client/pkg/listing"
)

// DefaultPageSize is the number of items requested per page.
const DefaultPageSize = 12

// ErrSuperseded is returned by a fetch whose response arrived after a newer
// reset fetch was started. The response is discarded.
var ErrSuperseded = errors.New("fetch superseded by a newer reset")

// PageSource fetches one page of a list resource. client.Resource[T]
// implements it.
type PageSource[T any] interface {
	FetchPage(ctx context.Context, query url.Values) (listing.Page[T], error)
}

// Cursor is the pagination position of a controller.
type Cursor struct {
	// Page is the last requested page, 0 before the first fetch.
	Page int

	// HasMore reports whether the server has further pages.
	HasMore bool
}

// Snapshot is a copy of the controller state.
type Snapshot[T any] struct {
	Items       []T
	Cursor      Cursor
	Loading     bool
	LoadingMore bool
	Filters     filter.State

	// Err is the error of the last completed fetch, nil after a success.
	Err error
}

// Busy reports whether a fetch is outstanding.
func (s Snapshot[T]) Busy() bool {
	return s.Loading || s.LoadingMore
}

// View maps the snapshot to its render state.
func (s Snapshot[T]) View() listing.View[T] {
	return listing.NewView(s.Items, s.Loading, s.LoadingMore, s.Cursor.HasMore, s.Err)
}

// Controller loads pages of one resource for a filter snapshot and merges
// them into a single list. It is safe for concurrent use.
//
// Every fetch takes a sequence number. A reset fetch supersedes all earlier
// fetches: their contexts are cancelled and their responses discarded, so the
// most recent reset always wins.
type Controller[T any] struct {
	source   PageSource[T]
	resource string
	limit    int
	logger   zerolog.Logger

	mu          sync.Mutex
	items       []T
	cursor      Cursor
	loading     bool
	loadingMore bool
	filters     filter.State
	err         error
	seq         uint64
	resetSeq    uint64
	inflight    map[uint64]context.CancelFunc

	subs   map[int]chan Snapshot[T]
	nextID int
}

// NewController creates a controller reading from source. pageSize <= 0
// means DefaultPageSize.
func NewController[T any](source PageSource[T], pageSize int, logger zerolog.Logger) *Controller[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	resource := "unknown"
	if p, ok := source.(interface{ Path() string }); ok {
		resource = p.Path()
	}
	return &Controller[T]{
		source:   source,
		resource: resource,
		limit:    pageSize,
		logger:   logger.With().Str("resource", resource).Logger(),
		items:    []T{},
		inflight: make(map[uint64]context.CancelFunc),
		subs:     make(map[int]chan Snapshot[T]),
	}
}

// PageSize returns the limit sent with every request.
func (c *Controller[T]) PageSize() int {
	return c.limit
}

// Fetch loads page for snap. With reset the list is replaced and the cursor
// restarts at page; otherwise the page is appended. A failed fetch leaves the
// list untouched and stops pagination until the next reset.
func (c *Controller[T]) Fetch(ctx context.Context, page int, reset bool, snap filter.State) error {
	return c.Start(ctx, page, reset, snap)()
}

// Start marks the controller loading and claims the next sequence number,
// then returns the function that performs the request. Callers that run
// fetches concurrently use Start to fix their order before dispatching.
func (c *Controller[T]) Start(ctx context.Context, page int, reset bool, snap filter.State) func() error {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	run := c.beginLocked(ctx, page, reset, snap)
	c.mu.Unlock()
	c.publish()

	return run
}

// LoadMore fetches the page after the cursor, appending it. It reports false
// without fetching while a fetch is outstanding or the end was reached. The
// check and the loading mark happen under one lock so concurrent triggers
// produce a single request.
func (c *Controller[T]) LoadMore(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.loading || c.loadingMore || !c.cursor.HasMore || c.cursor.Page < 1 {
		c.mu.Unlock()
		return false, nil
	}
	run := c.beginLocked(ctx, c.cursor.Page+1, false, c.filters)
	c.mu.Unlock()
	c.publish()

	return true, run()
}

// State returns a copy of the current state.
func (c *Controller[T]) State() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel receiving the state after every change and a
// cancel function. A slow subscriber only sees the latest state.
func (c *Controller[T]) Subscribe() (<-chan Snapshot[T], func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan Snapshot[T], 1)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}

func (c *Controller[T]) beginLocked(ctx context.Context, page int, reset bool, snap filter.State) func() error {
	c.seq++
	seq := c.seq

	if reset {
		for old, cancel := range c.inflight {
			cancel()
			delete(c.inflight, old)
		}
		c.resetSeq = seq
		c.filters = snap
		c.cursor = Cursor{Page: page, HasMore: true}
		c.loading = true
		c.loadingMore = false
	} else {
		c.cursor.Page = page
		c.loadingMore = true
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	c.inflight[seq] = cancel

	return func() error {
		defer cancel()
		return c.run(fetchCtx, seq, page, reset, snap)
	}
}

func (c *Controller[T]) run(ctx context.Context, seq uint64, page int, reset bool, snap filter.State) error {
	kind := kindMore
	if reset {
		kind = kindReset
	}
	query := snap.Query(page, c.limit)

	c.logger.Debug().
		Uint64("seq", seq).
		Int("page", page).
		Bool("reset", reset).
		Str("query", query.Encode()).
		Msg("Fetching page")

	start := time.Now()
	result, err := c.source.FetchPage(ctx, query)
	fetchDuration.WithLabelValues(c.resource, kind).Observe(time.Since(start).Seconds())

	c.mu.Lock()
	delete(c.inflight, seq)

	if resetSeq := c.resetSeq; seq < resetSeq {
		c.mu.Unlock()
		staleResponsesTotal.WithLabelValues(c.resource).Inc()
		fetchesTotal.WithLabelValues(c.resource, kind, resultStale).Inc()
		c.logger.Debug().
			Uint64("seq", seq).
			Uint64("reset_seq", resetSeq).
			Int("page", page).
			Msg("Discarding stale response")
		return ErrSuperseded
	}

	if reset {
		c.loading = false
	} else {
		c.loadingMore = false
	}

	if err != nil {
		c.cursor.HasMore = false
		c.err = err
		c.mu.Unlock()
		c.publish()

		fetchesTotal.WithLabelValues(c.resource, kind, resultError).Inc()
		c.logger.Warn().
			Err(err).
			Uint64("seq", seq).
			Int("page", page).
			Bool("reset", reset).
			Msg("Page fetch failed, pagination stopped")
		return err
	}

	if reset {
		c.items = append(make([]T, 0, len(result.Data)), result.Data...)
	} else {
		c.items = append(c.items, result.Data...)
	}
	c.cursor = Cursor{Page: page, HasMore: result.HasMore(c.limit)}
	c.err = nil
	count := len(c.items)
	hasMore := c.cursor.HasMore
	c.mu.Unlock()
	c.publish()

	fetchesTotal.WithLabelValues(c.resource, kind, resultOK).Inc()
	c.logger.Debug().
		Uint64("seq", seq).
		Int("page", page).
		Int("received", len(result.Data)).
		Int("items", count).
		Bool("has_more", hasMore).
		Msg("Page merged")
	return nil
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Items:       append(make([]T, 0, len(c.items)), c.items...),
		Cursor:      c.cursor,
		Loading:     c.loading,
		LoadingMore: c.loadingMore,
		Filters:     c.filters,
		Err:         c.err,
	}
}

func (c *Controller[T]) publish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

package pagination

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/homi-client/pkg/analytics"
	"github.com/Sternrassler/homi-client/pkg/filter"
)

// Starter begins a fetch and returns the function performing it.
// *Controller[T] implements it.
type Starter interface {
	Start(ctx context.Context, page int, reset bool, snap filter.State) func() error
}

// Reconciler turns filter snapshots into reset fetches. A snapshot whose
// canonical key equals the previous one is ignored, so repeated observation
// never issues a duplicate fetch. Analytics events are emitted for real
// transitions only, never for the first fetch.
type Reconciler struct {
	target    Starter
	publisher analytics.Publisher
	resource  string
	logger    zerolog.Logger

	mu          sync.Mutex
	lastKey     string
	last        filter.State
	fetchedOnce bool
}

// NewReconciler creates a reconciler driving target. A nil publisher
// disables analytics.
func NewReconciler(target Starter, publisher analytics.Publisher, resource string, logger zerolog.Logger) *Reconciler {
	if publisher == nil {
		publisher = analytics.Nop{}
	}
	return &Reconciler{
		target:    target,
		publisher: publisher,
		resource:  resource,
		logger:    logger.With().Str("component", "reconciler").Str("resource", resource).Logger(),
	}
}

// Observe compares snap with the last observed snapshot and, when it
// differs, fetches page 1 with reset. It reports whether a fetch was issued.
func (r *Reconciler) Observe(ctx context.Context, snap filter.State) (bool, error) {
	run := r.observe(ctx, snap)
	if run == nil {
		return false, nil
	}
	return true, run()
}

// Run observes the current snapshot of store and every later change until
// ctx is done. Fetches run concurrently so a newer filter change supersedes
// a slow older one.
func (r *Reconciler) Run(ctx context.Context, store *filter.Store) error {
	ch, cancel := store.Subscribe()
	defer cancel()

	var wg sync.WaitGroup
	defer wg.Wait()

	dispatch := func(snap filter.State) {
		run := r.observe(ctx, snap)
		if run == nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			run()
		}()
	}

	dispatch(store.Snapshot())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-ch:
			if !ok {
				return nil
			}
			dispatch(snap)
		}
	}
}

// observe records snap and starts the reset fetch, returning nil when the
// snapshot is unchanged. Sequence numbers are claimed here, in observation
// order.
func (r *Reconciler) observe(ctx context.Context, snap filter.State) func() error {
	key := snap.Key()

	r.mu.Lock()
	if r.fetchedOnce && key == r.lastKey {
		r.mu.Unlock()
		return nil
	}
	prev, transition := r.last, r.fetchedOnce
	r.last, r.lastKey, r.fetchedOnce = snap, key, true
	run := r.target.Start(ctx, 1, true, snap)
	r.mu.Unlock()

	if transition {
		r.logger.Info().Str("filters", key).Msg("Filters changed, reloading from page 1")
		r.emit(ctx, prev, snap)
	} else {
		r.logger.Debug().Str("filters", key).Msg("Initial fetch")
	}
	return run
}

func (r *Reconciler) emit(ctx context.Context, prev, next filter.State) {
	var events []analytics.Event

	search := strings.TrimSpace(next.Search)
	if search != "" && search != strings.TrimSpace(prev.Search) {
		events = append(events, analytics.NewEvent(analytics.EventSearchPerformed, map[string]string{
			"resource": r.resource,
			"search":   search,
		}))
	}
	if next.Category != "" && next.Category != prev.Category {
		events = append(events, analytics.NewEvent(analytics.EventCategorySelected, map[string]string{
			"resource": r.resource,
			"category": next.Category,
		}))
	}
	events = append(events, analytics.NewEvent(analytics.EventFiltersChanged, map[string]string{
		"resource": r.resource,
		"filters":  next.Key(),
	}))

	for _, e := range events {
		if err := r.publisher.Publish(ctx, e); err != nil {
			r.logger.Warn().Err(err).Str("event", e.Name).Msg("Failed to publish analytics event")
		}
	}
}

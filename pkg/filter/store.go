package filter

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var filterChangesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "homi_filter_changes_total",
	Help: "Total number of published filter state changes",
})

// Store is the shared holder of the current filter State. Writers replace the
// state with Set or Update; readers take a Snapshot or Subscribe to changes.
// Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	state  State
	subs   map[int]chan State
	nextID int
	logger zerolog.Logger
}

// NewStore creates a store holding the given initial state.
func NewStore(initial State, logger zerolog.Logger) *Store {
	return &Store{
		state:  initial.clone(),
		subs:   make(map[int]chan State),
		logger: logger,
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Set validates and stores next. Subscribers are notified only when the
// effective filters change.
func (s *Store) Set(next State) error {
	if err := next.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Key() == next.Key() {
		return nil
	}
	s.state = next.clone()
	filterChangesTotal.Inc()

	s.logger.Debug().
		Str("filters", s.state.Key()).
		Int("subscribers", len(s.subs)).
		Msg("Filter state changed")

	for _, ch := range s.subs {
		publishLatest(ch, s.state.clone())
	}
	return nil
}

// Update applies fn to the current state and stores the result.
func (s *Store) Update(fn func(State) State) error {
	return s.Set(fn(s.Snapshot()))
}

// Reset clears every filter back to the default state.
func (s *Store) Reset() {
	// The default state always validates.
	_ = s.Set(State{})
}

// Subscribe returns a channel receiving each new state and a function that
// cancels the subscription. A slow subscriber only ever sees the most recent
// state; intermediate states are dropped.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan State, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publishLatest replaces any undelivered value in ch with v.
// Callers hold the store lock, so there is a single sender per channel.
func publishLatest(ch chan State, v State) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}

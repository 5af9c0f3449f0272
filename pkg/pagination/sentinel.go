package pagination

import (
	"context"
)

// DefaultThreshold is the visible fraction of the sentinel that triggers
// the next page.
const DefaultThreshold = 0.1

// Loader is the part of Controller the sentinel drives.
type Loader interface {
	LoadMore(ctx context.Context) (bool, error)
}

// Sentinel is the infinite-scroll trigger placed after the list. Visible is
// its intersection callback.
type Sentinel struct {
	loader    Loader
	threshold float64
}

// NewSentinel creates a sentinel advancing loader. threshold <= 0 means
// DefaultThreshold.
func NewSentinel(loader Loader, threshold float64) *Sentinel {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Sentinel{loader: loader, threshold: threshold}
}

// Threshold returns the trigger ratio.
func (s *Sentinel) Threshold() float64 {
	return s.threshold
}

// Visible reports the sentinel's visible ratio. When at least the threshold
// is visible it asks the loader for the next page; the loader refuses while a
// fetch is outstanding or once the end was reached. It reports whether a
// page was fetched.
func (s *Sentinel) Visible(ctx context.Context, ratio float64) (bool, error) {
	if ratio < s.threshold {
		sentinelTriggersTotal.WithLabelValues("below_threshold").Inc()
		return false, nil
	}

	advanced, err := s.loader.LoadMore(ctx)
	if !advanced {
		sentinelTriggersTotal.WithLabelValues("guarded").Inc()
		return false, nil
	}
	sentinelTriggersTotal.WithLabelValues("advanced").Inc()
	return true, err
}

// Package analytics emits browse analytics events (search performed,
// category selected, filters changed) to pluggable publishers.
package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event names.
const (
	EventSearchPerformed  = "search_performed"
	EventCategorySelected = "category_selected"
	EventFiltersChanged   = "filters_changed"
)

var eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "homi_analytics_events_total",
	Help: "Analytics events by name and publish result",
}, []string{"name", "result"})

// Event is a single analytics event.
type Event struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
	At         time.Time         `json:"at"`
}

// NewEvent creates an event with a fresh id and the current time.
func NewEvent(name string, props map[string]string) Event {
	return Event{
		ID:         uuid.NewString(),
		Name:       name,
		Properties: props,
		At:         time.Now().UTC(),
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close()
}

// Multi fans events out to several publishers. Publish tries every publisher
// and joins their errors.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements Publisher.
func (m Multi) Close() {
	for _, p := range m {
		p.Close()
	}
}

// Nop discards events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (Nop) Close() {}

func observe(name string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsTotal.WithLabelValues(name, result).Inc()
}

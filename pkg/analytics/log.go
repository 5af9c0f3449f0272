package analytics

import (
	"context"

	"github.com/rs/zerolog"
)

// LogPublisher writes events to a zerolog logger at info level.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a publisher logging to logger.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("component", "analytics").Logger()}
}

// Publish implements Publisher.
func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.logger.Info().
		Str("event_id", e.ID).
		Str("event", e.Name).
		Interface("properties", e.Properties).
		Time("at", e.At).
		Msg("Analytics event")
	observe(e.Name, nil)
	return nil
}

// Close implements Publisher.
func (p *LogPublisher) Close() {}

package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// SubjectPrefix is prepended to the event name to form the NATS subject.
const SubjectPrefix = "homi.analytics."

const connectTimeout = 10 * time.Second

// natsConn is the part of *nats.Conn the publisher uses.
type natsConn interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSPublisher publishes events as JSON on homi.analytics.<name>.
type NATSPublisher struct {
	conn   natsConn
	logger zerolog.Logger
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string, logger zerolog.Logger) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("homi-client"),
		nats.Timeout(connectTimeout),
		nats.RetryOnFailedConnect(true),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return newNATSPublisher(nc, logger), nil
}

func newNATSPublisher(conn natsConn, logger zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "analytics-nats").Logger(),
	}
}

// Subject returns the subject an event is published on.
func Subject(name string) string {
	return SubjectPrefix + name
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(e)
	if err != nil {
		observe(e.Name, err)
		return fmt.Errorf("marshal event %s: %w", e.Name, err)
	}

	subject := Subject(e.Name)
	if err := p.conn.Publish(subject, data); err != nil {
		observe(e.Name, err)
		p.logger.Error().
			Err(err).
			Str("event_id", e.ID).
			Str("subject", subject).
			Msg("Failed to publish analytics event")
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	observe(e.Name, nil)
	p.logger.Debug().
		Str("event_id", e.ID).
		Str("subject", subject).
		Msg("Published analytics event")
	return nil
}

// Close implements Publisher.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

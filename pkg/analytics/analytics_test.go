package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
	closed   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventSearchPerformed, map[string]string{"search": "sink"})

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, EventSearchPerformed, e.Name)
	assert.False(t, e.At.IsZero())
	assert.NotEqual(t, e.ID, NewEvent(EventSearchPerformed, nil).ID)
}

func TestNATSPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	p := newNATSPublisher(conn, zerolog.Nop())

	e := NewEvent(EventCategorySelected, map[string]string{"category": "plumbing"})
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "homi.analytics.category_selected", conn.subjects[0])

	var decoded Event
	require.NoError(t, json.Unmarshal(conn.payloads[0], &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, "plumbing", decoded.Properties["category"])

	p.Close()
	assert.True(t, conn.closed)
}

func TestNATSPublisher_Errors(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	p := newNATSPublisher(conn, zerolog.Nop())

	err := p.Publish(context.Background(), NewEvent(EventFiltersChanged, nil))
	assert.ErrorContains(t, err, "homi.analytics.filters_changed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, NewEvent(EventFiltersChanged, nil)), context.Canceled)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	require.NoError(t, p.Publish(context.Background(), NewEvent(EventSearchPerformed, map[string]string{"search": "tap"})))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "search_performed", entry["event"])
	assert.Equal(t, "analytics", entry["component"])
}

func TestMulti(t *testing.T) {
	rec := &Recorder{}
	failing := newNATSPublisher(&fakeConn{err: errors.New("down")}, zerolog.Nop())
	m := Multi{failing, rec}

	err := m.Publish(context.Background(), NewEvent(EventFiltersChanged, nil))
	assert.Error(t, err)
	assert.Equal(t, []string{EventFiltersChanged}, rec.Names(), "later publishers still receive the event")

	rec.Reset()
	assert.Empty(t, rec.Events())
	m.Close()
}

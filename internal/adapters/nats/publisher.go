package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/campusmap/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the search stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, js: js}, nil
}

// SubjectFor routes an event to the committed or not-found subject.
func SubjectFor(ev domain.SearchEvent) string {
	if ev.Found {
		return SubjectSearchCommitted
	}
	return SubjectSearchNotFound
}

// PublishSearchEvent publishes ev as JSON.
func (p *Publisher) PublishSearchEvent(ctx context.Context, ev domain.SearchEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectFor(ev), data, nats.Context(ctx))
	return err
}

// Connected reports whether the connection is currently up.
func (p *Publisher) Connected() bool { return p.conn.IsConnected() }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

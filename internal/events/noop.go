package events

import (
	"context"
	"log/slog"
)

// NoopPublisher is a Publisher that does nothing (used when NATS is not configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}

// LogPublisher writes every event to a logger at debug level. It stands in
// for NATS in verbose local runs so the event flow stays visible.
type LogPublisher struct {
	Logger *slog.Logger
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, event any) error {
	p.Logger.DebugContext(ctx, "event", "topic", topic, "event", event)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}

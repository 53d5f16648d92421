// Package messaging defines the event publishing contract used by the
// order lifecycle.
package messaging

import (
	"context"
)

// Subjects for order lifecycle events.
const (
	OrdersCreatedSubject      = "orders.created"
	OrdersStateChangedSubject = "orders.state_changed"
	OrdersDeletedSubject      = "orders.deleted"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards events. Used in tests and when NATS is not
// configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}

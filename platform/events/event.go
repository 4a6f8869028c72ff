// Package events carries lead and commission notifications from the services
// that commit them to the subscribers that react, such as push delivery.
// Events are published only after the owning transaction commits.
package events

import (
	"context"
	"time"
)

// Event is something that already happened and was persisted.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent stamps an event with its UTC publish time.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

// Handler reacts to one event. A returned error is logged by the bus and
// never reaches the publisher.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus fans committed events out to subscribers without blocking the caller.
type Bus interface {
	// Publish hands event to every subscriber of its name and returns
	// immediately.
	Publish(ctx context.Context, event Event)

	// Subscribe registers handler for events whose EventName is eventName.
	Subscribe(eventName string, handler Handler)

	// Wait blocks until every handler started by Publish has returned.
	// Call it during shutdown after the last publisher has stopped.
	Wait()
}

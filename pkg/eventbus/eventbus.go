// Package eventbus defines the contract for publishing and subscribing to
// domain events.
package eventbus

import (
	"context"

	"github.com/obiora/bankcore/pkg/domain/events"
)

// HandlerFunc processes a single event.
type HandlerFunc func(ctx context.Context, event events.Event) error

// Bus publishes domain events and dispatches them to registered handlers.
// Publish is fire-and-forget from the caller's perspective: a failing
// handler never fails the business operation that emitted the event.
type Bus interface {
	Publish(ctx context.Context, event events.Event) error
	Register(eventType string, handler HandlerFunc)
}

// Package eventbus provides event bus implementations: an in-memory bus for
// tests and single-node deployments and a Redis Streams publisher for
// production fan-out.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/obiora/bankcore/pkg/domain/events"
	"github.com/obiora/bankcore/pkg/eventbus"
)

// MemoryBus is a simple in-memory implementation of eventbus.Bus.
type MemoryBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []events.Event
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryBus {
	return &MemoryBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

// Register adds a handler for a specific event type.
func (b *MemoryBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches the event to all registered handlers for its type.
// Handler errors are logged, never propagated.
func (b *MemoryBus) Publish(ctx context.Context, event events.Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type()]
	b.mu.RUnlock()

	b.mu.Lock()
	b.published = append(b.published, event)
	b.mu.Unlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Error("event handler failed", "eventType", event.Type(), "error", err)
		}
	}
	return nil
}

// Published returns the events published so far. Useful for tests.
func (b *MemoryBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]events.Event(nil), b.published...)
}

var _ eventbus.Bus = (*MemoryBus)(nil)

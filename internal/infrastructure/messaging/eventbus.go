// Package messaging implements the in-memory event bus carrying the engine's
// best-effort side channels: progress updates, grading notifications, and
// completed-session events.
package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/prepdesk/prepdesk/internal/domain/shared"
)

// ErrBusClosed is returned when publishing or subscribing after Close.
var ErrBusClosed = errors.New("messaging: event bus is closed")

// Handler processes one event. Handlers must not panic; a panicking handler
// is recovered and logged so one bad subscriber cannot take down a session.
// An alias so plain functions satisfy subscriber interfaces elsewhere.
type Handler = func(ctx context.Context, event shared.Event)

// Bus is a synchronous in-memory event bus. Delivery happens on the
// publisher's goroutine, which keeps the engine's single-threaded,
// cooperative model intact: no event is handled concurrently with the
// session work that produced it.
type Bus struct {
	mu       sync.RWMutex
	handlers map[shared.EventType][]Handler
	logger   *slog.Logger
	closed   bool
}

// NewBus creates an event bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers: make(map[shared.EventType][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for a specific event type.
func (b *Bus) Subscribe(eventType shared.EventType, handler Handler) error {
	if handler == nil {
		return errors.New("messaging: handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.logger.Debug("subscribed handler", "event_type", eventType)
	return nil
}

// Publish delivers the event to every handler registered for its type.
// Publishing is best-effort: handler panics are recovered and logged.
func (b *Bus) Publish(ctx context.Context, event shared.Event) error {
	if event == nil {
		return errors.New("messaging: event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	handlers := make([]Handler, len(b.handlers[event.EventType()]))
	copy(handlers, b.handlers[event.EventType()])
	b.mu.RUnlock()

	for _, h := range handlers {
		b.deliver(ctx, h, event)
	}
	return nil
}

func (b *Bus) deliver(ctx context.Context, h Handler, event shared.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event_type", event.EventType(),
				"panic", r)
		}
	}()
	h(ctx, event)
}

// Close shuts the bus down; further publishes and subscribes fail.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

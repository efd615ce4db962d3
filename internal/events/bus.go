package events

import (
	"context"
	"sync"

	"github.com/lingvoro/lingvoro-client/internal/logger"
)

// Bus is an in-memory notification fan-out. Subscribers registered before
// an Emit call all receive the notification, in registration order.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *logger.Logger
}

// NewBus creates an empty notification bus.
func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		handlers: make([]Handler, 0),
		logger:   log,
	}
}

// Subscribe adds a handler to receive all future notifications.
func (b *Bus) Subscribe(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
	b.logger.Debug().Str("func", "Bus.Subscribe").Int("handler_count", len(b.handlers)).Msg("registered notification handler")
}

// Emit delivers the notification to every subscriber. A handler panic is
// contained so one misbehaving consumer cannot take down the sync engine.
func (b *Bus) Emit(ctx context.Context, n Notification) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(ctx, handler, n)
	}
}

func (b *Bus) deliver(ctx context.Context, handler Handler, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Str("func", "Bus.Emit").Str("name", n.Name).Any("panic", r).Msg("notification handler panicked")
		}
	}()

	handler.HandleNotification(ctx, n)
}

// LogHandler returns a handler that writes every notification to the given
// logger at debug level. It is the default subscriber wired by the client
// application.
func LogHandler(log *logger.Logger) Handler {
	return HandlerFunc(func(_ context.Context, n Notification) {
		log.Debug().
			Str("notification", n.Name).
			Str("entity_type", n.EntityType).
			Str("entity_id", n.EntityID).
			Any("fields", n.Fields).
			Msg("sync notification")
	})
}

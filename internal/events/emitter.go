package events

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/srgulbay/flashbox/internal/platform/logger"
)

// ErrNilEvent is returned when EmitEvent is called without an event.
var ErrNilEvent = errors.New("review event cannot be nil")

// InMemoryEventEmitter fans review events out to the registered handlers in
// the caller's goroutine, in registration order. Every handler sees every
// event even when an earlier one fails.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

// NewInMemoryEventEmitter returns an emitter with no handlers.
func NewInMemoryEventEmitter(base *slog.Logger) *InMemoryEventEmitter {
	if base == nil {
		base = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: base.With(slog.String("component", "review_event_emitter")),
	}
}

// RegisterHandler subscribes handler to all subsequent events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("review event handler registered", slog.Int("handler_count", len(e.handlers)))
}

// EmitEvent delivers event to every handler and returns the first handler
// error.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *ReviewEvent) error {
	if event == nil {
		return ErrNilEvent
	}

	e.mu.RLock()
	handlers := slices.Clone(e.handlers)
	e.mu.RUnlock()

	log := logger.FromContextOrDefault(ctx, e.logger).With(eventAttrs(event)...)
	if len(handlers) == 0 {
		log.Debug("review event dropped, no handlers registered")
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.Error("review event handler failed",
				slog.Int("handler_index", i),
				slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// eventAttrs describes event for the log.
func eventAttrs(event *ReviewEvent) []any {
	return []any{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("user_id", event.UserID.String()),
		slog.String("item_kind", string(event.ItemKind)),
		slog.String("item_id", event.ItemID.String()),
		slog.Int("box_number", event.BoxNumber),
		slog.Bool("is_mastered", event.IsMastered),
	}
}

// NewLoggingHandler returns a handler that records every event in the log.
// It marks where analytics and notification subsystems subscribe.
func NewLoggingHandler(base *slog.Logger) EventHandler {
	if base == nil {
		base = slog.Default()
	}
	base = base.With(slog.String("component", "review_events"))

	return EventHandlerFunc(func(ctx context.Context, event *ReviewEvent) error {
		attrs := append(eventAttrs(event), slog.String("outcome", string(event.Outcome)))
		logger.FromContextOrDefault(ctx, base).Info("review event", attrs...)
		return nil
	})
}

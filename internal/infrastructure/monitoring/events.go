package monitoring

import (
	"context"
	"sync"

	"github.com/basketful/storefront/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var _ shared.EventDispatcher = (*EventDispatcher)(nil)

// EventDispatcher runs registered handlers synchronously. Handler errors are
// logged and never reach the caller, so a failing subscriber cannot undo a
// committed operation.
type EventDispatcher struct {
	mu       sync.RWMutex
	handlers   map[string][]shared.EventHandler
	dispatched metric.Int64Counter
	logger     *zap.Logger
}

// NewEventDispatcher creates a new event dispatcher
func NewEventDispatcher(logger *zap.Logger) *EventDispatcher {
	d := &EventDispatcher{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger.Named("events"),
	}

	counter, err := otel.Meter("storefront/events").Int64Counter("storefront.domain_events",
		metric.WithDescription("Domain events dispatched, by name and outcome"),
	)
	if err != nil {
		d.logger.Warn("Domain event counter unavailable", zap.Error(err))
	}
	d.dispatched = counter
	return d
}

// Register adds a handler for an event name
func (d *EventDispatcher) Register(eventName string, handler shared.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventName] = append(d.handlers[eventName], handler)
}

// Dispatch delivers event to every handler registered for its name
func (d *EventDispatcher) Dispatch(ctx context.Context, event shared.DomainEvent) {
	d.mu.RLock()
	handlers := append([]shared.EventHandler(nil), d.handlers[event.EventName()]...)
	d.mu.RUnlock()

	ctx, span := otel.Tracer("storefront/events").Start(ctx, "event "+event.EventName())
	span.SetAttributes(attribute.Int("event.handlers", len(handlers)))
	defer span.End()

	failed := false
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			failed = true
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			d.logger.Error("Event handler failed",
				zap.String("event", event.EventName()),
				zap.Error(err),
			)
		}
	}

	if d.dispatched != nil {
		d.dispatched.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event", event.EventName()),
			attribute.Bool("failed", failed),
		))
	}

	d.logger.Debug("Event dispatched",
		zap.String("event", event.EventName()),
		zap.Int("handlers", len(handlers)),
	)
}

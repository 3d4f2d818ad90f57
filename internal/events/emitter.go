package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter is a simple implementation of the EventEmitter interface
// that stores registered handlers in memory and dispatches events to them.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		handlers: make([]EventHandler, 0),
		logger:   logger.With("component", "in_memory_event_emitter"),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered new event handler", "handler_count", len(e.handlers))
}

// EmitEvent publishes the given event to all registered handlers.
// If any handler returns an error, the event will still be sent to all other handlers,
// and the first error encountered will be returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *NotificationEvent) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	e.logger.Debug("emitting event",
		"event_id", event.ID,
		"title", event.Notification.Title,
		"handler_count", len(handlers))

	if len(handlers) == 0 {
		e.logger.Warn("no handlers registered for event",
			"event_id", event.ID,
			"title", event.Notification.Title)
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"title", event.Notification.Title)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// SlogNotificationHandler is a delivery adapter that records notifications in
// the structured log. It stands in for push or email delivery in deployments
// without a real channel configured.
type SlogNotificationHandler struct {
	logger *slog.Logger
}

// NewSlogNotificationHandler creates a handler that logs each notification.
func NewSlogNotificationHandler(logger *slog.Logger) *SlogNotificationHandler {
	return &SlogNotificationHandler{
		logger: logger.With("component", "notification_log"),
	}
}

// HandleEvent implements EventHandler.
func (h *SlogNotificationHandler) HandleEvent(ctx context.Context, event *NotificationEvent) error {
	h.logger.Info("notification",
		"event_id", event.ID,
		"user_id", event.UserID,
		"title", event.Notification.Title,
		"message", event.Notification.Message,
		"severity", event.Notification.Severity)
	return nil
}

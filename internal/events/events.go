package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/preptrack/preptrack-api/internal/domain"
)

// NotificationEvent wraps a milestone notification with delivery metadata.
// It is plain data produced by the state machine after its record change has
// committed; handlers perform the actual delivery.
type NotificationEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// UserID identifies the recipient
	UserID uuid.UUID `json:"user_id"`

	// Notification is the milestone message to deliver
	Notification domain.Notification `json:"notification"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationEvent creates a new NotificationEvent for the given user.
func NewNotificationEvent(userID uuid.UUID, notification domain.Notification) *NotificationEvent {
	return &NotificationEvent{
		ID:           uuid.New(),
		UserID:       userID,
		Notification: notification,
		CreatedAt:    time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *NotificationEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *NotificationEvent) error
}

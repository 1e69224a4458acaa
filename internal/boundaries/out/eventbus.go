package out

import (
	"context"

	"github.com/bnema/acms/internal/domain"
)

// EventPublisher is what services use to announce resource changes.
// Publishing is best effort: an error means the event was not queued,
// never that the mutation failed.
type EventPublisher interface {
	Publish(eventType domain.EventType, payload any) error
}

// EventHandler observes events. CanHandle is consulted before every delivery.
type EventHandler interface {
	CanHandle(eventType domain.EventType) bool
	Handle(ctx context.Context, event domain.Event) error
}

// EventBus is the process-wide publisher plus its subscription and lifecycle
// controls, owned by the app wiring.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler) error
	Unsubscribe(handler EventHandler) error
	Start() error
	Stop() error
}

package domain

import "time"

// EventType defines the type of event that occurred.
type EventType string

const (
	EventContainerCreated EventType = "container.created"
	EventContainerStarted EventType = "container.started"
	EventContainerStopped EventType = "container.stopped"
	EventContainerKilled  EventType = "container.killed"
	EventContainerDeleted EventType = "container.deleted"
	EventImagePulled      EventType = "image.pulled"
	EventImageTagged      EventType = "image.tagged"
	EventImageDeleted     EventType = "image.deleted"
	EventImagePruned      EventType = "image.pruned"
	EventNetworkCreated   EventType = "network.created"
	EventNetworkDeleted   EventType = "network.deleted"
	EventVolumeCreated    EventType = "volume.created"
	EventVolumeDeleted    EventType = "volume.deleted"
	EventBuilderState     EventType = "builder.state"
)

// Event represents a domain event that occurred in the system.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Kind      Kind
	EntityID  string
	Data      any
}

// ResourceEventPayload contains data for resource lifecycle events.
type ResourceEventPayload struct {
	Kind     Kind
	EntityID string
	Action   string
}

// BuilderEventPayload contains data for builder state changes.
type BuilderEventPayload struct {
	State     BuilderState
	LastError string
}

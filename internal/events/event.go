// Package events provides event bus infrastructure for decoupled,
// event-driven communication between modules.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is the base interface all domain events must implement.
type Event interface {
	// EventName returns a unique identifier for the event type.
	EventName() string
	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent creates a new base event with the current timestamp.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler processes events of a specific type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is an adapter to allow ordinary functions to be used as handlers.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus is the interface for publishing and subscribing to domain events.
type Bus interface {
	// Publish sends an event to all registered handlers for that event type.
	// Handlers are executed asynchronously.
	Publish(ctx context.Context, event Event)

	// PublishSync sends an event and waits for all handlers to complete.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler for a specific event type.
	// The eventName should match the value returned by Event.EventName().
	Subscribe(eventName string, handler Handler)
}

// LeadQualified is emitted once a conversation's fact record is complete and
// scored. The handoff pipeline listens for it to assign a human agent.
type LeadQualified struct {
	BaseEvent
	ConversationID uuid.UUID `json:"conversationId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Score          int       `json:"score"`
	Tier           string    `json:"tier"`
}

// EventName returns the event identifier.
func (e LeadQualified) EventName() string { return "qualification.lead.qualified" }

// ExtractionFailed is emitted when a turn could not advance the fact record.
// Observability only; the conversation continues in a degraded-safe state.
type ExtractionFailed struct {
	BaseEvent
	ConversationID uuid.UUID `json:"conversationId"`
	Reason         string    `json:"reason"`
}

// EventName returns the event identifier.
func (e ExtractionFailed) EventName() string { return "qualification.extraction.failed" }

package events

import "time"

// Event is the contract every marketplace event carries over NATS.
type Event interface {
	// EventType returns the unique code for this event
	// (e.g., "EXPERT_MATCHED", "SESSION_PAID").
	EventType() string

	// Payload returns the data associated with the event. Events that
	// should reach connected users include a notify_user_ids entry.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation the services publish.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

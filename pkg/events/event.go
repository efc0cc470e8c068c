package events

import "time"

// Event is the contract for everything published on the internal bus and
// mirrored to NATS.
type Event interface {
	// EventType returns the unique code for this event
	// (e.g., "REQUEST_STATUS_CHANGED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain struct implementation used across services.
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

// StatusChanged builds the lifecycle transition event emitted by the
// request lifecycle engine.
func StatusChanged(requestID, email, orderNumber, from, to string) BaseEvent {
	now := time.Now()
	return BaseEvent{
		Type: "REQUEST_STATUS_CHANGED",
		Data: map[string]interface{}{
			"request_id":   requestID,
			"email":        email,
			"order_number": orderNumber,
			"from":         from,
			"to":           to,
			"occurred_at":  now,
		},
		OccurredAt: now,
	}
}

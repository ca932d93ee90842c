package events

import "time"

// Event is the contract every system event satisfies before it goes on
// the bus.
type Event interface {
	// EventType returns the code of the event, e.g. "conversation.completed".
	EventType() string

	// Payload returns the event data.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a plain implementation for events that carry only a
// payload map.
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

// Event codes published by the chat service.
const (
	TypeConversationCompleted = "conversation.completed"
	TypeUserRegistered        = "user.registered"
)

// NewConversationCompleted builds the event emitted when a session
// reaches a product card.
func NewConversationCompleted(sessionID, userID, product, article string) BaseEvent {
	return BaseEvent{
		Type: TypeConversationCompleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
			"product":    product,
			"article":    article,
		},
		OccurredAt: time.Now(),
	}
}

// NewUserRegistered builds the event emitted after a successful signup.
func NewUserRegistered(userID, email string) BaseEvent {
	return BaseEvent{
		Type: TypeUserRegistered,
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
		},
		OccurredAt: time.Now(),
	}
}

package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a plain implementation for events that carry a free-form
// payload and need no behavior of their own.
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

// TurnCompletedType marks one finished conversation turn. Consumed by
// external analytics, never by the conversation pipeline itself.
const TurnCompletedType = "CHAT_TURN_COMPLETED"

// NewTurnCompleted builds the event emitted after each conversation turn.
func NewTurnCompleted(sessionId, route string, inputTokens, outputTokens, retryCount int) Event {
	return BaseEvent{
		Type: TurnCompletedType,
		Data: map[string]interface{}{
			"chat_session_id": sessionId,
			"route":           route,
			"input_tokens":    inputTokens,
			"output_tokens":   outputTokens,
			"retry_count":     retryCount,
		},
		OccurredAt: time.Now(),
	}
}

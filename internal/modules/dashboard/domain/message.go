package domain

import "time"

// Metadata carries string attributes attached to a message.
type Metadata map[string]string

// Message is the envelope sent to websocket sessions and published as a fetch event.
type Message struct {
	Topic      string    `json:"topic"`
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	ResourceID string    `json:"resourceId,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	Data       any       `json:"data,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// BuildStateMessage wraps a store state for delivery to a view.
func BuildStateMessage(state State, sessionID string, at time.Time) *Message {
	metadata := Metadata{}
	if sessionID != "" {
		metadata["sessionId"] = sessionID
	}
	return &Message{
		Topic:     StateTopic(state.Resource),
		Entity:    state.Resource,
		Action:    ActionState,
		Metadata:  metadata,
		Data:      state,
		Timestamp: at.UTC(),
	}
}

// BuildErrorMessage reports a command that could not be processed.
func BuildErrorMessage(entity, message string, at time.Time) *Message {
	topic := TopicSystemError
	if entity != "" {
		topic = ErrorTopic(entity)
	} else {
		entity = SystemEntity
	}
	return &Message{
		Topic:     topic,
		Entity:    entity,
		Action:    ActionError,
		Data:      map[string]string{"message": message},
		Timestamp: at.UTC(),
	}
}

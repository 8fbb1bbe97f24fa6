package broker

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"marketDash/internal/modules/dashboard/domain"
)

type rawEvent struct {
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId,omitempty"`
	Topic      string            `json:"topic"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       json.RawMessage   `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// encodeMessage builds the Kafka record for msg, keyed by entity so one resource's events stay
// on a single partition.
func encodeMessage(msg *domain.Message) (kafka.Message, error) {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		return kafka.Message{}, err
	}
	value, err := json.Marshal(rawEvent{
		Entity:     msg.Entity,
		Action:     msg.Action,
		ResourceID: msg.ResourceID,
		Topic:      msg.Topic,
		Metadata:   msg.Metadata,
		Data:       data,
		Timestamp:  msg.Timestamp.UTC(),
	})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(msg.Entity),
		Value: value,
		Time:  msg.Timestamp,
	}, nil
}

func decodeMessage(m kafka.Message) *domain.Message {
	msg := &domain.Message{Timestamp: m.Time.UTC()}
	if m.Time.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	var event rawEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		entity, action := inferEntityActionFromTopic(m.Topic)
		msg.Topic = m.Topic
		msg.Entity = entity
		msg.Action = action
		msg.Data = string(m.Value)
		return msg
	}

	msg.Entity = firstNonEmpty(event.Entity, string(m.Key))
	msg.Action = firstNonEmpty(event.Action, "unknown")
	msg.ResourceID = event.ResourceID
	msg.Metadata = event.Metadata
	if len(event.Data) > 0 {
		var data any
		if err := json.Unmarshal(event.Data, &data); err == nil {
			msg.Data = data
		}
	}
	if !event.Timestamp.IsZero() {
		msg.Timestamp = event.Timestamp.UTC()
	}

	if event.Topic != "" {
		msg.Topic = event.Topic
	} else {
		msg.Topic = msg.Entity + "." + msg.Action
	}
	return msg
}

func inferEntityActionFromTopic(topic string) (string, string) {
	parts := strings.Split(topic, ".")
	if len(parts) >= 2 {
		entity := strings.TrimSpace(parts[len(parts)-2])
		action := strings.TrimSpace(parts[len(parts)-1])
		if entity != "" && action != "" {
			return entity, action
		}
	}
	return strings.TrimSpace(topic), "unknown"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

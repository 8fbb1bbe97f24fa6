package port

import (
	"context"

	"marketDash/internal/modules/dashboard/domain"
)

// EventPublisher forwards store events to an external sink such as a Kafka topic.
type EventPublisher interface {
	Publish(ctx context.Context, msg *domain.Message) error
}

// Broadcaster delivers messages to connected websocket sessions.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message)
}

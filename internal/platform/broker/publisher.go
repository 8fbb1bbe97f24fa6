package broker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"marketDash/internal/modules/dashboard/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes store fetch events to a single Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher returns nil when no brokers are configured; callers skip publishing then.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if len(brokers) == 0 {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				slog.Warn("kafka publish failed", slog.String("topic", topic), slog.Int("messages", len(messages)), slog.Any("error", err))
			}
		},
	}
	return &KafkaPublisher{writer: writer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return nil
	}
	record, err := encodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", msg.Topic, err)
	}
	if err := p.writer.WriteMessages(ctx, record); err != nil {
		return fmt.Errorf("write %s event: %w", msg.Topic, err)
	}
	slog.Debug("kafka event queued", slog.String("topic", p.topic), slog.String("event", msg.Topic), slog.String("entity", msg.Entity))
	return nil
}

// Close flushes pending events.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

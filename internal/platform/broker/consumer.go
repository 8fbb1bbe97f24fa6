package broker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"marketDash/internal/modules/dashboard/domain"
)

const defaultReadRetryDelay = 500 * time.Millisecond

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer tails the fetch event topic.
type KafkaConsumer struct {
	reader     messageReader
	retryDelay time.Duration
}

func NewKafkaConsumer(brokers []string, groupID string, topic string) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}),
		retryDelay: defaultReadRetryDelay,
	}
}

// Consume hands every event to handler until ctx is done. Handler errors are logged and
// consumption continues; read errors are retried after a short delay.
func (c *KafkaConsumer) Consume(ctx context.Context, handler func(*domain.Message) error) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			slog.Warn("kafka read error", slog.Any("error", err), slog.Duration("retryIn", c.readRetryDelay()))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.readRetryDelay()):
			}
			continue
		}
		msg := decodeMessage(m)
		slog.Debug("kafka message consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("entity", msg.Entity),
			slog.String("action", msg.Action),
		)
		if err := handler(msg); err != nil {
			slog.Warn("kafka handler error", slog.Any("error", err))
		}
	}
}

func (c *KafkaConsumer) readRetryDelay() time.Duration {
	if c.retryDelay <= 0 {
		return defaultReadRetryDelay
	}
	return c.retryDelay
}

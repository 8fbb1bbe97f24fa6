package broker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"marketDash/internal/modules/dashboard/domain"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { w.closed = true; return nil }

type fakeReader struct {
	messages []kafka.Message
	closed   bool
}

func (r *fakeReader) ReadMessage(_ context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := r.messages[0]
	r.messages = r.messages[1:]
	return m, nil
}

func (r *fakeReader) Close() error { r.closed = true; return nil }

func fetchedEvent() *domain.Message {
	return &domain.Message{
		Topic:     domain.FetchedTopic("orders"),
		Entity:    "orders",
		Action:    domain.ActionFetched,
		Metadata:  domain.Metadata{"dateFrom": "2024-01-01", "dateTo": "2024-01-08", "limit": "25"},
		Data:      map[string]any{"fetched": 3, "filtered": 2},
		Timestamp: time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewKafkaPublisherWithoutBrokers(t *testing.T) {
	if p := NewKafkaPublisher(nil, "dashboard.events"); p != nil {
		t.Fatalf("expected nil publisher, got %+v", p)
	}
}

func TestKafkaPublisherWritesEncodedEvent(t *testing.T) {
	writer := &fakeWriter{}
	publisher := &KafkaPublisher{writer: writer, topic: "dashboard.events"}

	if err := publisher.Publish(context.Background(), fetchedEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(writer.written) != 1 {
		t.Fatalf("expected 1 record, got %d", len(writer.written))
	}
	record := writer.written[0]
	if string(record.Key) != "orders" {
		t.Fatalf("unexpected key: %s", record.Key)
	}

	var payload map[string]any
	if err := json.Unmarshal(record.Value, &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["topic"] != "orders.fetched" || payload["action"] != "fetched" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	data, _ := payload["data"].(map[string]any)
	if data["fetched"] != float64(3) {
		t.Fatalf("unexpected data: %v", payload["data"])
	}

	if err := publisher.Close(); err != nil || !writer.closed {
		t.Fatalf("expected writer to be closed, err=%v", err)
	}
}

func TestKafkaPublisherWrapsWriteErrors(t *testing.T) {
	boom := errors.New("broker down")
	publisher := &KafkaPublisher{writer: &fakeWriter{err: boom}, topic: "dashboard.events"}

	err := publisher.Publish(context.Background(), fetchedEvent())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if err := publisher.Publish(context.Background(), nil); err != nil {
		t.Fatalf("nil message should be ignored, got %v", err)
	}
}

func TestDecodeMessageRoundTripsEncodedEvent(t *testing.T) {
	record, err := encodeMessage(fetchedEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := decodeMessage(record)
	if msg.Topic != "orders.fetched" || msg.Entity != "orders" || msg.Action != "fetched" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Metadata["dateTo"] != "2024-01-08" {
		t.Fatalf("unexpected metadata: %v", msg.Metadata)
	}
	if !msg.Timestamp.Equal(fetchedEvent().Timestamp) {
		t.Fatalf("unexpected timestamp: %s", msg.Timestamp)
	}
}

func TestDecodeMessageFallsBackToTopic(t *testing.T) {
	msg := decodeMessage(kafka.Message{Topic: "marketdash.sales.failed", Value: []byte("not json")})
	if msg.Entity != "sales" || msg.Action != "failed" {
		t.Fatalf("unexpected inference: %+v", msg)
	}
	if msg.Data != "not json" {
		t.Fatalf("unexpected data: %v", msg.Data)
	}

	msg = decodeMessage(kafka.Message{Key: []byte("stocks"), Value: []byte(`{"action":"fetched"}`)})
	if msg.Entity != "stocks" || msg.Topic != "stocks.fetched" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestKafkaConsumerStopsAtEndOfStream(t *testing.T) {
	first, _ := encodeMessage(fetchedEvent())
	reader := &fakeReader{messages: []kafka.Message{first, {Topic: "x.y", Value: []byte("raw")}}}
	consumer := &KafkaConsumer{reader: reader}

	var topics []string
	err := consumer.Consume(context.Background(), func(msg *domain.Message) error {
		topics = append(topics, msg.Topic)
		return errors.New("ignored")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(topics) != 2 || topics[0] != "orders.fetched" || topics[1] != "x.y" {
		t.Fatalf("unexpected topics: %v", topics)
	}
	if !reader.closed {
		t.Fatal("expected reader to be closed")
	}
}

type failingReader struct {
	mu     sync.Mutex
	reads  int
	closed bool
}

func (r *failingReader) ReadMessage(context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	return kafka.Message{}, errors.New("broker unavailable")
}

func (r *failingReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func TestKafkaConsumerBacksOffOnReadErrors(t *testing.T) {
	reader := &failingReader{}
	consumer := &KafkaConsumer{reader: reader, retryDelay: 20 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := consumer.Consume(ctx, func(*domain.Message) error {
		t.Fatal("handler must not run")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reader.mu.Lock()
	defer reader.mu.Unlock()
	if reader.reads == 0 || reader.reads > 10 {
		t.Fatalf("expected a handful of paced reads, got %d", reader.reads)
	}
	if !reader.closed {
		t.Fatal("expected reader to be closed")
	}
}

package domain

import (
	"testing"
	"time"
)

func TestBuildStateMessage(t *testing.T) {
	at := time.Date(2025, time.October, 19, 15, 4, 0, 0, time.FixedZone("MSK", 3*3600))
	msg := BuildStateMessage(State{Resource: "orders"}, "session-1", at)

	if msg.Topic != "orders.state" {
		t.Fatalf("unexpected topic: %s", msg.Topic)
	}
	if msg.Metadata["sessionId"] != "session-1" {
		t.Fatalf("sessionId metadata mismatch: %v", msg.Metadata)
	}
	if !msg.Timestamp.Equal(at) || msg.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp mismatch: %s", msg.Timestamp)
	}
}

func TestBuildErrorMessageFallsBackToSystemTopic(t *testing.T) {
	msg := BuildErrorMessage("", "unknown command", time.Now())
	if msg.Topic != TopicSystemError || msg.Entity != SystemEntity {
		t.Fatalf("unexpected message: %+v", msg)
	}

	scoped := BuildErrorMessage("stocks", "bad payload", time.Now())
	if scoped.Topic != "stocks.error" {
		t.Fatalf("unexpected topic: %s", scoped.Topic)
	}
}

func TestBuildResourceTopicRejectsBlankParts(t *testing.T) {
	if StateTopic("  ") != "" {
		t.Fatal("expected empty topic for blank resource")
	}
	if FetchedTopic(" sales ") != "sales.fetched" {
		t.Fatalf("unexpected topic: %s", FetchedTopic(" sales "))
	}
}

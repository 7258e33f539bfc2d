package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	mu        sync.Mutex
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	ch := &fakeChannel{}
	p := NewAMQPPublisher(nil, ch, "votes")

	event := NewVoteEvent("p1", "red", 3)
	if err := p.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(ch.published) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(ch.published))
	}
	if ch.keys[0] != "votes" {
		t.Errorf("Expected routing key votes, got %s", ch.keys[0])
	}

	msg := ch.published[0]
	if msg.ContentType != "application/json" {
		t.Errorf("Expected application/json, got %s", msg.ContentType)
	}
	if msg.MessageId != event.ID {
		t.Errorf("Expected message id %s, got %s", event.ID, msg.MessageId)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.Body, &decoded); err != nil {
		t.Fatalf("Body is not JSON: %v", err)
	}
	if decoded["poll_id"] != "p1" || decoded["choice"] != "red" || decoded["count"] != float64(3) {
		t.Errorf("Unexpected body: %s", msg.Body)
	}
}

func TestPublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := NewAMQPPublisher(nil, ch, "votes")

	err := p.Publish(context.Background(), NewVoteEvent("p1", "red", 1))
	if err == nil {
		t.Fatal("Expected error from closed channel")
	}
	if !errors.Is(err, ch.err) {
		t.Errorf("Expected wrapped channel error, got %v", err)
	}
}

func TestPublishConcurrent(t *testing.T) {
	ch := &fakeChannel{}
	p := NewAMQPPublisher(nil, ch, "votes")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Publish(context.Background(), NewVoteEvent("p", "c", 1))
		}()
	}
	wg.Wait()

	if len(ch.published) != 20 {
		t.Errorf("Expected 20 messages, got %d", len(ch.published))
	}
}

func TestNewVoteEventIDsAreUnique(t *testing.T) {
	a := NewVoteEvent("p", "c", 1)
	b := NewVoteEvent("p", "c", 2)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("Expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.RecordedAt.IsZero() {
		t.Error("Expected RecordedAt to be set")
	}
}

func TestClose(t *testing.T) {
	ch := &fakeChannel{}
	p := NewAMQPPublisher(nil, ch, "votes")
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !ch.closed {
		t.Error("Expected channel to be closed")
	}

	var nop NopPublisher
	if err := nop.Publish(context.Background(), NewVoteEvent("p", "c", 1)); err != nil {
		t.Errorf("NopPublisher should never fail: %v", err)
	}
}

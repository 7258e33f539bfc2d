// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/danielhkuo/quickly-tally/models"
)

const (
	dialAttempts = 5
	dialBackoff  = 5 * time.Second
)

// Channel is the subset of *amqp.Channel the publisher needs
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes vote events to a durable queue on the default exchange.
// An amqp channel is not safe for concurrent publishes, so calls are serialized.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    Channel
	queue string
	mu    sync.Mutex
}

// NewAMQPPublisher wraps an already declared channel. conn may be nil.
func NewAMQPPublisher(conn *amqp.Connection, ch Channel, queue string) *AMQPPublisher {
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue}
}

// Connect dials url with retries, opens a channel and declares queue
func Connect(ctx context.Context, url, queue string) (*AMQPPublisher, error) {
	conn, err := dial(ctx, url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", queue, err)
	}

	slog.Info("vote events enabled", "queue", queue)
	return NewAMQPPublisher(conn, ch, queue), nil
}

func dial(ctx context.Context, url string) (*amqp.Connection, error) {
	var err error
	for attempt := 1; attempt <= dialAttempts; attempt++ {
		var conn *amqp.Connection
		if conn, err = amqp.Dial(url); err == nil {
			slog.Info("connected to RabbitMQ")
			return conn, nil
		}

		slog.Warn("failed to connect to RabbitMQ", "attempt", attempt, "error", err)
		if attempt == dialAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dialBackoff):
		}
	}

	return nil, fmt.Errorf("could not connect to RabbitMQ after %d attempts: %w", dialAttempts, err)
}

func (p *AMQPPublisher) Publish(ctx context.Context, event models.VoteEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode vote event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.RecordedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish vote event: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

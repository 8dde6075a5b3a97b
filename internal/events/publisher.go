package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	appID          = "socialnet"
	publishTimeout = 5 * time.Second
)

// ErrNotAcknowledged is returned when the broker nacks a published event.
var ErrNotAcknowledged = errors.New("event not acknowledged by broker")

// Publisher ships domain events to the message bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// amqpChannel is the part of *amqp.Channel the publisher uses.
type amqpChannel interface {
	PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (*amqp.DeferredConfirmation, error)
	Close() error
}

// AMQPPublisher publishes sealed envelopes on a durable topic exchange with publisher confirms.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	now      func() time.Time
}

// NewPublisher dials RabbitMQ, declares exchange as a durable topic exchange and puts the channel in
// confirm mode.
func NewPublisher(amqpURL, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}

	p := newAMQPPublisher(ch, exchange)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch amqpChannel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{channel: ch, exchange: exchange, now: time.Now}
}

// Publish seals event and waits for the broker to confirm it.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	envelope := Seal(event, p.now().UTC())
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode %s: %w", envelope.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return amqp.ErrClosed
	}

	confirm, err := p.channel.PublishWithDeferredConfirmWithContext(ctx, p.exchange, event.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    envelope.ID,
		Type:         envelope.Type,
		AppId:        appID,
		Timestamp:    envelope.OccurredAt,
		Headers:      amqp.Table{"version": strconv.Itoa(envelope.Version)},
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", envelope.Type, err)
	}
	// nil outside confirm mode
	if confirm == nil {
		return nil
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("await confirm for %s: %w", envelope.ID, err)
	}
	if !acked {
		return ErrNotAcknowledged
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// NoopPublisher logs and drops events. It stands in when no broker is configured.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (n *NoopPublisher) Publish(ctx context.Context, event Event) error {
	n.logger.DebugContext(ctx, "event bus not configured, dropping event", "routing_key", event.RoutingKey(), "event_type", event.EventType())
	return nil
}

func (n *NoopPublisher) Close() error { return nil }

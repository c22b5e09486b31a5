package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	EventsExchange           = "storefront.events"
	CartCheckedOutRoutingKey = "cart.checkedout.v1"
	publishTimeout           = 3 * time.Second
)

// Publisher publishes storefront events
type Publisher interface {
	PublishCartCheckedOut(ctx context.Context, ev CartCheckedOut) error
}

// NopPublisher drops every event; used when no broker is configured
type NopPublisher struct{}

func (NopPublisher) PublishCartCheckedOut(context.Context, CartCheckedOut) error { return nil }

// RabbitPublisher publishes to a durable topic exchange
type RabbitPublisher struct {
	ch     *amqp.Channel
	logger *zap.Logger
}

// Dial connects to the broker at url
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// NewRabbitPublisher opens a channel on conn and declares the events exchange
func NewRabbitPublisher(conn *amqp.Connection, logger *zap.Logger) (*RabbitPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the exchange so publish never fails due to missing infra
	if err := ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare %s: %w", EventsExchange, err)
	}

	return &RabbitPublisher{ch: ch, logger: logger}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishCartCheckedOut(ctx context.Context, ev CartCheckedOut) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.EventName, err)
	}
	if err := p.publishJSON(ctx, CartCheckedOutRoutingKey, ev.EventID, body); err != nil {
		return err
	}
	p.logger.Debug("Published event", zap.String("event", ev.EventName), zap.String("event_id", ev.EventID))
	return nil
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey, messageID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"product-catalog/internal/catalog"

	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerTag = "catalog-notifications"

// Consumer drains catalog events off the queue and logs them. It stands
// in for downstream alerting or search-index refresh.
type Consumer struct {
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
}

// NewConsumer opens a channel capped at prefetch unacked deliveries and
// declares the queue so either side of the pipeline can start first.
func NewConsumer(conn *amqp.Connection, queue string, prefetch int, logger *slog.Logger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set prefetch %d: %w", prefetch, err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}

	return &Consumer{
		channel: ch,
		queue:   queue,
		logger:  logger,
	}, nil
}

// Listen consumes until the context is cancelled or the channel closes.
// A delivery that fails to decode is acked away rather than requeued;
// requeueing malformed payloads would just loop them forever.
func (c *Consumer) Listen(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue,
		consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}

			if err := c.handleDelivery(&msg); err != nil {
				c.logger.Error("drop undecodable delivery",
					"message_id", msg.MessageId,
					"type", msg.Type,
					"error", err,
				)
				_ = msg.Nack(false, false)
				continue
			}

			_ = msg.Ack(false)
		}
	}
}

func (c *Consumer) handleDelivery(msg *amqp.Delivery) error {
	var event catalog.ProductEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}

	// Publisher stamps the event type on the delivery; trust the body
	// only when the property is missing.
	eventType := msg.Type
	if eventType == "" {
		eventType = event.EventType
	}

	attrs := []any{
		"event_type", eventType,
		"message_id", msg.MessageId,
		"product_id", event.ProductID,
		"name", event.Name,
		"timestamp", event.Timestamp,
	}
	if event.Stock != nil {
		attrs = append(attrs, "stock", *event.Stock)
	}
	c.logger.Info("catalog event", attrs...)

	return nil
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}

package amqp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	applog "cashflow/internal/log"
)

// EventHandler processes one decoded change event. A returned error
// requeues the delivery.
type EventHandler func(ctx context.Context, event *CashFlowEvent) error

// ErrDeliveriesClosed is returned when the broker closes the delivery channel.
var ErrDeliveriesClosed = errors.New("message channel closed")

// ConsumeCashFlowEvents delivers events from the queue to handler until ctx
// is done or the channel closes. Deliveries are acknowledged manually.
func (c *Client) ConsumeCashFlowEvents(ctx context.Context, handler EventHandler) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return fmt.Errorf("start consuming: channel not open")
	}

	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.log().InfoContext(ctx, "Started consuming cash flow events", "queue", c.queueName)
	return c.consume(ctx, msgs, handler)
}

func (c *Client) consume(ctx context.Context, msgs <-chan amqp091.Delivery, handler EventHandler) error {
	for {
		select {
		case <-ctx.Done():
			c.log().InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.dispatch(ctx, delivery, handler)
		}
	}
}

// dispatch decodes one delivery and settles it. Undecodable bodies are
// dropped; handler failures are requeued.
func (c *Client) dispatch(ctx context.Context, delivery amqp091.Delivery, handler EventHandler) {
	event, err := CashFlowEventFromJSON(delivery.Body)
	if err != nil {
		c.log().ErrorContext(ctx, "Failed to unmarshal message",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeValidation)
		_ = delivery.Nack(false, false)
		return
	}

	if err := handler(ctx, event); err != nil {
		c.log().ErrorContext(ctx, "Failed to handle message",
			applog.FieldError, err,
			"event", event.Event,
			applog.FieldCashFlowID, event.ID)
		_ = delivery.Nack(false, true)
		return
	}

	_ = delivery.Ack(false)
	c.log().DebugContext(ctx, "Processed cash flow event",
		"event", event.Event,
		applog.FieldCashFlowID, event.ID)
}

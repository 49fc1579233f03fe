// Package amqp carries ledger change events over RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "expensetracker/internal/log"
)

const (
	publishTimeout = 5 * time.Second
	consumerTag    = "expensetracker-watch"
)

// Client publishes and consumes ExpenseEvents on one direct exchange. The
// queue name doubles as the routing key.
type Client struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
	logger   *slog.Logger
}

// NewClient dials the broker and declares the exchange, the durable queue and
// the binding between them.
func NewClient(url, exchange, queue string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &Client{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		queue:    queue,
		logger:   slog.Default().With(applog.FieldComponent, applog.ComponentAMQP),
	}
	if err := c.declareTopology(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) declareTopology() error {
	const durable, autoDelete, internal, exclusive, noWait = true, false, false, false, false

	if err := c.channel.ExchangeDeclare(c.exchange, amqp091.ExchangeDirect, durable, autoDelete, internal, noWait, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", c.exchange, err)
	}
	if _, err := c.channel.QueueDeclare(c.queue, durable, autoDelete, exclusive, noWait, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}
	if err := c.channel.QueueBind(c.queue, c.queue, c.exchange, noWait, nil); err != nil {
		return fmt.Errorf("bind %s to %s: %w", c.queue, c.exchange, err)
	}
	return nil
}

// PublishExpenseEvent sends event as a persistent JSON message.
func (c *Client) PublishExpenseEvent(ctx context.Context, event *ExpenseEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    event.Timestamp,
		Body:         body,
	}
	if err := c.channel.PublishWithContext(ctx, c.exchange, c.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Action, err)
	}

	c.logger.DebugContext(ctx, "Expense event published",
		"action", event.Action,
		applog.FieldExpenseID, event.ID,
		applog.FieldCount, event.Count)
	return nil
}

// ConsumeExpenseEvents delivers events to handler until ctx is cancelled.
// Undecodable messages are dropped; a handler error requeues the message.
func (c *Client) ConsumeExpenseEvents(ctx context.Context, handler func(*ExpenseEvent) error) error {
	deliveries, err := c.channel.ConsumeWithContext(ctx, c.queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	c.logger.InfoContext(ctx, "Watching expense events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				// Cancelling ctx also closes the delivery channel.
				if err := ctx.Err(); err != nil {
					return err
				}
				return errors.New("delivery channel closed by broker")
			}
			c.dispatch(ctx, d, handler)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, d amqp091.Delivery, handler func(*ExpenseEvent) error) {
	event, err := ExpenseEventFromJSON(d.Body)
	if err != nil {
		c.logger.WarnContext(ctx, "Dropping undecodable event", applog.FieldError, err)
		_ = d.Nack(false, false)
		return
	}
	if err := handler(event); err != nil {
		c.logger.ErrorContext(ctx, "Event handler failed, requeueing",
			"action", event.Action,
			applog.FieldError, err)
		_ = d.Nack(false, true)
		return
	}
	_ = d.Ack(false)
}

// Close releases the channel and the connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp091.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp091.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

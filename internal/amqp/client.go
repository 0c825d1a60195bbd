package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "cashflow/internal/log"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures          = 5
	openTimeout          = 30 * time.Second
	maxReconnectAttempts = 8
	publishTimeout       = 2 * time.Second
)

// Client publishes cash flow change events to a durable direct exchange.
type Client struct {
	url          string
	exchangeName string
	queueName    string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time

	// reconnecting is 1 while a background reconnect loop runs; closed is
	// set by Close and stops it.
	reconnecting int32
	closed       int32
	backoff      func(attempt int) time.Duration

	logger *slog.Logger
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		backoff:      exponentialBackoff,
		logger:       slog.Default().With(applog.FieldComponent, applog.ComponentAMQP),
	}

	if err := client.connect(); err != nil {
		return nil, err
	}
	return client, nil
}

// connect dials the broker and declares the topology. Callers hold no lock.
func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := declare(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.mu.Lock()
	old, oldCh := c.conn, c.channel
	c.conn, c.channel = conn, channel
	c.mu.Unlock()

	if oldCh != nil {
		oldCh.Close()
	}
	if old != nil {
		old.Close()
	}
	return nil
}

func declare(ch *amqp091.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name on a direct exchange
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishCashFlowEvent makes a single publish attempt for the record id.
// It never waits on the broker beyond publishTimeout: a connection error
// starts a background reconnect and is returned at once.
func (c *Client) PublishCashFlowEvent(ctx context.Context, event, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, refusing to publish %s", event)
	}

	body, err := NewCashFlowEvent(event, id).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, body); err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.reconnectInBackground()
		}
		return fmt.Errorf("publish message: %w", err)
	}

	c.recordSuccess()
	c.log().InfoContext(ctx, "Published cash flow event",
		"event", event,
		applog.FieldCashFlowID, id,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// reconnectInBackground starts at most one reconnect loop. Events published
// while it runs fail fast and are dropped.
func (c *Client) reconnectInBackground() {
	if atomic.LoadInt32(&c.closed) == 1 || !atomic.CompareAndSwapInt32(&c.reconnecting, 0, 1) {
		return
	}
	backoff := c.backoff
	if backoff == nil {
		backoff = exponentialBackoff
	}

	go func() {
		defer atomic.StoreInt32(&c.reconnecting, 0)
		for attempt := 0; attempt < maxReconnectAttempts; attempt++ {
			time.Sleep(backoff(attempt))
			if atomic.LoadInt32(&c.closed) == 1 {
				return
			}
			if err := c.connect(); err != nil {
				c.log().Warn("AMQP reconnect failed",
					"attempt", attempt+1,
					applog.FieldError, err)
				continue
			}
			if atomic.LoadInt32(&c.closed) == 1 {
				// Close ran while we were dialing.
				_ = c.closeConnection()
				return
			}
			c.log().Info("AMQP connection restored", "attempt", attempt+1)
			return
		}
		c.log().Error("AMQP reconnect gave up", "attempts", maxReconnectAttempts)
	}()
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil || ch.IsClosed() {
		return amqp091.ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// exponentialBackoff returns 1s doubled per attempt, capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	const maxBackoff = 30 * time.Second
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection", "eof", "broken pipe", "closed network"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Close stops any reconnect loop and closes the connection.
func (c *Client) Close() error {
	atomic.StoreInt32(&c.closed, 1)
	return c.closeConnection()
}

func (c *Client) closeConnection() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

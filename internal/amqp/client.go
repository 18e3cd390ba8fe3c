// Package amqp publishes notifications to a RabbitMQ exchange and consumes
// them from the bound queue.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "fintastic/internal/log"
	"fintastic/internal/notify"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second
	maxAttempts    = 3
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *applog.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

var _ notify.Notifier = (*Client)(nil)

// NewClient dials url and declares a durable direct exchange with one bound
// queue.
func NewClient(url, exchangeName, queueName string, logger *applog.Logger) (*Client, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger.WithComponent(applog.ComponentAMQP),
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	c.conn, c.channel = conn, channel
	return nil
}

func setup(ch *amqp091.Channel, exchange, queue string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Send implements notify.Notifier by publishing a persistent JSON message.
// Connection errors trigger a reconnect with exponential backoff.
func (c *Client) Send(ctx context.Context, recipient, templateID string, params map[string]any) (notify.Result, error) {
	if recipient == "" {
		return notify.Result{}, notify.ErrEmptyRecipient
	}
	if c.isCircuitOpen() {
		return notify.Result{}, fmt.Errorf("publish %s: %w", templateID, ErrCircuitOpen)
	}
	if err := ctx.Err(); err != nil {
		return notify.Result{}, err
	}

	msg := NewNotificationMessage(recipient, templateID, params)
	body, err := msg.ToJSON()
	if err != nil {
		return notify.Result{}, fmt.Errorf("marshal message: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return notify.Result{}, ctx.Err()
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
			if err := c.reconnect(); err != nil {
				lastErr = err
				c.recordFailure()
				continue
			}
		}

		lastErr = c.publish(ctx, msg.ID, body)
		if lastErr == nil {
			c.recordSuccess()
			c.logger.InfoContext(ctx, "Published notification",
				"message_id", msg.ID,
				"template", templateID,
				applog.FieldOwnerID, recipient,
				"exchange", c.exchangeName)
			return notify.Result{MessageID: msg.ID, Channel: "amqp"}, nil
		}
		c.recordFailure()
		if !isConnectionError(lastErr) {
			break
		}
		c.logger.WarnContext(ctx, "Publish failed, reconnecting",
			"attempt", attempt+1,
			applog.FieldError, lastErr)
	}
	return notify.Result{}, fmt.Errorf("publish %s: %w", templateID, lastErr)
}

func (c *Client) publish(ctx context.Context, id string, body []byte) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
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
			MessageId:    id,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// MessageHandler processes one consumed notification. A returned error
// requeues the delivery.
type MessageHandler func(ctx context.Context, msg *NotificationMessage) error

// ConsumeNotifications delivers messages from the queue to handler until ctx
// is done or the channel closes. Malformed bodies are dropped.
func (c *Client) ConsumeNotifications(ctx context.Context, handler MessageHandler) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return amqp091.ErrClosed
	}

	msgs, err := ch.ConsumeWithContext(ctx,
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming notifications", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed: %w", amqp091.ErrClosed)
			}

			msg, err := NotificationMessageFromJSON(delivery.Body)
			if err != nil {
				c.logger.ErrorContext(ctx, "Failed to unmarshal message",
					"message_id", delivery.MessageId,
					applog.FieldError, err)
				_ = delivery.Nack(false, false)
				continue
			}

			if err := handler(ctx, msg); err != nil {
				c.logger.ErrorContext(ctx, "Failed to handle message",
					"message_id", msg.ID,
					"template", msg.TemplateID,
					applog.FieldError, err)
				_ = delivery.Nack(false, !delivery.Redelivered)
				continue
			}

			_ = delivery.Ack(false)
		}
	}
}

func (c *Client) reconnect() error {
	c.closeConn()
	return c.connect()
}

// Ping reports whether the broker connection is usable.
func (c *Client) Ping(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.conn.IsClosed() {
		return amqp091.ErrClosed
	}
	return nil
}

func (c *Client) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.closeConn()
	return nil
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
	n := atomic.AddInt64(&c.failureCount, 1)
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func exponentialBackoff(attempt int) time.Duration {
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
	for _, s := range []string{"connection", "eof", "broken pipe", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

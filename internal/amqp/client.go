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

	"melodi/internal/events"
)

// Circuit breaker states
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
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// Client publishes domain events to a durable topic exchange. Routing keys
// are the configured prefix followed by the event's module and kind, e.g.
// "melodi.events.habits.completed".
type Client struct {
	url          string
	exchangeName string
	routingKey   string

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	failureCount int64
	state        int32
	lastFailure  time.Time
}

func NewClient(url, exchangeName, routingKey string) (*Client, error) {
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		routingKey:   routingKey,
	}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *Client) connectLocked() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		c.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}

	c.conn = conn
	c.channel = channel
	return nil
}

// RoutingKey returns the key an event is published under.
func (c *Client) RoutingKey(e events.Event) string {
	if c.routingKey == "" {
		return e.RoutingKey()
	}
	return c.routingKey + "." + e.RoutingKey()
}

// Publish sends e as a persistent JSON message. Connection failures trip
// the circuit breaker; while it is open Publish fails fast.
func (c *Client) Publish(ctx context.Context, e events.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", e.RoutingKey(), ErrCircuitOpen)
	}

	body, err := encodeEvent(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil || c.channel.IsClosed() {
		if err := c.connectLocked(); err != nil {
			c.recordFailure()
			return fmt.Errorf("reconnect: %w", err)
		}
	}

	key := c.RoutingKey(e)
	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		key,            // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    e.At,
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.resetLocked()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	slog.DebugContext(ctx, "Published event",
		"exchange", c.exchangeName,
		"routing_key", key,
		"entity_id", e.EntityID)
	return nil
}

// Consume binds a queue to every event under the client's routing prefix
// and hands decoded events to handler until ctx is cancelled. An empty
// queue name declares a server-named exclusive queue. Lost connections are
// re-established with exponential backoff.
func (c *Client) Consume(ctx context.Context, queue string, handler func(events.Event) error) error {
	for attempt := 0; ; attempt++ {
		err := c.consumeOnce(ctx, queue, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isConnectionError(err) {
			return err
		}

		wait := exponentialBackoff(attempt)
		slog.WarnContext(ctx, "Event consumer lost connection, retrying", "error", err, "backoff", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		c.mu.Lock()
		c.resetLocked()
		if err := c.connectLocked(); err != nil {
			slog.WarnContext(ctx, "Reconnect failed", "error", err)
		}
		c.mu.Unlock()
	}
}

func (c *Client) consumeOnce(ctx context.Context, queue string, handler func(events.Event) error) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return errors.New("connection closed")
	}

	exclusive := queue == ""
	q, err := ch.QueueDeclare(
		queue,      // name
		!exclusive, // durable
		exclusive,  // delete when unused
		exclusive,  // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	pattern := "#"
	if c.routingKey != "" {
		pattern = c.routingKey + ".#"
	}
	if err := ch.QueueBind(q.Name, pattern, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name, // queue
		"",     // consumer
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming events", "queue", q.Name, "pattern", pattern)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}

			e, err := decodeEvent(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to decode event", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := handler(e); err != nil {
				slog.ErrorContext(ctx, "Failed to handle event", "error", err, "routing_key", delivery.RoutingKey)
				delivery.Nack(false, true)
				continue
			}
			delivery.Ack(false)
		}
	}
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
	c.lastFailure = time.Now()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func (c *Client) resetLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
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
	msg := err.Error()
	for _, s := range []string{"connection", "EOF", "broken pipe", "closed"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

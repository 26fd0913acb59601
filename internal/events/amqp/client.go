// Package amqp publishes ledger events to a RabbitMQ topic exchange and
// consumes them from the bound queue.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"wealthwise/internal/events"
	"wealthwise/internal/log"
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

var (
	_ events.Publisher = (*Client)(nil)
	_ events.Consumer  = (*Client)(nil)
)

// channel is the subset of *amqp091.Channel the client uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Close() error
}

type dialFunc func(url, exchange, queue string) (io.Closer, channel, error)

// Client publishes events and reconnects lazily after connection loss.
// Repeated failures open a circuit breaker so a dead broker does not slow
// down every request.
type Client struct {
	url          string
	exchangeName string
	queueName    string
	dial         dialFunc
	logger       *log.Logger

	mu   sync.Mutex
	conn io.Closer
	ch   channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

// NewClient connects to the broker, retrying with exponential backoff until
// ctx is done or attempts are exhausted.
func NewClient(ctx context.Context, url, exchangeName, queueName string, attempts int, logger *log.Logger) (*Client, error) {
	c := newClient(url, exchangeName, queueName, dialBroker, logger)

	var err error
	for attempt := 0; attempt < max(attempts, 1); attempt++ {
		if attempt > 0 {
			wait := exponentialBackoff(attempt - 1)
			c.logger.WarnContext(ctx, "Retrying AMQP connection", "attempt", attempt, "wait", wait, log.FieldError, err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
		if _, err = c.channel(); err == nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("connect AMQP: %w", err)
}

func newClient(url, exchangeName, queueName string, dial dialFunc, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		dial:         dial,
		logger:       logger.WithComponent(log.ComponentEvents),
	}
}

func dialBroker(url, exchangeName, queueName string) (io.Closer, channel, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := setup(ch, exchangeName, queueName); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return conn, ch, nil
}

func setup(ch *amqp091.Channel, exchangeName, queueName string) error {
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if queueName == "" {
		return nil
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// every ledger event lands in the queue
	if err := ch.QueueBind(queueName, "#", exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (c *Client) channel() (channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch != nil {
		return c.ch, nil
	}
	conn, ch, err := c.dial(c.url, c.exchangeName, c.queueName)
	if err != nil {
		return nil, err
	}
	c.conn, c.ch = conn, ch
	return ch, nil
}

func (c *Client) dropConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() error {
	var err error
	if c.ch != nil {
		c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}

// Publish sends e to the exchange with its type as routing key.
func (c *Client) Publish(ctx context.Context, e events.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return ErrCircuitOpen
	}

	body, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch, err := c.channel()
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("connect AMQP: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		string(e.Type), // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    e.Timestamp,
			Type:         string(e.Type),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.dropConnection()
		}
		return fmt.Errorf("publish event: %w", err)
	}
	c.recordSuccess()

	c.logger.DebugContext(ctx, "Published event",
		log.FieldEvent, e.Type,
		"exchange", c.exchangeName)
	return nil
}

// Consume delivers events from the queue to handle. Undecodable messages are
// dropped; a handler error requeues the message.
func (c *Client) Consume(ctx context.Context, handle events.Handler) error {
	if c.queueName == "" {
		return errors.New("consume: no queue configured")
	}
	ch, err := c.channel()
	if err != nil {
		return fmt.Errorf("connect AMQP: %w", err)
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

	c.logger.InfoContext(ctx, "Started consuming ledger events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				c.dropConnection()
				return errors.New("delivery channel closed")
			}

			e, err := events.FromJSON(delivery.Body)
			if err != nil {
				c.logger.ErrorContext(ctx, "Dropping undecodable event", log.FieldError, err)
				_ = delivery.Nack(false, false)
				continue
			}

			if err := handle(ctx, e); err != nil {
				c.logger.ErrorContext(ctx, "Failed to handle event",
					log.FieldEvent, e.Type,
					log.FieldLedger, e.Ledger,
					log.FieldError, err)
				_ = delivery.Nack(false, true)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.mu.Lock()
		elapsed := time.Since(c.lastFailure)
		c.mu.Unlock()
		if elapsed > openTimeout {
			atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
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
		if atomic.SwapInt32(&c.state, StateOpen) != StateOpen {
			c.logger.Warn("AMQP circuit breaker opened", "failures", n)
		}
	}
}

// exponentialBackoff returns 1s, 2s, 4s, ... capped at 30s.
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
	if errors.Is(err, amqp091.ErrClosed) || errors.Is(err, io.EOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "closed network"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

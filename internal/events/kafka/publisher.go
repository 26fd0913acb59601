// Package kafka publishes ledger events to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"wealthwise/internal/events"
)

// Writer is the subset of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ events.Publisher = (*Publisher)(nil)

type Publisher struct {
	writer Writer
}

// New wraps an existing writer.
func New(w Writer) *Publisher {
	return &Publisher{writer: w}
}

// NewWriter builds a writer for topic. Messages are keyed by ledger so the
// events of one ledger stay ordered within a partition.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
}

func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	data, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.Ledger),
		Value: data,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

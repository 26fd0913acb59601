package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"wealthwise/internal/events"
	"wealthwise/internal/log"
)

// Reader is the subset of *kafka.Reader the subscriber needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ events.Consumer = (*Subscriber)(nil)

// Subscriber reads ledger events from a topic as part of a consumer group.
type Subscriber struct {
	reader Reader
	logger *log.Logger
}

func NewSubscriber(r Reader, logger *log.Logger) *Subscriber {
	if logger == nil {
		logger = log.Discard()
	}
	return &Subscriber{reader: r, logger: logger.WithComponent(log.ComponentEvents)}
}

// NewReader builds a group reader for topic.
func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  group,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
}

// Consume hands every message to handle and commits it once handled.
// Undecodable messages are committed and skipped. A handler error stops
// consumption without committing, so the message is read again on restart.
func (s *Subscriber) Consume(ctx context.Context, handle events.Handler) error {
	for {
		msg, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("fetch kafka message: %w", err)
		}

		e, err := events.FromJSON(msg.Value)
		if err != nil {
			s.logger.ErrorContext(ctx, "Skipping undecodable event",
				"offset", msg.Offset,
				log.FieldError, err)
		} else if err := handle(ctx, e); err != nil {
			return fmt.Errorf("handle event at offset %d: %w", msg.Offset, err)
		}

		if err := s.reader.CommitMessages(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("commit kafka message: %w", err)
		}
	}
}

func (s *Subscriber) Close() error {
	return s.reader.Close()
}

package backend

import (
	"context"
	"fmt"

	"wealthwise/internal/config"
	"wealthwise/internal/events"
	"wealthwise/internal/events/amqp"
	"wealthwise/internal/events/kafka"
	"wealthwise/internal/log"
)

const amqpConnectAttempts = 3

// NewPublisher builds the event publisher selected by EVENTS_BROKER. A broker
// that cannot be reached at startup is logged and replaced by events.Nop so
// the ledger keeps working without it.
func NewPublisher(ctx context.Context, cfg *config.Config, logger *log.Logger) events.Publisher {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentEvents)

	switch cfg.EventsBroker {
	case config.BrokerAMQP:
		client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpConnectAttempts, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP publisher, continuing without events", log.FieldError, err)
			return events.Nop{}
		}
		logger.Info("Initialized AMQP publisher", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		return client
	case config.BrokerKafka:
		logger.Info("Initialized Kafka publisher", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		return kafka.New(kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
	default:
		return events.Nop{}
	}
}

// NewConsumer builds the event consumer for the configured broker. Unlike
// NewPublisher it fails when the broker is unreachable, since a consumer is
// useless without one.
func NewConsumer(ctx context.Context, cfg *config.Config, group string, logger *log.Logger) (events.Consumer, error) {
	if logger == nil {
		logger = log.Discard()
	}

	switch cfg.EventsBroker {
	case config.BrokerAMQP:
		client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpConnectAttempts, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize AMQP consumer: %w", err)
		}
		return client, nil
	case config.BrokerKafka:
		return kafka.NewSubscriber(kafka.NewReader(cfg.KafkaBrokers, cfg.KafkaTopic, group), logger), nil
	default:
		return nil, fmt.Errorf("events broker %q cannot be consumed", cfg.EventsBroker)
	}
}

// Describe names a publisher for startup logs.
func Describe(p events.Publisher) string {
	switch p.(type) {
	case *amqp.Client:
		return config.BrokerAMQP
	case *kafka.Publisher:
		return config.BrokerKafka
	default:
		return config.BrokerNone
	}
}

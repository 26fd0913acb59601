// Package events announces ledger mutations to an optional message broker.
//
// Publishing is best effort: the ledger logs a failed publish and carries on,
// the persisted blob stays the source of truth.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wealthwise/internal/core"
)

// Type names an event. Brokers use it as the routing key.
type Type string

const (
	TypeTransactionAdded   Type = "transaction.added"
	TypeTransactionRemoved Type = "transaction.removed"
	TypeLedgerReset        Type = "ledger.reset"
)

// Event is the message body published for each mutation.
type Event struct {
	Type        Type              `json:"type"`
	Ledger      string            `json:"ledger"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// New stamps an event with the current time.
func New(t Type, ledger string, tx *core.Transaction) Event {
	return Event{Type: t, Ledger: ledger, Transaction: tx, Timestamp: time.Now().UTC()}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return e, nil
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Handler processes one consumed event. A returned error asks the broker to
// deliver the event again where the broker supports it.
type Handler func(ctx context.Context, e Event) error

// Consumer delivers events from a broker to a Handler until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, handle Handler) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

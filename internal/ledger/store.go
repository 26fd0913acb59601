// Package ledger keeps the ordered list of transactions for one ledger and
// mirrors it to a BlobStore after every change.
//
// The persisted blob, when present, always decodes to exactly the in-memory
// sequence. An empty ledger has no blob at all.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"wealthwise/internal/core"
	"wealthwise/internal/events"
	"wealthwise/internal/log"
	"wealthwise/internal/storage"
)

// Form field names reported by ValidationError.
const (
	FieldAmount      = "amount"
	FieldDescription = "description"
	FieldDate        = "date"
	FieldType        = "type"
)

// AddInput carries the raw form values of a new transaction.
type AddInput struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Kind        string `json:"type"`
}

type Option func(*Store)

// WithClock overrides the time source used for transaction ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentLedger) }
}

// WithPublisher announces mutations on p.
func WithPublisher(p events.Publisher) Option {
	return func(s *Store) { s.publisher = p }
}

type Store struct {
	blobs     storage.BlobStore
	key       string
	now       func() time.Time
	logger    *log.Logger
	publisher events.Publisher

	mu  sync.Mutex
	txs []core.Transaction
}

// NewStore returns an empty store persisting under key. Call Hydrate to load
// what was saved before.
func NewStore(blobs storage.BlobStore, key string, opts ...Option) *Store {
	s := &Store{
		blobs:     blobs,
		key:       key,
		now:       time.Now,
		logger:    log.Discard(),
		publisher: events.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate replaces the in-memory sequence with the persisted one. A missing
// blob leaves the ledger empty. A malformed blob also leaves it empty and
// returns an error wrapping ErrCorruptState; the store stays usable and the
// next write overwrites the bad data.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs = nil
	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	txs, err := Decode(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Discarding unreadable ledger",
			log.FieldOperation, log.OpHydrate,
			log.FieldError, err)
		return err
	}
	s.txs = txs
	return nil
}

// Add validates in, appends a new transaction and persists the ledger. On a
// *ValidationError nothing changes and nothing is written.
func (s *Store) Add(ctx context.Context, in AddInput) (core.Transaction, error) {
	tx, err := s.build(in)
	if err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	tx.ID = s.nextID()
	next := append(slices.Clone(s.txs), tx)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	s.txs = next
	s.mu.Unlock()

	log.NewStructuredLogger(s.logger).LogTransaction(ctx, log.OpAdd, tx.ID, tx.Kind.String(), tx.Amount.Fixed())
	s.publish(ctx, events.TypeTransactionAdded, &tx)
	return tx, nil
}

func (s *Store) build(in AddInput) (core.Transaction, error) {
	var verr ValidationError

	amount := strings.TrimSpace(in.Amount)
	desc := strings.TrimSpace(in.Description)
	date := strings.TrimSpace(in.Date)

	if amount == "" {
		verr.Missing = append(verr.Missing, FieldAmount)
	}
	if desc == "" {
		verr.Missing = append(verr.Missing, FieldDescription)
	}
	if date == "" {
		verr.Missing = append(verr.Missing, FieldDate)
	}

	var money core.Money
	if amount != "" {
		m, err := core.ParseAmount(amount)
		if err != nil {
			verr.Invalid = append(verr.Invalid, FieldAmount)
		}
		money = m
	}

	kind := core.KindIncome
	if strings.TrimSpace(in.Kind) != "" {
		k, err := core.ParseKind(in.Kind)
		if err != nil {
			verr.Invalid = append(verr.Invalid, FieldType)
		}
		kind = k
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return core.Transaction{}, &verr
	}

	return core.Transaction{
		Amount:      money,
		Description: in.Description,
		Date:        date,
		Kind:        kind,
	}, nil
}

// nextID uses the clock in milliseconds, bumped past the largest existing id
// so ids stay unique within the ledger. Callers hold s.mu.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	for _, tx := range s.txs {
		if tx.ID >= id {
			id = tx.ID + 1
		}
	}
	return id
}

// Remove drops every transaction with the given id. An unknown id is a no-op
// and performs no write.
func (s *Store) Remove(ctx context.Context, id int64) error {
	match := func(tx core.Transaction) bool { return tx.ID == id }

	s.mu.Lock()
	if !slices.ContainsFunc(s.txs, match) {
		s.mu.Unlock()
		return nil
	}
	var removed []core.Transaction
	for _, tx := range s.txs {
		if match(tx) {
			removed = append(removed, tx)
		}
	}
	next := slices.DeleteFunc(slices.Clone(s.txs), match)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.txs = next
	s.mu.Unlock()

	sl := log.NewStructuredLogger(s.logger)
	for _, tx := range removed {
		sl.LogTransaction(ctx, log.OpRemove, tx.ID, tx.Kind.String(), tx.Amount.Fixed())
		s.publish(ctx, events.TypeTransactionRemoved, &tx)
	}
	return nil
}

// Reset empties the ledger and deletes its blob, whatever it contained.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	if err := s.persist(ctx, nil); err != nil {
		s.mu.Unlock()
		return err
	}
	s.txs = nil
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Ledger cleared", log.FieldOperation, log.OpReset)
	s.publish(ctx, events.TypeLedgerReset, nil)
	return nil
}

// persist overwrites the blob with txs, or deletes it when txs is empty.
func (s *Store) persist(ctx context.Context, txs []core.Transaction) error {
	if len(txs) == 0 {
		if err := s.blobs.Delete(ctx, s.key); err != nil {
			return fmt.Errorf("delete ledger: %w", err)
		}
		return nil
	}
	data, err := Encode(txs)
	if err != nil {
		return err
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

func (s *Store) publish(ctx context.Context, t events.Type, tx *core.Transaction) {
	if err := s.publisher.Publish(ctx, events.New(t, s.key, tx)); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldOperation, log.OpPublish,
			log.FieldEvent, t,
			log.FieldError, err)
	}
}

// Transactions returns a copy of the sequence in insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.txs)
}

// Get looks up a transaction by id.
func (s *Store) Get(id int64) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

func (s *Store) Totals() core.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Aggregate(s.txs)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

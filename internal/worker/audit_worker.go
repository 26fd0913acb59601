// Package worker consumes ledger events and keeps a running audit of every
// ledger seen on the broker.
package worker

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"wealthwise/internal/core"
	"wealthwise/internal/events"
	"wealthwise/internal/log"
)

// LedgerStats is the audit tally of one ledger.
type LedgerStats struct {
	Events       int
	Transactions int
	Totals       core.Totals
	LastEvent    time.Time
}

// AuditWorker folds ledger events into per-ledger tallies. It only sees what
// was published, so a ledger that existed before the worker started is
// tallied from its first observed event.
type AuditWorker struct {
	logger *log.Logger

	mu     sync.Mutex
	ledger map[string]*LedgerStats
}

func NewAuditWorker(logger *log.Logger) *AuditWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &AuditWorker{
		logger: logger.WithComponent(log.ComponentEvents),
		ledger: make(map[string]*LedgerStats),
	}
}

// HandleEvent applies one event. Malformed events are logged and skipped
// rather than returned, so the broker does not redeliver them forever.
func (w *AuditWorker) HandleEvent(ctx context.Context, e events.Event) error {
	if e.Ledger == "" {
		w.logger.WarnContext(ctx, "Skipping event without ledger", log.FieldEvent, e.Type)
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	st := w.ledger[e.Ledger]
	if st == nil {
		st = &LedgerStats{}
		w.ledger[e.Ledger] = st
	}

	switch e.Type {
	case events.TypeTransactionAdded, events.TypeTransactionRemoved:
		if e.Transaction == nil {
			w.logger.WarnContext(ctx, "Skipping transaction event without transaction",
				log.FieldEvent, e.Type, log.FieldLedger, e.Ledger)
			return nil
		}
		delta := core.Aggregate([]core.Transaction{*e.Transaction})
		if e.Type == events.TypeTransactionAdded {
			st.Transactions++
			st.Totals = core.Totals{Income: st.Totals.Income.Add(delta.Income), Expense: st.Totals.Expense.Add(delta.Expense)}
		} else {
			st.Transactions--
			st.Totals = core.Totals{Income: st.Totals.Income.Sub(delta.Income), Expense: st.Totals.Expense.Sub(delta.Expense)}
		}
	case events.TypeLedgerReset:
		st.Transactions = 0
		st.Totals = core.Totals{}
	default:
		w.logger.WarnContext(ctx, "Skipping unknown event type", log.FieldEvent, e.Type)
		return nil
	}

	st.Events++
	st.LastEvent = e.Timestamp

	w.logger.InfoContext(ctx, "Ledger event",
		log.FieldEvent, e.Type,
		log.FieldLedger, e.Ledger,
		log.FieldCount, st.Transactions,
		"balance", st.Totals.Balance().Fixed())
	return nil
}

// Stats returns a copy of the tally for ledger.
func (w *AuditWorker) Stats(ledger string) (LedgerStats, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.ledger[ledger]
	if !ok {
		return LedgerStats{}, false
	}
	return *st, true
}

// Ledgers lists the ledgers seen so far, sorted.
func (w *AuditWorker) Ledgers() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Sorted(maps.Keys(w.ledger))
}

// Report logs a one-line summary across all ledgers.
func (w *AuditWorker) Report(ctx context.Context) {
	w.mu.Lock()
	var (
		eventsSeen int
		txs        int
	)
	for _, st := range w.ledger {
		eventsSeen += st.Events
		txs += st.Transactions
	}
	ledgers := len(w.ledger)
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Audit summary",
		"ledgers", ledgers,
		"events", eventsSeen,
		log.FieldCount, txs)
}

// Run consumes from c until ctx is done, logging a summary every interval.
func (w *AuditWorker) Run(ctx context.Context, c events.Consumer, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					w.Report(ctx)
				}
			}
		}()
	}

	err := c.Consume(ctx, w.HandleEvent)
	w.Report(context.WithoutCancel(ctx))
	return err
}

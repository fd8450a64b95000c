// Package ledger keeps per-account append-only record logs and the accounts,
// transfers and directory built on top of them.
package ledger

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
)

// Ledger is the ordered, append-only record log of one account.
// The balance is always derived from the records.
type Ledger struct {
	accountID int64
	repo      repositories.RecordRepository

	mu      sync.RWMutex
	records []models.Record
	running decimal.Decimal
}

func newLedger(accountID int64, repo repositories.RecordRepository, records []models.Record) *Ledger {
	l := &Ledger{accountID: accountID, repo: repo}
	l.commit(records...)
	return l
}

// AccountID returns the owning account's identifier
func (l *Ledger) AccountID() int64 {
	return l.accountID
}

// Append durably stores rec and then makes it visible. Callers validate
// preconditions first; Append only refuses malformed records. A failed
// write leaves the ledger unchanged and returns models.ErrStorageFailure.
func (l *Ledger) Append(ctx context.Context, rec models.Record) error {
	if err := l.persist(ctx, rec); err != nil {
		return err
	}
	l.commit(rec)
	return nil
}

// persist writes rec through the repository without publishing it
func (l *Ledger) persist(ctx context.Context, rec models.Record) error {
	if rec.AccountID != l.accountID {
		return fmt.Errorf("record for account %d appended to ledger %d: %w",
			rec.AccountID, l.accountID, models.ErrMissingAccount)
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := l.repo.Append(ctx, rec); err != nil {
		return fmt.Errorf("append to ledger %d: %w: %w", l.accountID, models.ErrStorageFailure, err)
	}
	return nil
}

// commit publishes records that are already durable
func (l *Ledger) commit(recs ...models.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, rec := range recs {
		l.records = append(l.records, rec)
		l.running = l.running.Add(rec.Amount)
	}
}

// Balance returns the sum of every record amount
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return sum(l.records)
}

// History returns a copy of the records whose timestamp lies in r, in append order
func (l *Ledger) History(r models.TimeRange) []models.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Record, 0, len(l.records))
	for _, rec := range l.records {
		if r.Contains(rec.Timestamp) {
			out = append(out, rec)
		}
	}
	return out
}

// Records iterates over a snapshot of the ledger taken when iteration starts
func (l *Ledger) Records() iter.Seq[models.Record] {
	return func(yield func(models.Record) bool) {
		l.mu.RLock()
		snapshot := l.records[:len(l.records):len(l.records)]
		l.mu.RUnlock()

		for _, rec := range snapshot {
			if !yield(rec) {
				return
			}
		}
	}
}

// Len returns the number of records
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Verify compares the running total against a full recompute
func (l *Ledger) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if total := sum(l.records); !total.Equal(l.running) {
		return fmt.Errorf("ledger %d: running %s, recomputed %s: %w",
			l.accountID, l.running, total, models.ErrBalanceDrift)
	}
	return nil
}

func sum(records []models.Record) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		total = total.Add(rec.Amount)
	}
	return total
}

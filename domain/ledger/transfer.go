package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
)

// TransferCoordinator moves money between two accounts atomically
type TransferCoordinator struct {
	uow      repositories.UnitOfWork
	observer Observer
}

// NewTransferCoordinator creates a coordinator writing through uow.
// observer may be nil.
func NewTransferCoordinator(uow repositories.UnitOfWork, observer Observer) *TransferCoordinator {
	if observer == nil {
		observer = nopObserver{}
	}
	return &TransferCoordinator{uow: uow, observer: observer}
}

// Transfer debits from and credits to by amount and returns the transfer ID.
// Both legs are written in one unit of work while both accounts are locked,
// so either both records land or neither does.
func (c *TransferCoordinator) Transfer(ctx context.Context, from, to *Account, amount decimal.Decimal) (string, error) {
	if !amount.IsPositive() {
		return "", fmt.Errorf("transfer of %s: %w", amount, models.ErrInvalidAmount)
	}

	out, in := models.NewTransferLegs(from.ID(), to.ID(), amount)

	unlock := lockPair(from, to)

	if balance := from.ledger.Balance(); balance.LessThan(amount) {
		unlock()
		return "", fmt.Errorf("transfer of %s from account %d with balance %s: %w",
			amount, from.ID(), balance, models.ErrInsufficientFunds)
	}

	err := c.uow.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := from.ledger.persist(ctx, out); err != nil {
			return err
		}
		return to.ledger.persist(ctx, in)
	})
	if err != nil {
		unlock()
		internal.GetLogger().Error(internal.ComponentLedger, "Transfer %d -> %d failed: %v", from.ID(), to.ID(), err)
		if !errors.Is(err, models.ErrStorageFailure) {
			err = fmt.Errorf("%w: %w", models.ErrStorageFailure, err)
		}
		return "", fmt.Errorf("transfer %s: %w", out.TransferID, err)
	}

	from.ledger.commit(out)
	to.ledger.commit(in)
	unlock()

	internal.GetLogger().Debug(internal.ComponentLedger, "Transferred %s from %d to %d (%s)",
		amount, from.ID(), to.ID(), out.TransferID)
	c.observer.RecordAppended(out)
	c.observer.RecordAppended(in)
	return out.TransferID, nil
}

// lockPair locks both accounts in ascending ID order and returns the unlock func
func lockPair(a, b *Account) func() {
	if a == b {
		a.mu.Lock()
		return a.mu.Unlock
	}

	first, second := a, b
	if b.ID() < a.ID() {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}

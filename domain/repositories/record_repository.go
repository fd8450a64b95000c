package repositories

import (
	"context"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
)

// RecordRepository defines the interface for ledger record access.
// Records are append-only; there is no update or delete.
type RecordRepository interface {
	// Append durably stores a record at the end of its account's log
	Append(ctx context.Context, record models.Record) error

	// FindByAccount returns an account's records in append order
	FindByAccount(ctx context.Context, accountID int64) ([]models.Record, error)
}

// AtmDepositRepository defines the interface for the bank-wide ATM log
type AtmDepositRepository interface {
	// AppendAtmDeposit durably stores an ATM cash-in event
	AppendAtmDeposit(ctx context.Context, deposit models.AtmDeposit) error

	// FindAtmDeposits returns the log entries matching the filter in append order
	FindAtmDeposits(ctx context.Context, filter AtmDepositFilter) ([]models.AtmDeposit, error)
}

// AtmDepositFilter defines filters for reading the ATM log
type AtmDepositFilter struct {
	AtmID int64 // zero matches every ATM
	Range models.TimeRange
}

// Matches reports whether a log entry passes the filter
func (f AtmDepositFilter) Matches(d models.AtmDeposit) bool {
	if f.AtmID != 0 && d.AtmID != f.AtmID {
		return false
	}
	return f.Range.Contains(d.Timestamp)
}

package repositories

import (
	"context"
)

// UnitOfWork represents a transactional unit of work
type UnitOfWork interface {
	// RunInTransaction executes the given function in a transaction
	// and commits or rolls back automatically based on the function result.
	// Repositories obtained from the unit of work join the transaction
	// through the context passed to fn.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// GetAccountRepository returns the account repository
	GetAccountRepository() AccountRepository

	// GetRecordRepository returns the record repository
	GetRecordRepository() RecordRepository

	// GetAtmDepositRepository returns the bank-wide ATM log repository
	GetAtmDepositRepository() AtmDepositRepository

	// Close releases the underlying storage
	Close() error
}

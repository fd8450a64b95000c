package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
)

// AtmLogObserver is told about every entry added to the bank's ATM log
type AtmLogObserver interface {
	AtmDepositRecorded(deposit models.AtmDeposit)
}

// BankDetails identifies the bank
type BankDetails struct {
	Name      string    `json:"name"`
	Number    int64     `json:"number"`
	Timestamp time.Time `json:"timestamp"`
}

// Bank keeps the bank-wide log of ATM cash-in events
type Bank struct {
	name     string
	number   int64
	log      repositories.AtmDepositRepository
	observer AtmLogObserver
}

// NewBank creates a bank writing its ATM log through log. observer may be nil.
func NewBank(name string, number int64, log repositories.AtmDepositRepository, observer AtmLogObserver) *Bank {
	return &Bank{name: name, number: number, log: log, observer: observer}
}

// RecordAtmDeposit appends an ATM cash-in event to the bank log.
// No user ledger is touched.
func (b *Bank) RecordAtmDeposit(ctx context.Context, atmID int64, amount decimal.Decimal) (models.AtmDeposit, error) {
	logger := internal.GetLogger().With(internal.ComponentBank).With().
		Str("usecase", "RecordAtmDeposit").Int64("atmID", atmID).Logger()

	if !amount.IsPositive() {
		return models.AtmDeposit{}, fmt.Errorf("atm deposit of %s: %w", amount, models.ErrInvalidAmount)
	}
	if atmID <= 0 {
		return models.AtmDeposit{}, fmt.Errorf("atm %d: %w", atmID, models.ErrInvalidAccountID)
	}

	deposit := models.NewAtmDeposit(atmID, amount)
	if err := b.log.AppendAtmDeposit(ctx, deposit); err != nil {
		logger.Error().Err(err).Msg("Failed to append to the ATM log")
		return models.AtmDeposit{}, fmt.Errorf("record atm deposit: %w: %w", models.ErrStorageFailure, err)
	}

	logger.Info().Str("amount", amount.String()).Str("depositID", deposit.ID).Msg("ATM deposit recorded")
	if b.observer != nil {
		b.observer.AtmDepositRecorded(deposit)
	}
	return deposit, nil
}

// AtmDeposits returns the log entries of one ATM within r. atmID 0 returns every ATM.
func (b *Bank) AtmDeposits(ctx context.Context, atmID int64, r models.TimeRange) ([]models.AtmDeposit, error) {
	deposits, err := b.log.FindAtmDeposits(ctx, repositories.AtmDepositFilter{AtmID: atmID, Range: r})
	if err != nil {
		return nil, fmt.Errorf("read atm log: %w: %w", models.ErrStorageFailure, err)
	}
	return deposits, nil
}

// Details returns the bank's name and number stamped with the current time
func (b *Bank) Details() BankDetails {
	return BankDetails{Name: b.name, Number: b.number, Timestamp: time.Now().UTC()}
}

package usecases

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/ledger"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
)

// ATM is a cash machine attached to the bank. Its cash counter is a cache
// over the bank log and the user ledgers, which are authoritative.
type ATM struct {
	mu   sync.Mutex
	id   int64
	name string
	cash decimal.Decimal
	bank *Bank
}

// NewATM creates an ATM with an empty cash counter
func NewATM(id int64, name string, bank *Bank) *ATM {
	return &ATM{id: id, name: name, cash: decimal.Zero, bank: bank}
}

// NewATMFromLog creates an ATM whose counter is rebuilt from durable state:
// the bank log entries of the ATM plus every user deposit and withdrawal
// whose counterparty is the ATM.
func NewATMFromLog(ctx context.Context, id int64, name string, bank *Bank, accounts *ledger.Directory) (*ATM, error) {
	deposits, err := bank.AtmDeposits(ctx, id, models.All)
	if err != nil {
		return nil, err
	}

	atm := NewATM(id, name, bank)
	for _, d := range deposits {
		atm.cash = atm.cash.Add(d.Amount)
	}
	for _, account := range accounts.Accounts() {
		for rec := range account.Ledger().Records() {
			if handledBy(rec, id) {
				atm.cash = atm.cash.Add(rec.Amount)
			}
		}
	}
	return atm, nil
}

// handledBy reports whether rec moved cash through the ATM atmID
func handledBy(rec models.Record, atmID int64) bool {
	if rec.Counterparty != atmID {
		return false
	}
	return rec.Kind == models.RecordKindDeposit || rec.Kind == models.RecordKindWithdrawal
}

// ID returns the ATM identifier
func (a *ATM) ID() int64 { return a.id }

// Name returns the ATM display name
func (a *ATM) Name() string { return a.name }

// Cash returns the cash counter
func (a *ATM) Cash() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash
}

// BankDeposit loads cash into the ATM and records it in the bank log
func (a *ATM) BankDeposit(ctx context.Context, amount decimal.Decimal) (models.AtmDeposit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	deposit, err := a.bank.RecordAtmDeposit(ctx, a.id, amount)
	if err != nil {
		return models.AtmDeposit{}, err
	}
	a.cash = a.cash.Add(amount)
	return deposit, nil
}

// UserDeposit takes cash from a user and credits their ledger
func (a *ATM) UserDeposit(ctx context.Context, user *ledger.Account, amount decimal.Decimal) (models.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec, err := user.DepositAt(ctx, a.id, amount)
	if err != nil {
		return models.Record{}, err
	}
	a.cash = a.cash.Add(amount)
	return rec, nil
}

// Withdraw dispenses cash to a user. The counter only changes when the
// user withdrawal succeeded.
func (a *ATM) Withdraw(ctx context.Context, user *ledger.Account, amount decimal.Decimal) (models.Record, error) {
	if !amount.IsPositive() {
		return models.Record{}, fmt.Errorf("withdrawal of %s: %w", amount, models.ErrInvalidAmount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cash.LessThan(amount) {
		internal.GetLogger().Warn(internal.ComponentBank, "ATM %d holds %s, cannot dispense %s", a.id, a.cash, amount)
		return models.Record{}, fmt.Errorf("atm %d: %w", a.id, models.ErrInsufficientCash)
	}

	rec, err := user.WithdrawAt(ctx, a.id, amount)
	if err != nil {
		return models.Record{}, err
	}
	a.cash = a.cash.Sub(amount)
	return rec, nil
}

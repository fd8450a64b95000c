package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
)

// Observer is told about every record once it is durable and visible
type Observer interface {
	RecordAppended(rec models.Record)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(rec models.Record)

// RecordAppended calls f(rec)
func (f ObserverFunc) RecordAppended(rec models.Record) { f(rec) }

type nopObserver struct{}

func (nopObserver) RecordAppended(models.Record) {}

// Account is a user, ATM or bank account together with its ledger
type Account struct {
	// mu serialises every balance-changing operation on this account
	mu sync.Mutex

	infoMu sync.RWMutex
	info   models.AccountInfo

	ledger   *Ledger
	accounts repositories.AccountRepository
	observer Observer
}

func newAccount(info models.AccountInfo, ledger *Ledger, accounts repositories.AccountRepository, observer Observer) *Account {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Account{info: info, ledger: ledger, accounts: accounts, observer: observer}
}

// ID returns the account identifier
func (a *Account) ID() int64 { return a.info.ID }

// Name returns the display name
func (a *Account) Name() string {
	a.infoMu.RLock()
	defer a.infoMu.RUnlock()
	return a.info.Name
}

// Role returns the account role
func (a *Account) Role() models.AccountRole { return a.info.Role }

// Info returns a copy of the account metadata
func (a *Account) Info() models.AccountInfo {
	a.infoMu.RLock()
	defer a.infoMu.RUnlock()
	return a.info
}

// Ledger returns the account's ledger
func (a *Account) Ledger() *Ledger { return a.ledger }

// Balance returns the current balance
func (a *Account) Balance() decimal.Decimal { return a.ledger.Balance() }

// Deposit appends +amount to the ledger
func (a *Account) Deposit(ctx context.Context, amount decimal.Decimal) (models.Record, error) {
	return a.deposit(ctx, amount, 0)
}

// DepositAt appends +amount for cash taken in by the ATM atmID. The record
// names the ATM as its counterparty so the machine's cash can be rebuilt.
func (a *Account) DepositAt(ctx context.Context, atmID int64, amount decimal.Decimal) (models.Record, error) {
	return a.deposit(ctx, amount, atmID)
}

func (a *Account) deposit(ctx context.Context, amount decimal.Decimal, atmID int64) (models.Record, error) {
	if !amount.IsPositive() {
		return models.Record{}, fmt.Errorf("deposit of %s: %w", amount, models.ErrInvalidAmount)
	}

	rec := models.NewRecord(a.ID(), models.RecordKindDeposit, amount)
	rec.Counterparty = atmID

	a.mu.Lock()
	err := a.ledger.Append(ctx, rec)
	a.mu.Unlock()
	if err != nil {
		return models.Record{}, err
	}

	internal.GetLogger().Debug(internal.ComponentLedger, "Account %d deposited %s", a.ID(), amount)
	a.observer.RecordAppended(rec)
	return rec, nil
}

// Withdraw appends -amount to the ledger when the balance covers it.
// The balance check and the append form one critical section.
func (a *Account) Withdraw(ctx context.Context, amount decimal.Decimal) (models.Record, error) {
	return a.withdraw(ctx, amount, 0)
}

// WithdrawAt is Withdraw for cash dispensed by the ATM atmID
func (a *Account) WithdrawAt(ctx context.Context, atmID int64, amount decimal.Decimal) (models.Record, error) {
	return a.withdraw(ctx, amount, atmID)
}

func (a *Account) withdraw(ctx context.Context, amount decimal.Decimal, atmID int64) (models.Record, error) {
	if !amount.IsPositive() {
		return models.Record{}, fmt.Errorf("withdrawal of %s: %w", amount, models.ErrInvalidAmount)
	}

	rec := models.NewRecord(a.ID(), models.RecordKindWithdrawal, amount.Neg())
	rec.Counterparty = atmID

	a.mu.Lock()
	if balance := a.ledger.Balance(); balance.LessThan(amount) {
		a.mu.Unlock()
		return models.Record{}, fmt.Errorf("withdrawal of %s from account %d with balance %s: %w",
			amount, a.ID(), balance, models.ErrInsufficientFunds)
	}
	err := a.ledger.Append(ctx, rec)
	a.mu.Unlock()
	if err != nil {
		return models.Record{}, err
	}

	internal.GetLogger().Debug(internal.ComponentLedger, "Account %d withdrew %s", a.ID(), amount)
	a.observer.RecordAppended(rec)
	return rec, nil
}

// Authenticate reports whether id and secret identify this user account.
// ATM and bank accounts never authenticate.
func (a *Account) Authenticate(id int64, secret string) bool {
	a.infoMu.RLock()
	defer a.infoMu.RUnlock()

	if a.info.Role != models.AccountRoleUser || a.info.ID != id {
		return false
	}
	return a.info.SecretMatches(secret)
}

// ChangeSecret replaces the secret after checking the old one
func (a *Account) ChangeSecret(ctx context.Context, oldSecret, newSecret string) error {
	a.infoMu.Lock()
	defer a.infoMu.Unlock()

	if !a.info.SecretMatches(oldSecret) {
		return fmt.Errorf("account %d: %w", a.info.ID, models.ErrAuthenticationFailed)
	}
	if newSecret == "" {
		return fmt.Errorf("account %d: new secret is empty: %w", a.info.ID, models.ErrAuthenticationFailed)
	}

	if err := a.accounts.UpdateSecret(ctx, a.info.ID, newSecret); err != nil {
		return fmt.Errorf("change secret of account %d: %w: %w", a.info.ID, models.ErrStorageFailure, err)
	}
	a.info.Secret = newSecret

	internal.GetLogger().Info(internal.ComponentLedger, "Account %d changed its secret", a.info.ID)
	return nil
}

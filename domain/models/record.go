package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordKind defines the kind of a ledger record
type RecordKind string

const (
	// RecordKindInitialBalance is always the first record of an account
	RecordKindInitialBalance RecordKind = "initial_balance"

	// RecordKindDeposit represents money paid into an account
	RecordKindDeposit RecordKind = "deposit"

	// RecordKindWithdrawal represents money taken out of an account
	RecordKindWithdrawal RecordKind = "withdrawal"

	// RecordKindTransfer represents one leg of a transfer between two accounts
	RecordKindTransfer RecordKind = "transfer"
)

// ParseRecordKind parses a persisted kind value
func ParseRecordKind(s string) (RecordKind, error) {
	switch k := RecordKind(s); k {
	case RecordKindInitialBalance, RecordKindDeposit, RecordKindWithdrawal, RecordKindTransfer:
		return k, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", s)
	}
}

// Record is a single dated, signed monetary entry in an account ledger.
// Counterparty is the other account of a transfer, or the ATM that took in
// or paid out the cash of a deposit or withdrawal.
type Record struct {
	ID           string          `json:"id"`
	AccountID    int64           `json:"accountId"`
	Timestamp    time.Time       `json:"timestamp"`
	Kind         RecordKind      `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	TransferID   string          `json:"transferId,omitempty"`
	Counterparty int64           `json:"counterparty,omitempty"`
}

// NewRecord creates a record stamped with the current time
func NewRecord(accountID int64, kind RecordKind, amount decimal.Decimal) Record {
	return Record{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Amount:    amount,
	}
}

// NewTransferLegs creates the outgoing and incoming legs of a transfer.
// Both legs share a transfer ID and reference each other's account.
func NewTransferLegs(from, to int64, amount decimal.Decimal) (out Record, in Record) {
	transferID := uuid.New().String()

	out = NewRecord(from, RecordKindTransfer, amount.Neg())
	out.TransferID = transferID
	out.Counterparty = to

	in = NewRecord(to, RecordKindTransfer, amount)
	in.TransferID = transferID
	in.Counterparty = from
	in.Timestamp = out.Timestamp

	return out, in
}

// IsOutgoing reports whether the record takes money out of the account
func (r Record) IsOutgoing() bool {
	return r.Amount.IsNegative()
}

// Validate checks that the amount sign matches the record kind
func (r Record) Validate() error {
	if r.AccountID <= 0 {
		return fmt.Errorf("record %s: %w", r.ID, ErrMissingAccount)
	}

	switch r.Kind {
	case RecordKindInitialBalance, RecordKindDeposit:
		if r.Amount.IsNegative() {
			return fmt.Errorf("%s record must not be negative: %w", r.Kind, ErrInvalidAmount)
		}
	case RecordKindWithdrawal:
		if r.Amount.IsPositive() {
			return fmt.Errorf("%s record must not be positive: %w", r.Kind, ErrInvalidAmount)
		}
	case RecordKindTransfer:
		if r.TransferID == "" {
			return fmt.Errorf("transfer record %s: %w", r.ID, ErrMissingTransferID)
		}
	default:
		return fmt.Errorf("record %s has kind %q: %w", r.ID, r.Kind, ErrInvalidRecordKind)
	}

	return nil
}

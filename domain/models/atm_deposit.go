package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AtmDeposit is an entry in the bank-wide log of ATM cash-in events.
// It does not belong to any account ledger.
type AtmDeposit struct {
	ID        string          `json:"id"`
	AtmID     int64           `json:"atmId"`
	Timestamp time.Time       `json:"timestamp"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewAtmDeposit creates a bank log entry stamped with the current time
func NewAtmDeposit(atmID int64, amount decimal.Decimal) AtmDeposit {
	return AtmDeposit{
		ID:        uuid.New().String(),
		AtmID:     atmID,
		Timestamp: time.Now().UTC(),
		Amount:    amount,
	}
}

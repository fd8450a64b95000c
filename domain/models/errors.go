package models

import (
	"errors"
)

// Domain error types
var (
	// Ledger errors
	// ErrInvalidAmount is returned when an amount is zero or negative where a positive amount is required
	ErrInvalidAmount = errors.New("amount must be greater than 0")

	// ErrInsufficientFunds is returned when a withdrawal or transfer exceeds the balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrStorageFailure is returned when a record could not be persisted
	ErrStorageFailure = errors.New("storage failure")

	// ErrInvalidRecordKind is returned when a record has an unknown kind
	ErrInvalidRecordKind = errors.New("invalid record kind")

	// ErrMissingTransferID is returned when a transfer record has no transfer ID
	ErrMissingTransferID = errors.New("transfer record must have a transfer id")

	// ErrMissingAccount is returned when a record is not attached to an account
	ErrMissingAccount = errors.New("record must belong to an account")

	// ErrBalanceDrift is returned when a running balance disagrees with the recomputed one
	ErrBalanceDrift = errors.New("balance drift detected")

	// Account errors
	// ErrAccountNotFound is returned when an account is not in the directory
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccount is returned when registering an identifier that already exists
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrAuthenticationFailed is returned on a login or secret mismatch
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidAccountID is returned when an account identifier is not positive
	ErrInvalidAccountID = errors.New("account id must be greater than 0")

	// ErrMissingAccountName is returned when an account has no name
	ErrMissingAccountName = errors.New("account must have a name")

	// ErrMissingSecret is returned when a user account has no PIN
	ErrMissingSecret = errors.New("user account must have a secret")

	// ErrInvalidRole is returned when an account has an unknown role
	ErrInvalidRole = errors.New("invalid account role")

	// ATM errors
	// ErrInsufficientCash is returned when an ATM cannot dispense the requested amount
	ErrInsufficientCash = errors.New("atm has insufficient cash")
)

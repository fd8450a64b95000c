package models

import (
	"crypto/subtle"
	"fmt"
	"time"
)

// AccountRole defines who owns an account
type AccountRole string

const (
	// AccountRoleUser represents a customer account protected by a PIN
	AccountRoleUser AccountRole = "user"

	// AccountRoleATM represents an ATM, identified by its routing number
	AccountRoleATM AccountRole = "atm"

	// AccountRoleBank represents the bank itself
	AccountRoleBank AccountRole = "bank"
)

// ParseAccountRole parses a persisted role value
func ParseAccountRole(s string) (AccountRole, error) {
	switch r := AccountRole(s); r {
	case AccountRoleUser, AccountRoleATM, AccountRoleBank:
		return r, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrInvalidRole)
	}
}

// AccountInfo is the persisted identity of an account, without its ledger
type AccountInfo struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Role      AccountRole `json:"role"`
	Secret    string      `json:"-"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewAccountInfo creates account metadata with defaults
func NewAccountInfo(id int64, name string, role AccountRole, secret string) *AccountInfo {
	now := time.Now().UTC()
	if role == "" {
		role = AccountRoleUser
	}
	return &AccountInfo{
		ID:        id,
		Name:      name,
		Role:      role,
		Secret:    secret,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks if the account metadata is valid
func (a *AccountInfo) Validate() error {
	if a.ID <= 0 {
		return ErrInvalidAccountID
	}

	if a.Name == "" {
		return ErrMissingAccountName
	}

	if _, err := ParseAccountRole(string(a.Role)); err != nil {
		return err
	}

	if a.Role == AccountRoleUser && a.Secret == "" {
		return ErrMissingSecret
	}

	return nil
}

// SecretMatches reports whether secret equals the stored secret
func (a *AccountInfo) SecretMatches(secret string) bool {
	return subtle.ConstantTimeCompare([]byte(a.Secret), []byte(secret)) == 1
}

package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
)

func accountRow(a *models.AccountInfo) []string {
	return []string{
		strconv.FormatInt(a.ID, 10),
		a.Name,
		string(a.Role),
		a.Secret,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	}
}

func parseAccountRow(row []string) (*models.AccountInfo, error) {
	id, err := parseID(row[0])
	if err != nil {
		return nil, err
	}
	role, err := models.ParseAccountRole(row[2])
	if err != nil {
		return nil, err
	}
	created, err := parseTime(row[4])
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(row[5])
	if err != nil {
		return nil, err
	}
	return &models.AccountInfo{
		ID:        id,
		Name:      row[1],
		Role:      role,
		Secret:    row[3],
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// loadAccounts reads accounts.csv. Caller holds s.mu.
func (s *Store) loadAccounts() ([]*models.AccountInfo, error) {
	rows, err := s.readRows(accountsFile, len(accountsHeader))
	if err != nil {
		return nil, err
	}

	accounts := make([]*models.AccountInfo, 0, len(rows))
	for _, row := range rows {
		account, err := parseAccountRow(row)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// findAccount looks an account up in accounts.csv. Caller holds s.mu.
func (s *Store) findAccount(id int64) (*models.AccountInfo, error) {
	accounts, err := s.loadAccounts()
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, fmt.Errorf("account %d: %w", id, models.ErrAccountNotFound)
}

// FindByID finds an account by ID
func (s *Store) FindByID(ctx context.Context, id int64) (*models.AccountInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findAccount(id)
}

// FindAll returns every account ordered by ID
func (s *Store) FindAll(ctx context.Context) ([]*models.AccountInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.loadAccounts()
	if err != nil {
		return nil, err
	}
	sortAccounts(accounts)
	return accounts, nil
}

// Create appends a new account to accounts.csv
func (s *Store) Create(ctx context.Context, account *models.AccountInfo) error {
	if j := current(ctx); j != nil {
		if j.accounts[account.ID] {
			return fmt.Errorf("account %d: %w", account.ID, models.ErrDuplicateAccount)
		}
		if _, err := s.FindByID(ctx, account.ID); err == nil {
			return fmt.Errorf("account %d: %w", account.ID, models.ErrDuplicateAccount)
		}
		j.accounts[account.ID] = true
		j.writes = append(j.writes, pendingWrite{file: accountsFile, header: accountsHeader, row: accountRow(account)})
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.findAccount(account.ID); err == nil {
		return fmt.Errorf("account %d: %w", account.ID, models.ErrDuplicateAccount)
	}
	return s.appendRow(accountsFile, accountsHeader, accountRow(account))
}

// UpdateSecret rewrites accounts.csv with the new secret.
// The file is replaced atomically through a temporary file.
func (s *Store) UpdateSecret(ctx context.Context, id int64, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.loadAccounts()
	if err != nil {
		return err
	}

	found := false
	for _, account := range accounts {
		if account.ID == id {
			account.Secret = secret
			account.UpdatedAt = time.Now().UTC()
			found = true
		}
	}
	if !found {
		return fmt.Errorf("account %d: %w", id, models.ErrAccountNotFound)
	}

	return s.rewriteAccounts(accounts)
}

func (s *Store) rewriteAccounts(accounts []*models.AccountInfo) error {
	tmp, err := os.CreateTemp(s.dir, accountsFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(accountsHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, account := range accounts {
		if err := w.Write(accountRow(account)); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write account %d: %w", account.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush accounts: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync accounts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	return os.Rename(tmpName, filepath.Join(s.dir, accountsFile))
}

// Package memory provides an in-process implementation of the ledger repositories.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
)

type txKey struct{}

// pendingTx buffers writes made inside RunInTransaction until commit
type pendingTx struct {
	accounts []*models.AccountInfo
	records  []models.Record
	deposits []models.AtmDeposit
}

// Store keeps accounts, ledgers and the ATM log in memory. It implements
// every repository and the unit of work.
type Store struct {
	mu       sync.RWMutex
	accounts map[int64]*models.AccountInfo
	records  map[int64][]models.Record
	deposits []models.AtmDeposit

	// appendHook lets tests inject storage failures
	appendHook func(models.Record) error
}

var (
	_ repositories.UnitOfWork           = (*Store)(nil)
	_ repositories.AccountRepository    = (*Store)(nil)
	_ repositories.RecordRepository     = (*Store)(nil)
	_ repositories.AtmDepositRepository = (*Store)(nil)
)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		accounts: make(map[int64]*models.AccountInfo),
		records:  make(map[int64][]models.Record),
	}
}

// SetAppendHook installs a function called before every record append.
// A non-nil error from the hook fails the append.
func (s *Store) SetAppendHook(hook func(models.Record) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendHook = hook
}

// RunInTransaction buffers all writes made through ctx and applies them
// together, or not at all when fn fails
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(txKey{}).(*pendingTx); nested {
		return fn(ctx)
	}

	tx := &pendingTx{}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range tx.accounts {
		if _, exists := s.accounts[account.ID]; exists {
			return fmt.Errorf("account %d: %w", account.ID, models.ErrDuplicateAccount)
		}
	}
	for _, account := range tx.accounts {
		s.accounts[account.ID] = account
	}
	for _, record := range tx.records {
		s.records[record.AccountID] = append(s.records[record.AccountID], record)
	}
	s.deposits = append(s.deposits, tx.deposits...)

	return nil
}

func pending(ctx context.Context) *pendingTx {
	tx, _ := ctx.Value(txKey{}).(*pendingTx)
	return tx
}

// GetAccountRepository returns the account repository
func (s *Store) GetAccountRepository() repositories.AccountRepository { return s }

// GetRecordRepository returns the record repository
func (s *Store) GetRecordRepository() repositories.RecordRepository { return s }

// GetAtmDepositRepository returns the ATM log repository
func (s *Store) GetAtmDepositRepository() repositories.AtmDepositRepository { return s }

// Close is a no-op
func (s *Store) Close() error { return nil }

// FindByID finds an account by ID
func (s *Store) FindByID(ctx context.Context, id int64) (*models.AccountInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, models.ErrAccountNotFound)
	}
	cp := *account
	return &cp, nil
}

// FindAll returns every account ordered by ID
func (s *Store) FindAll(ctx context.Context) ([]*models.AccountInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.AccountInfo, 0, len(s.accounts))
	for _, account := range s.accounts {
		cp := *account
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Create stores a new account
func (s *Store) Create(ctx context.Context, account *models.AccountInfo) error {
	cp := *account

	if tx := pending(ctx); tx != nil {
		for _, staged := range tx.accounts {
			if staged.ID == account.ID {
				return fmt.Errorf("account %d: %w", account.ID, models.ErrDuplicateAccount)
			}
		}
		s.mu.RLock()
		_, exists := s.accounts[account.ID]
		s.mu.RUnlock()
		if exists {
			return fmt.Errorf("account %d: %w", account.ID, models.ErrDuplicateAccount)
		}
		tx.accounts = append(tx.accounts, &cp)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.ID]; exists {
		return fmt.Errorf("account %d: %w", account.ID, models.ErrDuplicateAccount)
	}
	s.accounts[account.ID] = &cp
	return nil
}

// UpdateSecret replaces the stored secret of an account
func (s *Store) UpdateSecret(ctx context.Context, id int64, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("account %d: %w", id, models.ErrAccountNotFound)
	}
	updated := *account
	updated.Secret = secret
	s.accounts[id] = &updated
	return nil
}

// Append stores a record at the end of its account's log
func (s *Store) Append(ctx context.Context, record models.Record) error {
	s.mu.RLock()
	hook := s.appendHook
	s.mu.RUnlock()

	if hook != nil {
		if err := hook(record); err != nil {
			return err
		}
	}

	if tx := pending(ctx); tx != nil {
		tx.records = append(tx.records, record)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.AccountID] = append(s.records[record.AccountID], record)
	return nil
}

// FindByAccount returns an account's records in append order
func (s *Store) FindByAccount(ctx context.Context, accountID int64) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.records[accountID]
	out := make([]models.Record, len(records))
	copy(out, records)
	return out, nil
}

// AppendAtmDeposit stores an ATM cash-in event
func (s *Store) AppendAtmDeposit(ctx context.Context, deposit models.AtmDeposit) error {
	if tx := pending(ctx); tx != nil {
		tx.deposits = append(tx.deposits, deposit)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deposits = append(s.deposits, deposit)
	return nil
}

// FindAtmDeposits returns the log entries matching the filter
func (s *Store) FindAtmDeposits(ctx context.Context, filter repositories.AtmDepositFilter) ([]models.AtmDeposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AtmDeposit
	for _, deposit := range s.deposits {
		if filter.Matches(deposit) {
			out = append(out, deposit)
		}
	}
	return out, nil
}

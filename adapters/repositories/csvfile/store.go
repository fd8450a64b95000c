// Package csvfile persists ledgers as CSV files, one file per account plus
// an accounts index and the bank-wide ATM log.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
)

const (
	accountsFile = "accounts.csv"
	bankFile     = "bank_transactions.csv"
)

var (
	accountsHeader = []string{"id", "name", "role", "secret", "created_at", "updated_at"}
	recordsHeader  = []string{"id", "timestamp", "kind", "amount", "transfer_id", "counterparty"}
	bankHeader     = []string{"id", "atm_id", "timestamp", "amount"}
)

type txKey struct{}

// pendingWrite is a row waiting to be appended to a file
type pendingWrite struct {
	file   string
	header []string
	row    []string
}

// journal collects the rows written inside RunInTransaction
type journal struct {
	writes   []pendingWrite
	accounts map[int64]bool
}

// Store implements the UnitOfWork and every repository on a directory of CSV files
type Store struct {
	dir string

	// mu serialises file access
	mu sync.Mutex
}

var (
	_ repositories.UnitOfWork           = (*Store)(nil)
	_ repositories.AccountRepository    = (*Store)(nil)
	_ repositories.RecordRepository     = (*Store)(nil)
	_ repositories.AtmDepositRepository = (*Store)(nil)
)

// NewStore opens the store rooted at dir, creating the directory if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	internal.GetLogger().Debug(internal.ComponentStorage, "Opened CSV ledger store at %s", dir)
	return &Store{dir: dir}, nil
}

// RecordsFile returns the file name holding an account's ledger
func RecordsFile(accountID int64) string {
	return fmt.Sprintf("user_%d_transactions.csv", accountID)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func current(ctx context.Context) *journal {
	j, _ := ctx.Value(txKey{}).(*journal)
	return j
}

// RunInTransaction stages every row written through ctx and appends them
// together. If any append fails, the touched files are truncated back to
// their previous size.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if current(ctx) != nil {
		return fn(ctx)
	}

	j := &journal{accounts: make(map[int64]bool)}
	if err := fn(context.WithValue(ctx, txKey{}, j)); err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check staged accounts now that the file lock is held
	for id := range j.accounts {
		if _, err := s.findAccount(id); err == nil {
			return fmt.Errorf("account %d: %w", id, models.ErrDuplicateAccount)
		} else if !errors.Is(err, models.ErrAccountNotFound) {
			return err
		}
	}

	sizes := make(map[string]int64)
	for _, w := range j.writes {
		if _, seen := sizes[w.file]; seen {
			continue
		}
		size, err := fileSize(s.path(w.file))
		if err != nil {
			return err
		}
		sizes[w.file] = size
	}

	for _, w := range j.writes {
		if err := s.appendRow(w.file, w.header, w.row); err != nil {
			s.rollback(sizes)
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
	}
	return nil
}

// rollback restores every file to the size recorded before the commit
func (s *Store) rollback(sizes map[string]int64) {
	for name, size := range sizes {
		path := s.path(name)
		var err error
		if size == 0 {
			err = os.Remove(path)
			if errors.Is(err, os.ErrNotExist) {
				err = nil
			}
		} else {
			err = os.Truncate(path, size)
		}
		if err != nil {
			internal.GetLogger().Error(internal.ComponentStorage, "Rollback of %s failed: %v", name, err)
		}
	}
}

// GetAccountRepository returns the account repository
func (s *Store) GetAccountRepository() repositories.AccountRepository { return s }

// GetRecordRepository returns the record repository
func (s *Store) GetRecordRepository() repositories.RecordRepository { return s }

// GetAtmDepositRepository returns the ATM log repository
func (s *Store) GetAtmDepositRepository() repositories.AtmDepositRepository { return s }

// Close is a no-op; files are closed after every access
func (s *Store) Close() error { return nil }

// write appends the row now, or stages it when ctx carries a transaction
func (s *Store) write(ctx context.Context, file string, header, row []string) error {
	if j := current(ctx); j != nil {
		j.writes = append(j.writes, pendingWrite{file: file, header: header, row: row})
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendRow(file, header, row)
}

// appendRow appends one row and syncs the file. The header is written
// first when the file is new. Caller holds s.mu.
func (s *Store) appendRow(name string, header, row []string) error {
	path := s.path(name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write header to %s: %w", path, err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write row to %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return file.Sync()
}

// readRows returns every data row of a file, skipping the header.
// A missing file has no rows.
func (s *Store) readRows(name string, width int) ([][]string, error) {
	path := s.path(name)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = width

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record from %s: %w", path, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.Size(), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse timestamp '%s': %w", s, err)
	}
	return t, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("could not parse amount '%s': %w", s, err)
	}
	return d, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse id '%s': %w", s, err)
	}
	return id, nil
}

func sortAccounts(accounts []*models.AccountInfo) {
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
}

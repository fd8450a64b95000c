// Package sqlite stores accounts, ledgers and the bank ATM log in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
)

type txKey struct{}

// executor is the subset of *sql.DB and *sql.Tx the repositories use
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Database implements the UnitOfWork interface on top of a SQLite file
type Database struct {
	db          *sql.DB
	accountRepo *AccountRepository
	recordRepo  *RecordRepository
	atmRepo     *AtmDepositRepository
}

var _ repositories.UnitOfWork = (*Database)(nil)

// NewDatabase opens (or creates) the SQLite database at path.
// ":memory:" gives a private in-memory database.
func NewDatabase(path string) (*Database, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serialises writers and keeps ":memory:" shared
	db.SetMaxOpenConns(1)

	// Create tables if they don't exist
	if err := initializeDatabase(db); err != nil {
		db.Close()
		return nil, err
	}

	d := &Database{db: db}
	d.accountRepo = &AccountRepository{db: d}
	d.recordRepo = &RecordRepository{db: d}
	d.atmRepo = &AtmDepositRepository{db: d}

	internal.GetLogger().Debug(internal.ComponentStorage, "Opened SQLite ledger at %s", path)
	return d, nil
}

// Initialize database tables
func initializeDatabase(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			secret TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create accounts table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			account_id INTEGER NOT NULL REFERENCES accounts(id),
			timestamp TEXT NOT NULL,
			kind TEXT NOT NULL,
			amount TEXT NOT NULL,
			transfer_id TEXT,
			counterparty INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_records_account ON records(account_id, seq);
	`)
	if err != nil {
		return fmt.Errorf("failed to create records table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS atm_deposits (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			atm_id INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			amount TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create atm_deposits table: %w", err)
	}

	return nil
}

// conn returns the transaction carried by ctx, or the database itself
func (d *Database) conn(ctx context.Context) executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return d.db
}

// RunInTransaction executes fn inside a SQL transaction
func (d *Database) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(txKey{}).(*sql.Tx); nested {
		return fn(ctx)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			internal.GetLogger().Error(internal.ComponentStorage, "Rollback failed: %v", rbErr)
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetAccountRepository returns the account repository
func (d *Database) GetAccountRepository() repositories.AccountRepository {
	return d.accountRepo
}

// GetRecordRepository returns the record repository
func (d *Database) GetRecordRepository() repositories.RecordRepository {
	return d.recordRepo
}

// GetAtmDepositRepository returns the ATM log repository
func (d *Database) GetAtmDepositRepository() repositories.AtmDepositRepository {
	return d.atmRepo
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// isUniqueViolation reports whether err is a primary key or unique constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique)
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

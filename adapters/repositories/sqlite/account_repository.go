package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
)

// AccountRepository is a SQLite implementation of the AccountRepository interface
type AccountRepository struct {
	db *Database
}

// FindByID finds an account by ID
func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*models.AccountInfo, error) {
	row := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT id, name, role, secret, created_at, updated_at FROM accounts WHERE id = ?`, id)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account %d: %w", id, models.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// FindAll returns every account ordered by ID
func (r *AccountRepository) FindAll(ctx context.Context) ([]*models.AccountInfo, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx,
		`SELECT id, name, role, secret, created_at, updated_at FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.AccountInfo
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to map account row: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Create stores a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.AccountInfo) error {
	_, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO accounts (id, name, role, secret, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, account.ID, account.Name, string(account.Role), account.Secret,
		account.CreatedAt.Format(time.RFC3339Nano), account.UpdatedAt.Format(time.RFC3339Nano))

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %d: %w", account.ID, models.ErrDuplicateAccount)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// UpdateSecret replaces the stored secret of an account
func (r *AccountRepository) UpdateSecret(ctx context.Context, id int64, secret string) error {
	res, err := r.db.conn(ctx).ExecContext(ctx,
		`UPDATE accounts SET secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to update account secret: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update account secret: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", id, models.ErrAccountNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.AccountInfo, error) {
	var (
		account              models.AccountInfo
		role                 string
		createdAt, updatedAt string
	)
	if err := row.Scan(&account.ID, &account.Name, &role, &account.Secret, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if account.Role, err = models.ParseAccountRole(role); err != nil {
		return nil, err
	}
	if account.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if account.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &account, nil
}

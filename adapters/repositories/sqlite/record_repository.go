package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
)

// RecordRepository is a SQLite implementation of the RecordRepository interface
type RecordRepository struct {
	db *Database
}

// Append stores a record at the end of its account's log
func (r *RecordRepository) Append(ctx context.Context, record models.Record) error {
	var counterparty sql.NullInt64
	if record.Counterparty != 0 {
		counterparty = sql.NullInt64{Int64: record.Counterparty, Valid: true}
	}

	_, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO records (id, account_id, timestamp, kind, amount, transfer_id, counterparty)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.AccountID, record.Timestamp.Format(time.RFC3339Nano), string(record.Kind),
		record.Amount.String(), record.TransferID, counterparty)

	if err != nil {
		return fmt.Errorf("failed to append record %s: %w", record.ID, err)
	}
	return nil
}

// FindByAccount returns an account's records in append order
func (r *RecordRepository) FindByAccount(ctx context.Context, accountID int64) ([]models.Record, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `
		SELECT id, account_id, timestamp, kind, amount, transfer_id, counterparty
		FROM records WHERE account_id = ? ORDER BY seq
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to read records of account %d: %w", accountID, err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var (
			record       models.Record
			timestamp    string
			kind         string
			amount       string
			transferID   sql.NullString
			counterparty sql.NullInt64
		)
		if err := rows.Scan(&record.ID, &record.AccountID, &timestamp, &kind, &amount, &transferID, &counterparty); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		if record.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp); err != nil {
			return nil, fmt.Errorf("could not parse timestamp '%s': %w", timestamp, err)
		}
		if record.Kind, err = models.ParseRecordKind(kind); err != nil {
			return nil, err
		}
		if record.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("could not parse amount '%s': %w", amount, err)
		}
		record.TransferID = transferID.String
		record.Counterparty = counterparty.Int64

		records = append(records, record)
	}
	return records, rows.Err()
}

// AtmDepositRepository is a SQLite implementation of the bank-wide ATM log
type AtmDepositRepository struct {
	db *Database
}

// AppendAtmDeposit stores an ATM cash-in event
func (r *AtmDepositRepository) AppendAtmDeposit(ctx context.Context, deposit models.AtmDeposit) error {
	_, err := r.db.conn(ctx).ExecContext(ctx, `
		INSERT INTO atm_deposits (id, atm_id, timestamp, amount) VALUES (?, ?, ?, ?)
	`, deposit.ID, deposit.AtmID, deposit.Timestamp.Format(time.RFC3339Nano), deposit.Amount.String())
	if err != nil {
		return fmt.Errorf("failed to append atm deposit %s: %w", deposit.ID, err)
	}
	return nil
}

// FindAtmDeposits returns the log entries matching the filter in append order
func (r *AtmDepositRepository) FindAtmDeposits(ctx context.Context, filter repositories.AtmDepositFilter) ([]models.AtmDeposit, error) {
	query := `SELECT id, atm_id, timestamp, amount FROM atm_deposits`
	var args []any
	if filter.AtmID != 0 {
		query += ` WHERE atm_id = ?`
		args = append(args, filter.AtmID)
	}
	query += ` ORDER BY seq`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read atm deposits: %w", err)
	}
	defer rows.Close()

	var deposits []models.AtmDeposit
	for rows.Next() {
		var (
			deposit   models.AtmDeposit
			timestamp string
			amount    string
		)
		if err := rows.Scan(&deposit.ID, &deposit.AtmID, &timestamp, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan atm deposit: %w", err)
		}
		if deposit.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp); err != nil {
			return nil, fmt.Errorf("could not parse timestamp '%s': %w", timestamp, err)
		}
		if deposit.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("could not parse amount '%s': %w", amount, err)
		}

		// Time filtering happens here; RFC3339 strings with mixed precision do not sort lexically
		if filter.Matches(deposit) {
			deposits = append(deposits, deposit)
		}
	}
	return deposits, rows.Err()
}

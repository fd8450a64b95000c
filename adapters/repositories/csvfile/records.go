package csvfile

import (
	"context"
	"strconv"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
)

// Append adds a row to the account's transactions file
func (s *Store) Append(ctx context.Context, record models.Record) error {
	counterparty := ""
	if record.Counterparty != 0 {
		counterparty = strconv.FormatInt(record.Counterparty, 10)
	}

	row := []string{
		record.ID,
		formatTime(record.Timestamp),
		string(record.Kind),
		record.Amount.String(),
		record.TransferID,
		counterparty,
	}
	return s.write(ctx, RecordsFile(record.AccountID), recordsHeader, row)
}

// FindByAccount reads the account's transactions file in order
func (s *Store) FindByAccount(ctx context.Context, accountID int64) ([]models.Record, error) {
	s.mu.Lock()
	rows, err := s.readRows(RecordsFile(accountID), len(recordsHeader))
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		ts, err := parseTime(row[1])
		if err != nil {
			return nil, err
		}
		kind, err := models.ParseRecordKind(row[2])
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(row[3])
		if err != nil {
			return nil, err
		}

		record := models.Record{
			ID:         row[0],
			AccountID:  accountID,
			Timestamp:  ts,
			Kind:       kind,
			Amount:     amount,
			TransferID: row[4],
		}
		if row[5] != "" {
			if record.Counterparty, err = parseID(row[5]); err != nil {
				return nil, err
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// AppendAtmDeposit adds a row to bank_transactions.csv
func (s *Store) AppendAtmDeposit(ctx context.Context, deposit models.AtmDeposit) error {
	row := []string{
		deposit.ID,
		strconv.FormatInt(deposit.AtmID, 10),
		formatTime(deposit.Timestamp),
		deposit.Amount.String(),
	}
	return s.write(ctx, bankFile, bankHeader, row)
}

// FindAtmDeposits reads bank_transactions.csv and keeps the matching rows
func (s *Store) FindAtmDeposits(ctx context.Context, filter repositories.AtmDepositFilter) ([]models.AtmDeposit, error) {
	s.mu.Lock()
	rows, err := s.readRows(bankFile, len(bankHeader))
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var deposits []models.AtmDeposit
	for _, row := range rows {
		atmID, err := parseID(row[1])
		if err != nil {
			return nil, err
		}
		ts, err := parseTime(row[2])
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(row[3])
		if err != nil {
			return nil, err
		}

		deposit := models.AtmDeposit{ID: row[0], AtmID: atmID, Timestamp: ts, Amount: amount}
		if filter.Matches(deposit) {
			deposits = append(deposits, deposit)
		}
	}
	return deposits, nil
}

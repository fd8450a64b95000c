package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/firedragon-ledger/adapters/repositories/memory"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestDirectory(t *testing.T, opts ...Option) (*Directory, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewDirectory(store, opts...), store
}

func registerUser(t *testing.T, d *Directory, id int64, balance string) *Account {
	t.Helper()
	account, err := d.Register(context.Background(), RegisterInput{
		ID:             id,
		Name:           "user",
		Role:           models.AccountRoleUser,
		InitialBalance: dec(balance),
		Secret:         "1234",
	})
	require.NoError(t, err)
	return account
}

// recorder collects observed records
type recorder struct {
	records chan models.Record
}

func newRecorder() *recorder {
	return &recorder{records: make(chan models.Record, 128)}
}

func (r *recorder) RecordAppended(rec models.Record) {
	r.records <- rec
}

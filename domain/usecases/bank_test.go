package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/firedragon-ledger/adapters/repositories/memory"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/ledger"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
)

type depositRecorder struct {
	deposits []models.AtmDeposit
}

func (r *depositRecorder) AtmDepositRecorded(d models.AtmDeposit) {
	r.deposits = append(r.deposits, d)
}

type failingLog struct{}

func (failingLog) AppendAtmDeposit(context.Context, models.AtmDeposit) error {
	return errors.New("log unavailable")
}

func (failingLog) FindAtmDeposits(context.Context, repositories.AtmDepositFilter) ([]models.AtmDeposit, error) {
	return nil, errors.New("log unavailable")
}

func TestBank_RecordAtmDepositDoesNotTouchLedgers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	dir := ledger.NewDirectory(store)
	user, err := dir.Register(ctx, ledger.RegisterInput{ID: 1, Name: "u", InitialBalance: decimal.NewFromInt(10), Secret: "1234"})
	require.NoError(t, err)

	obs := &depositRecorder{}
	bank := NewBank("Firedragon Bank", 1, store, obs)

	deposit, err := bank.RecordAtmDeposit(ctx, 7, decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, int64(7), deposit.AtmID)
	require.Len(t, obs.deposits, 1)
	assert.Equal(t, deposit.ID, obs.deposits[0].ID)

	assert.Equal(t, 1, user.Ledger().Len())
	assert.True(t, decimal.NewFromInt(10).Equal(user.Balance()))
}

func TestBank_RecordAtmDepositValidation(t *testing.T) {
	bank := NewBank("b", 1, memory.NewStore(), nil)

	_, err := bank.RecordAtmDeposit(context.Background(), 7, decimal.Zero)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = bank.RecordAtmDeposit(context.Background(), 0, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, models.ErrInvalidAccountID)
}

func TestBank_StorageFailure(t *testing.T) {
	bank := NewBank("b", 1, failingLog{}, nil)

	_, err := bank.RecordAtmDeposit(context.Background(), 7, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, models.ErrStorageFailure)

	_, err = bank.AtmDeposits(context.Background(), 7, models.All)
	assert.ErrorIs(t, err, models.ErrStorageFailure)
}

func TestBank_AtmDepositsPerAtm(t *testing.T) {
	ctx := context.Background()
	bank := NewBank("b", 1, memory.NewStore(), nil)

	for _, atm := range []int64{1, 2, 1} {
		_, err := bank.RecordAtmDeposit(ctx, atm, decimal.NewFromInt(100))
		require.NoError(t, err)
	}

	atm1, err := bank.AtmDeposits(ctx, 1, models.All)
	require.NoError(t, err)
	assert.Len(t, atm1, 2)

	future, err := bank.AtmDeposits(ctx, 1, models.TimeRange{Start: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)
}

func TestBank_Details(t *testing.T) {
	bank := NewBank("Firedragon Bank", 42, memory.NewStore(), nil)
	details := bank.Details()

	assert.Equal(t, "Firedragon Bank", details.Name)
	assert.Equal(t, int64(42), details.Number)
	assert.WithinDuration(t, time.Now(), details.Timestamp, time.Minute)
}

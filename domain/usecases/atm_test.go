package usecases

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/firedragon-ledger/adapters/repositories/memory"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/ledger"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
)

func newATMFixture(t *testing.T, balance int64) (*ATM, *ledger.Account, *Bank) {
	t.Helper()
	store := memory.NewStore()
	dir := ledger.NewDirectory(store)
	user, err := dir.Register(context.Background(), ledger.RegisterInput{
		ID: 1, Name: "u", InitialBalance: decimal.NewFromInt(balance), Secret: "1234",
	})
	require.NoError(t, err)

	bank := NewBank("b", 1, store, nil)
	return NewATM(100, "Main St", bank), user, bank
}

func TestATM_BankDepositFillsCounterAndLog(t *testing.T) {
	ctx := context.Background()
	atm, _, bank := newATMFixture(t, 0)

	_, err := atm.BankDeposit(ctx, decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(atm.Cash()))

	log, err := bank.AtmDeposits(ctx, atm.ID(), models.All)
	require.NoError(t, err)
	assert.Len(t, log, 1)

	_, err = atm.BankDeposit(ctx, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
	assert.True(t, decimal.NewFromInt(300).Equal(atm.Cash()))
}

func TestATM_UserDeposit(t *testing.T) {
	ctx := context.Background()
	atm, user, _ := newATMFixture(t, 10)

	_, err := atm.UserDeposit(ctx, user, decimal.NewFromInt(40))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(40).Equal(atm.Cash()))
	assert.True(t, decimal.NewFromInt(50).Equal(user.Balance()))

	_, err = atm.UserDeposit(ctx, user, decimal.Zero)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
	assert.True(t, decimal.NewFromInt(40).Equal(atm.Cash()))
}

func TestATM_Withdraw(t *testing.T) {
	ctx := context.Background()
	atm, user, _ := newATMFixture(t, 100)
	_, err := atm.BankDeposit(ctx, decimal.NewFromInt(50))
	require.NoError(t, err)

	t.Run("not enough cash in the machine", func(t *testing.T) {
		_, err := atm.Withdraw(ctx, user, decimal.NewFromInt(60))
		assert.ErrorIs(t, err, models.ErrInsufficientCash)
		assert.True(t, decimal.NewFromInt(50).Equal(atm.Cash()))
		assert.True(t, decimal.NewFromInt(100).Equal(user.Balance()))
	})

	t.Run("dispenses cash", func(t *testing.T) {
		_, err := atm.Withdraw(ctx, user, decimal.NewFromInt(30))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(20).Equal(atm.Cash()))
		assert.True(t, decimal.NewFromInt(70).Equal(user.Balance()))
	})

	t.Run("user funds short keeps counter", func(t *testing.T) {
		_, err := atm.UserDeposit(ctx, user, decimal.NewFromInt(1000))
		require.NoError(t, err)
		_, err = user.Withdraw(ctx, user.Balance())
		require.NoError(t, err)

		before := atm.Cash()
		_, err = atm.Withdraw(ctx, user, decimal.NewFromInt(10))
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
		assert.True(t, before.Equal(atm.Cash()))
	})
}

func TestNewATMFromLog(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	dir := ledger.NewDirectory(store)
	user, err := dir.Register(ctx, ledger.RegisterInput{ID: 1, Name: "u", InitialBalance: decimal.NewFromInt(500), Secret: "1234"})
	require.NoError(t, err)
	bank := NewBank("b", 1, store, nil)

	atm := NewATM(100, "Main St", bank)
	for _, amount := range []int64{100, 250} {
		_, err := atm.BankDeposit(ctx, decimal.NewFromInt(amount))
		require.NoError(t, err)
	}
	_, err = atm.UserDeposit(ctx, user, decimal.NewFromInt(40))
	require.NoError(t, err)
	_, err = atm.Withdraw(ctx, user, decimal.NewFromInt(90))
	require.NoError(t, err)

	// Cash moved at another ATM or at the counter does not count
	other := NewATM(200, "Elm St", bank)
	_, err = other.UserDeposit(ctx, user, decimal.NewFromInt(7))
	require.NoError(t, err)
	_, err = user.Withdraw(ctx, decimal.NewFromInt(3))
	require.NoError(t, err)

	restored, err := NewATMFromLog(ctx, atm.ID(), atm.Name(), bank, dir)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(300).Equal(restored.Cash()), restored.Cash().String())
	assert.True(t, atm.Cash().Equal(restored.Cash()))
}

func TestATM_CashSurvivesReopen(t *testing.T) {
	for _, backend := range storeBackends() {
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()
			store := backend.open(t)
			bank := NewBank("b", 1, store.GetAtmDepositRepository(), nil)

			dir := ledger.NewDirectory(store)
			_, err := dir.Register(ctx, ledger.RegisterInput{ID: 1, Name: "u", InitialBalance: decimal.NewFromInt(500), Secret: "1234"})
			require.NoError(t, err)

			// Each step reloads the directory and the ATM, as a new process would
			reopen := func() (*ATM, *ledger.Account) {
				t.Helper()
				dir := ledger.NewDirectory(store)
				require.NoError(t, dir.Load(ctx))
				user, err := dir.Lookup(1)
				require.NoError(t, err)
				atm, err := NewATMFromLog(ctx, 100, "Main St", bank, dir)
				require.NoError(t, err)
				return atm, user
			}

			atm, _ := reopen()
			_, err = atm.BankDeposit(ctx, decimal.NewFromInt(100))
			require.NoError(t, err)

			atm, user := reopen()
			_, err = atm.Withdraw(ctx, user, decimal.NewFromInt(100))
			require.NoError(t, err)

			atm, user = reopen()
			assert.True(t, atm.Cash().IsZero(), atm.Cash().String())
			_, err = atm.Withdraw(ctx, user, decimal.NewFromInt(100))
			assert.ErrorIs(t, err, models.ErrInsufficientCash)
			assert.True(t, decimal.NewFromInt(400).Equal(user.Balance()))

			_, err = atm.UserDeposit(ctx, user, decimal.NewFromInt(60))
			require.NoError(t, err)

			atm, user = reopen()
			assert.True(t, decimal.NewFromInt(60).Equal(atm.Cash()))
			_, err = atm.Withdraw(ctx, user, decimal.NewFromInt(60))
			require.NoError(t, err)
			assert.True(t, decimal.NewFromInt(400).Equal(user.Balance()))
		})
	}
}

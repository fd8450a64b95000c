package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
)

func TestAccount_DepositAndWithdraw(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDirectory(t)
	account := registerUser(t, d, 1, "100")

	rec, err := account.Deposit(ctx, dec("20"))
	require.NoError(t, err)
	assert.Equal(t, models.RecordKindDeposit, rec.Kind)
	assert.True(t, dec("20").Equal(rec.Amount))

	rec, err = account.Withdraw(ctx, dec("70"))
	require.NoError(t, err)
	assert.Equal(t, models.RecordKindWithdrawal, rec.Kind)
	assert.True(t, dec("-70").Equal(rec.Amount))

	assert.True(t, dec("50").Equal(account.Balance()))
}

func TestAccount_InvalidAmounts(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDirectory(t)
	account := registerUser(t, d, 1, "100")

	for _, amount := range []string{"0", "-5"} {
		_, err := account.Deposit(ctx, dec(amount))
		assert.ErrorIs(t, err, models.ErrInvalidAmount)

		_, err = account.Withdraw(ctx, dec(amount))
		assert.ErrorIs(t, err, models.ErrInvalidAmount)
	}
	assert.Equal(t, 1, account.Ledger().Len())
	assert.True(t, dec("100").Equal(account.Balance()))
}

func TestAccount_InsufficientFundsLeavesBalance(t *testing.T) {
	d, _ := newTestDirectory(t)
	account := registerUser(t, d, 1, "100")

	_, err := account.Withdraw(context.Background(), dec("150"))
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	assert.True(t, dec("100").Equal(account.Balance()))
	assert.Equal(t, 1, account.Ledger().Len())
}

func TestAccount_WithdrawStorageFailure(t *testing.T) {
	d, store := newTestDirectory(t)
	account := registerUser(t, d, 1, "100")
	store.SetAppendHook(func(models.Record) error { return errors.New("io error") })

	_, err := account.Withdraw(context.Background(), dec("10"))
	assert.ErrorIs(t, err, models.ErrStorageFailure)
	assert.True(t, dec("100").Equal(account.Balance()))
}

func TestAccount_ConcurrentWithdrawals(t *testing.T) {
	const workers = 50
	for _, backend := range storeBackends() {
		t.Run(backend.name, func(t *testing.T) {
			store := backend.open(t)
			d := NewDirectory(store)
			// 10 withdrawals of 7 fit into 75
			account := registerUser(t, d, 1, "75")

			var (
				wg        sync.WaitGroup
				succeeded atomic.Int32
				refused   atomic.Int32
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := account.Withdraw(context.Background(), dec("7"))
					switch {
					case err == nil:
						succeeded.Add(1)
					case errors.Is(err, models.ErrInsufficientFunds):
						refused.Add(1)
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.EqualValues(t, 10, succeeded.Load())
			assert.EqualValues(t, workers-10, refused.Load())
			assert.True(t, dec("5").Equal(account.Balance()))
			assert.False(t, account.Balance().IsNegative())
			assert.NoError(t, account.Ledger().Verify())

			reloaded, err := reload(t, store).Lookup(1)
			require.NoError(t, err)
			assert.True(t, dec("5").Equal(reloaded.Balance()))
			assert.Equal(t, 11, reloaded.Ledger().Len())
		})
	}
}

func TestAccount_Authenticate(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDirectory(t)
	user := registerUser(t, d, 1, "0")
	atm, err := d.Register(ctx, RegisterInput{ID: 2, Name: "atm", Role: models.AccountRoleATM, Secret: "1234"})
	require.NoError(t, err)

	assert.True(t, user.Authenticate(1, "1234"))
	assert.False(t, user.Authenticate(1, "9999"))
	assert.False(t, user.Authenticate(3, "1234"))
	assert.False(t, atm.Authenticate(2, "1234"))
}

func TestAccount_ChangeSecret(t *testing.T) {
	ctx := context.Background()
	d, store := newTestDirectory(t)
	user := registerUser(t, d, 1, "0")

	err := user.ChangeSecret(ctx, "wrong", "4321")
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)

	err = user.ChangeSecret(ctx, "1234", "")
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)

	require.NoError(t, user.ChangeSecret(ctx, "1234", "4321"))
	assert.True(t, user.Authenticate(1, "4321"))
	assert.False(t, user.Authenticate(1, "1234"))

	stored, err := store.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "4321", stored.Secret)
}

func TestAccount_ObserverSeesRecords(t *testing.T) {
	obs := newRecorder()
	d, _ := newTestDirectory(t, WithObserver(obs))
	account := registerUser(t, d, 1, "10")

	_, err := account.Deposit(context.Background(), dec("5"))
	require.NoError(t, err)

	initial := <-obs.records
	deposit := <-obs.records
	assert.Equal(t, models.RecordKindInitialBalance, initial.Kind)
	assert.Equal(t, models.RecordKindDeposit, deposit.Kind)
}

func TestAccount_CashAtATMNamesTheATM(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDirectory(t)
	account := registerUser(t, d, 1, "100")

	in, err := account.DepositAt(ctx, 900, dec("30"))
	require.NoError(t, err)
	assert.Equal(t, models.RecordKindDeposit, in.Kind)
	assert.Equal(t, int64(900), in.Counterparty)

	out, err := account.WithdrawAt(ctx, 900, dec("50"))
	require.NoError(t, err)
	assert.Equal(t, models.RecordKindWithdrawal, out.Kind)
	assert.True(t, dec("-50").Equal(out.Amount))
	assert.Equal(t, int64(900), out.Counterparty)

	_, err = account.WithdrawAt(ctx, 900, dec("500"))
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	plain, err := account.Deposit(ctx, dec("1"))
	require.NoError(t, err)
	assert.Zero(t, plain.Counterparty)
	assert.True(t, dec("81").Equal(account.Balance()))
}

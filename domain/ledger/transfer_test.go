package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
)

func TestTransfer_MovesMoneyWithLinkedLegs(t *testing.T) {
	ctx := context.Background()
	d, store := newTestDirectory(t)
	alice := registerUser(t, d, 1, "100")
	bob := registerUser(t, d, 2, "10")
	transfers := NewTransferCoordinator(store, nil)

	id, err := transfers.Transfer(ctx, alice, bob, dec("60"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	assert.True(t, dec("40").Equal(alice.Balance()))
	assert.True(t, dec("70").Equal(bob.Balance()))

	out := alice.Ledger().History(models.All)[1]
	in := bob.Ledger().History(models.All)[1]
	assert.Equal(t, id, out.TransferID)
	assert.Equal(t, id, in.TransferID)
	assert.Equal(t, int64(2), out.Counterparty)
	assert.Equal(t, int64(1), in.Counterparty)
	assert.True(t, out.Amount.Add(in.Amount).IsZero())
	assert.True(t, out.IsOutgoing())
}

func TestTransfer_Preconditions(t *testing.T) {
	ctx := context.Background()
	d, store := newTestDirectory(t)
	alice := registerUser(t, d, 1, "50")
	bob := registerUser(t, d, 2, "0")
	transfers := NewTransferCoordinator(store, nil)

	tests := []struct {
		name   string
		amount string
		want   error
	}{
		{"zero", "0", models.ErrInvalidAmount},
		{"negative", "-1", models.ErrInvalidAmount},
		{"too much", "50.01", models.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transfers.Transfer(ctx, alice, bob, dec(tt.amount))
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, alice.Ledger().Len())
			assert.Equal(t, 1, bob.Ledger().Len())
		})
	}
}

func TestTransfer_FailureOnSecondLegWritesNothing(t *testing.T) {
	ctx := context.Background()
	d, store := newTestDirectory(t)
	alice := registerUser(t, d, 1, "100")
	bob := registerUser(t, d, 2, "0")
	transfers := NewTransferCoordinator(store, nil)

	store.SetAppendHook(func(rec models.Record) error {
		if rec.AccountID == bob.ID() {
			return errors.New("write failed")
		}
		return nil
	})

	_, err := transfers.Transfer(ctx, alice, bob, dec("30"))
	require.ErrorIs(t, err, models.ErrStorageFailure)

	assert.True(t, dec("100").Equal(alice.Balance()))
	assert.True(t, dec("0").Equal(bob.Balance()))

	persisted, err := store.FindByAccount(ctx, alice.ID())
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestTransfer_SelfTransferLogsOffsettingRecords(t *testing.T) {
	d, store := newTestDirectory(t)
	alice := registerUser(t, d, 1, "20")
	transfers := NewTransferCoordinator(store, nil)

	_, err := transfers.Transfer(context.Background(), alice, alice, dec("5"))
	require.NoError(t, err)

	assert.Equal(t, 3, alice.Ledger().Len())
	assert.True(t, dec("20").Equal(alice.Balance()))
}

func TestTransfer_OppositeDirectionsDoNotDeadlock(t *testing.T) {
	const rounds = 50
	for _, backend := range storeBackends() {
		t.Run(backend.name, func(t *testing.T) {
			store := backend.open(t)
			d := NewDirectory(store)
			alice := registerUser(t, d, 1, "1000")
			bob := registerUser(t, d, 2, "1000")
			transfers := NewTransferCoordinator(store, nil)

			var wg sync.WaitGroup
			for i := 0; i < rounds; i++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					_, err := transfers.Transfer(context.Background(), alice, bob, dec("1"))
					assert.NoError(t, err)
				}()
				go func() {
					defer wg.Done()
					_, err := transfers.Transfer(context.Background(), bob, alice, dec("1"))
					assert.NoError(t, err)
				}()
			}

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(30 * time.Second):
				t.Fatal("transfers deadlocked")
			}

			assert.True(t, dec("1000").Equal(alice.Balance()))
			assert.True(t, dec("1000").Equal(bob.Balance()))

			reloaded := reload(t, store)
			for _, a := range reloaded.Accounts() {
				assert.True(t, dec("1000").Equal(a.Balance()), "account %d", a.ID())
				assert.Equal(t, 1+2*rounds, a.Ledger().Len())
			}
		})
	}
}

func TestTransfer_WorkedExample(t *testing.T) {
	ctx := context.Background()
	d, store := newTestDirectory(t)
	transfers := NewTransferCoordinator(store, nil)

	u1 := registerUser(t, d, 1, "100")
	u2 := registerUser(t, d, 2, "0")

	_, err := u1.Withdraw(ctx, dec("150"))
	require.ErrorIs(t, err, models.ErrInsufficientFunds)
	assert.True(t, dec("100").Equal(u1.Balance()))

	_, err = u1.Withdraw(ctx, dec("40"))
	require.NoError(t, err)
	assert.True(t, dec("60").Equal(u1.Balance()))

	_, err = transfers.Transfer(ctx, u1, u2, dec("60"))
	require.NoError(t, err)
	assert.True(t, u1.Balance().IsZero())
	assert.True(t, dec("60").Equal(u2.Balance()))

	kinds := func(a *Account) []models.RecordKind {
		var out []models.RecordKind
		for rec := range a.Ledger().Records() {
			out = append(out, rec.Kind)
		}
		return out
	}
	assert.Equal(t, []models.RecordKind{
		models.RecordKindInitialBalance, models.RecordKindWithdrawal, models.RecordKindTransfer,
	}, kinds(u1))
	assert.Equal(t, []models.RecordKind{
		models.RecordKindInitialBalance, models.RecordKindTransfer,
	}, kinds(u2))
}

func TestTransfer_ObserverSeesBothLegs(t *testing.T) {
	obs := newRecorder()
	d, store := newTestDirectory(t)
	alice := registerUser(t, d, 1, "10")
	bob := registerUser(t, d, 2, "0")
	transfers := NewTransferCoordinator(store, obs)

	id, err := transfers.Transfer(context.Background(), alice, bob, dec("4"))
	require.NoError(t, err)

	out := <-obs.records
	in := <-obs.records
	assert.Equal(t, id, out.TransferID)
	assert.Equal(t, id, in.TransferID)
	assert.Equal(t, alice.ID(), out.AccountID)
	assert.Equal(t, bob.ID(), in.AccountID)
}

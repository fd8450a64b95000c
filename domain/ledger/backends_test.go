package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/firedragon-ledger/adapters/repositories/csvfile"
	"github.com/ZanzyTHEbar/firedragon-ledger/adapters/repositories/memory"
	"github.com/ZanzyTHEbar/firedragon-ledger/adapters/repositories/sqlite"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
)

type storeBackend struct {
	name string
	open func(t *testing.T) repositories.UnitOfWork
}

// storeBackends lists every storage driver; each open call returns a fresh store
func storeBackends() []storeBackend {
	return []storeBackend{
		{"memory", func(t *testing.T) repositories.UnitOfWork {
			return memory.NewStore()
		}},
		{"sqlite", func(t *testing.T) repositories.UnitOfWork {
			db, err := sqlite.NewDatabase(filepath.Join(t.TempDir(), "ledger.db"))
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			return db
		}},
		{"csv", func(t *testing.T) repositories.UnitOfWork {
			store, err := csvfile.NewStore(t.TempDir())
			require.NoError(t, err)
			t.Cleanup(func() { store.Close() })
			return store
		}},
	}
}

// reload rebuilds a directory from store, as a restarted process would
func reload(t *testing.T, store repositories.UnitOfWork) *Directory {
	t.Helper()
	d := NewDirectory(store)
	require.NoError(t, d.Load(context.Background()))
	return d
}

package factory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/firedragon-ledger/adapters/repositories/csvfile"
	"github.com/ZanzyTHEbar/firedragon-ledger/adapters/repositories/memory"
	"github.com/ZanzyTHEbar/firedragon-ledger/adapters/repositories/sqlite"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/nats_common"
)

func TestNewUnitOfWork(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		driver string
		path   string
		check  func(t *testing.T, uow interface{})
	}{
		{internal.StorageDriverSQLite, filepath.Join(dir, "nested", "ledger.db"), func(t *testing.T, uow interface{}) {
			assert.IsType(t, &sqlite.Database{}, uow)
		}},
		{internal.StorageDriverCSV, filepath.Join(dir, "csv"), func(t *testing.T, uow interface{}) {
			assert.IsType(t, &csvfile.Store{}, uow)
		}},
		{internal.StorageDriverMemory, "", func(t *testing.T, uow interface{}) {
			assert.IsType(t, &memory.Store{}, uow)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg := &internal.Config{}
			cfg.Storage.Driver = tt.driver
			cfg.Storage.Path = tt.path

			uow, err := NewUnitOfWork(cfg)
			require.NoError(t, err)
			defer uow.Close()
			tt.check(t, uow)
		})
	}

	cfg := &internal.Config{}
	cfg.Storage.Driver = "postgres"
	_, err := NewUnitOfWork(cfg)
	assert.Error(t, err)
}

func TestNewMessaging_Disabled(t *testing.T) {
	m, err := NewMessaging(&internal.Config{})
	require.NoError(t, err)
	assert.IsType(t, nats_common.NoopMessaging{}, m)
}

// Package factory builds the storage and messaging backends named in the configuration.
package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/firedragon-ledger/adapters/repositories/csvfile"
	"github.com/ZanzyTHEbar/firedragon-ledger/adapters/repositories/memory"
	"github.com/ZanzyTHEbar/firedragon-ledger/adapters/repositories/sqlite"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/nats_common"
)

// NewUnitOfWork opens the storage backend selected by storage.driver
func NewUnitOfWork(cfg *internal.Config) (repositories.UnitOfWork, error) {
	switch cfg.Storage.Driver {
	case internal.StorageDriverSQLite:
		if dir := filepath.Dir(cfg.Storage.Path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return sqlite.NewDatabase(cfg.Storage.Path)
	case internal.StorageDriverCSV:
		return csvfile.NewStore(cfg.Storage.Path)
	case internal.StorageDriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// NewMessaging connects to NATS when enabled, otherwise returns a port that drops messages
func NewMessaging(cfg *internal.Config) (nats_common.MessagingPort, error) {
	if !cfg.NATS.Enabled {
		return nats_common.NoopMessaging{}, nil
	}

	adapter := nats_common.NewNATSAdapter(nats_common.NewNATSConfig(cfg), internal.GetLogger())
	if err := adapter.Connect(); err != nil {
		return nil, err
	}
	return adapter, nil
}

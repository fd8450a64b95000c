package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/ledger"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/usecases"
	"github.com/ZanzyTHEbar/firedragon-ledger/factory"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/nats_common"
	"github.com/ZanzyTHEbar/firedragon-ledger/services"
)

// Runtime wires storage, the account directory, the bank and the event services
type Runtime struct {
	Config    *internal.Config
	Logger    *internal.Logger
	Store     repositories.UnitOfWork
	Messaging nats_common.MessagingPort
	Services  *services.ActorServiceManager
	Directory *ledger.Directory
	Transfers *ledger.TransferCoordinator
	Bank      *usecases.Bank
}

// OpenRuntime opens the configured storage, starts the event services and
// rebuilds the account directory from storage
func OpenRuntime(ctx context.Context, cfg *internal.Config, logger *internal.Logger) (*Runtime, error) {
	if logger == nil {
		logger = internal.GetLogger()
	}

	store, err := factory.NewUnitOfWork(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	messaging, err := factory.NewMessaging(cfg)
	if err != nil {
		// Events are best effort; the ledger works without a broker
		logger.Warn(internal.ComponentNATS, "Publishing disabled: %v", err)
		messaging = nats_common.NoopMessaging{}
	}

	svc, err := services.NewActorServiceManager(cfg, messaging, logger)
	if err != nil {
		store.Close()
		messaging.Close()
		return nil, err
	}
	if err := svc.Initialize(); err != nil {
		store.Close()
		messaging.Close()
		return nil, err
	}
	if err := svc.StartAll(); err != nil {
		svc.Shutdown()
		store.Close()
		messaging.Close()
		return nil, err
	}

	rt := &Runtime{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Messaging: messaging,
		Services:  svc,
		Directory: ledger.NewDirectory(store, ledger.WithObserver(svc)),
		Transfers: ledger.NewTransferCoordinator(store, svc),
		Bank:      usecases.NewBank(cfg.Bank.Name, cfg.Bank.Number, store.GetAtmDepositRepository(), svc),
	}

	if err := rt.Directory.Load(ctx); err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return rt, nil
}

// Authenticate returns the user account identified by id and pin
func (r *Runtime) Authenticate(id int64, pin string) (*ledger.Account, error) {
	account, err := r.Directory.Lookup(id)
	if err != nil {
		return nil, err
	}
	if !account.Authenticate(id, pin) {
		return nil, fmt.Errorf("account %d: %w", id, models.ErrAuthenticationFailed)
	}
	return account, nil
}

// ATM returns the ATM registered under id with its cash counter rebuilt
// from the bank log and the ledgers
func (r *Runtime) ATM(ctx context.Context, id int64) (*usecases.ATM, error) {
	account, err := r.Directory.Lookup(id)
	if err != nil {
		return nil, err
	}
	if account.Role() != models.AccountRoleATM {
		return nil, fmt.Errorf("account %d is a %s account: %w", id, account.Role(), models.ErrInvalidRole)
	}
	return usecases.NewATMFromLog(ctx, id, account.Name(), r.Bank, r.Directory)
}

// Close drains pending events and releases every backend
func (r *Runtime) Close() error {
	var errs []error
	if r.Services != nil {
		if err := r.Services.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Messaging != nil {
		if err := r.Messaging.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/repositories"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
)

// loadConcurrency bounds the number of ledgers read in parallel by Load
const loadConcurrency = 8

// Directory maps account identifiers to accounts for the whole process
type Directory struct {
	mu       sync.RWMutex
	accounts map[int64]*Account

	uow      repositories.UnitOfWork
	observer Observer
}

// Option configures a Directory
type Option func(*Directory)

// WithObserver notifies o of every record appended through the directory's accounts
func WithObserver(o Observer) Option {
	return func(d *Directory) {
		if o != nil {
			d.observer = o
		}
	}
}

// NewDirectory creates an empty directory backed by uow
func NewDirectory(uow repositories.UnitOfWork, opts ...Option) *Directory {
	d := &Directory{
		accounts: make(map[int64]*Account),
		uow:      uow,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterInput defines the input for registering an account
type RegisterInput struct {
	ID             int64
	Name           string
	Role           models.AccountRole
	InitialBalance decimal.Decimal
	Secret         string
}

// Register creates an account whose ledger starts with an InitialBalance record.
// The account row and the record are written in one unit of work.
func (d *Directory) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	info := models.NewAccountInfo(input.ID, input.Name, input.Role, input.Secret)
	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("invalid account: %w", err)
	}
	if input.InitialBalance.IsNegative() {
		return nil, fmt.Errorf("initial balance %s: %w", input.InitialBalance, models.ErrInvalidAmount)
	}

	rec := models.NewRecord(info.ID, models.RecordKindInitialBalance, input.InitialBalance)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.accounts[info.ID]; exists {
		return nil, fmt.Errorf("account %d: %w", info.ID, models.ErrDuplicateAccount)
	}

	records := d.uow.GetRecordRepository()
	err := d.uow.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := d.uow.GetAccountRepository().Create(ctx, info); err != nil {
			return err
		}
		return records.Append(ctx, rec)
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicateAccount) {
			return nil, err
		}
		return nil, fmt.Errorf("register account %d: %w: %w", info.ID, models.ErrStorageFailure, err)
	}

	account := newAccount(*info, newLedger(info.ID, records, []models.Record{rec}), d.uow.GetAccountRepository(), d.observer)
	d.accounts[info.ID] = account

	internal.GetLogger().Info(internal.ComponentLedger, "Registered %s account %d (%s) with %s",
		info.Role, info.ID, info.Name, input.InitialBalance)
	d.observer.RecordAppended(rec)
	return account, nil
}

// Lookup returns the account with the given identifier
func (d *Directory) Lookup(id int64) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	account, ok := d.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, models.ErrAccountNotFound)
	}
	return account, nil
}

// Accounts returns every account ordered by identifier
func (d *Directory) Accounts() []*Account {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Account, 0, len(d.accounts))
	for _, account := range d.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Load replaces the directory contents with the accounts and ledgers
// found in storage. Ledgers are read concurrently.
func (d *Directory) Load(ctx context.Context) error {
	infos, err := d.uow.GetAccountRepository().FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w: %w", models.ErrStorageFailure, err)
	}

	records := d.uow.GetRecordRepository()
	loaded := make([]*Account, len(infos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, info := range infos {
		g.Go(func() error {
			recs, err := records.FindByAccount(gctx, info.ID)
			if err != nil {
				return fmt.Errorf("load ledger %d: %w: %w", info.ID, models.ErrStorageFailure, err)
			}
			if len(recs) == 0 || recs[0].Kind != models.RecordKindInitialBalance {
				return fmt.Errorf("ledger %d does not start with an initial balance: %w",
					info.ID, models.ErrInvalidRecordKind)
			}
			loaded[i] = newAccount(*info, newLedger(info.ID, records, recs), d.uow.GetAccountRepository(), d.observer)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	accounts := make(map[int64]*Account, len(loaded))
	for _, account := range loaded {
		accounts[account.ID()] = account
	}

	d.mu.Lock()
	d.accounts = accounts
	d.mu.Unlock()

	internal.GetLogger().Info(internal.ComponentLedger, "Loaded %d accounts", len(accounts))
	return nil
}

package repositories

import (
	"context"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
)

// AccountRepository defines the interface for account metadata access
type AccountRepository interface {
	// FindByID finds an account by ID, returning models.ErrAccountNotFound on a miss
	FindByID(ctx context.Context, id int64) (*models.AccountInfo, error)

	// FindAll returns every account ordered by ID
	FindAll(ctx context.Context) ([]*models.AccountInfo, error)

	// Create stores a new account, returning models.ErrDuplicateAccount if the ID is taken
	Create(ctx context.Context, account *models.AccountInfo) error

	// UpdateSecret replaces the stored secret of an account
	UpdateSecret(ctx context.Context, id int64, secret string) error
}

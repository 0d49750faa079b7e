package treasury

import (
	"context"

	"github.com/google/uuid"

	"github.com/karobar/backend/internal/domain/shared"
)

// AccountRepository defines persistence operations for accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Account, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Account, error)
	FindByTypeForOrg(ctx context.Context, orgID uuid.UUID, accountType AccountType) ([]Account, error)
	Save(ctx context.Context, account *Account) error
	// SaveWithLock saves using optimistic locking on the version column,
	// returning shared.ErrConcurrencyConflict on a stale write
	SaveWithLock(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionRepository defines persistence operations for account transactions
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByAccountForOrg(ctx context.Context, orgID, accountID uuid.UUID, filter shared.Filter) ([]Transaction, error)
	FindByOrderForOrg(ctx context.Context, orgID, orderID uuid.UUID) ([]Transaction, error)
	Create(ctx context.Context, transaction *Transaction) error
}

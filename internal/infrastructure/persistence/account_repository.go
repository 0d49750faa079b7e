package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/domain/treasury"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

func (r *GormAccountRepository) conn(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db).WithContext(ctx)
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Account, error) {
	var account treasury.Account
	if err := r.conn(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindByIDForOrg finds an account by ID within an organization
func (r *GormAccountRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*treasury.Account, error) {
	var account treasury.Account
	if err := r.conn(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindAllForOrg finds all accounts for an organization
func (r *GormAccountRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]treasury.Account, error) {
	query := r.conn(ctx).Model(&treasury.Account{}).Where("org_id = ?", orgID)
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	var accounts []treasury.Account
	if err := applyFilter(query, filter, "name ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindByTypeForOrg finds accounts of the given type for an organization
func (r *GormAccountRepository) FindByTypeForOrg(ctx context.Context, orgID uuid.UUID, accountType treasury.AccountType) ([]treasury.Account, error) {
	var accounts []treasury.Account
	if err := r.conn(ctx).
		Where("org_id = ? AND type = ?", orgID, accountType).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *treasury.Account) error {
	return r.conn(ctx).Save(account).Error
}

// SaveWithLock persists the balance with optimistic locking on the
// version column. Returns shared.ErrConcurrencyConflict on a stale write.
func (r *GormAccountRepository) SaveWithLock(ctx context.Context, account *treasury.Account) error {
	result := r.conn(ctx).Model(&treasury.Account{}).
		Where("id = ? AND version = ?", account.ID, account.Version).
		Updates(map[string]interface{}{
			"balance":    account.Balance,
			"updated_at": account.UpdatedAt,
			"version":    gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	account.IncrementVersion()
	return nil
}

// Delete deletes an account
func (r *GormAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.conn(ctx).Delete(&treasury.Account{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ treasury.AccountRepository = (*GormAccountRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/domain/treasury"
)

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

func (r *GormTransactionRepository) conn(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db).WithContext(ctx)
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Transaction, error) {
	var transaction treasury.Transaction
	if err := r.conn(ctx).First(&transaction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

// FindByAccountForOrg finds an account's transactions, newest first
func (r *GormTransactionRepository) FindByAccountForOrg(ctx context.Context, orgID, accountID uuid.UUID, filter shared.Filter) ([]treasury.Transaction, error) {
	query := r.conn(ctx).Model(&treasury.Transaction{}).
		Where("org_id = ? AND account_id = ?", orgID, accountID)

	var transactions []treasury.Transaction
	if err := applyFilter(query, filter, "created_at DESC").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// FindByOrderForOrg finds the transactions recorded against an order
func (r *GormTransactionRepository) FindByOrderForOrg(ctx context.Context, orgID, orderID uuid.UUID) ([]treasury.Transaction, error) {
	var transactions []treasury.Transaction
	if err := r.conn(ctx).
		Where("org_id = ? AND order_id = ?", orgID, orderID).
		Order("created_at ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// Create inserts a transaction. Transactions are append-only.
func (r *GormTransactionRepository) Create(ctx context.Context, transaction *treasury.Transaction) error {
	return r.conn(ctx).Create(transaction).Error
}

var _ treasury.TransactionRepository = (*GormTransactionRepository)(nil)

package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/karobar/backend/internal/domain/shared"
)

type txKey struct{}

// withTx stores the transaction handle in the context so repository
// calls made inside RunInTransaction join the same transaction
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// dbFrom returns the transaction from the context if one is active,
// otherwise the fallback connection
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}

// GormTransactionRunner implements shared.TransactionRunner on a GORM
// connection. The function receives a context carrying the transaction;
// repositories resolve it through dbFrom.
type GormTransactionRunner struct {
	db *gorm.DB
}

// NewGormTransactionRunner creates a new GormTransactionRunner
func NewGormTransactionRunner(db *gorm.DB) *GormTransactionRunner {
	return &GormTransactionRunner{db: db}
}

// RunInTransaction executes fn atomically. Any error rolls back every
// repository write made with the context fn receives.
func (r *GormTransactionRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}

var _ shared.TransactionRunner = (*GormTransactionRunner)(nil)

package persistence

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/karobar/backend/internal/domain/catalog"
	"github.com/karobar/backend/internal/domain/ordering"
	"github.com/karobar/backend/internal/domain/org"
	"github.com/karobar/backend/internal/domain/partner"
	"github.com/karobar/backend/internal/domain/treasury"
)

// newTestDB opens an isolated in-memory database with the full schema.
// Each test gets its own database, named after the test so parallel
// tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&treasury.Account{},
		&treasury.Transaction{},
		&partner.Entity{},
		&catalog.Product{},
		&catalog.Variant{},
		&org.Settings{},
		&ordering.Order{},
		&ordering.OrderItem{},
		&ordering.OrderCharge{},
		&OrderCounter{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

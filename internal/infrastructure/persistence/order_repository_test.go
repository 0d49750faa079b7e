package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karobar/backend/internal/domain/ordering"
	"github.com/karobar/backend/internal/domain/shared"
)

func storedOrder(orgID, entityID uuid.UUID, number string, grand, paid int64, issued time.Time) *ordering.Order {
	return &ordering.Order{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		OrderNumber:      number,
		Type:             ordering.OrderTypeSell,
		EntityID:         entityID,
		SubTotal:         decimal.NewFromInt(grand),
		GrandTotal:       decimal.NewFromInt(grand),
		PaidAmount:       decimal.NewFromInt(paid),
		IssuedAt:         issued,
	}
}

func TestGormOrderRepository_SaveAndFind(t *testing.T) {
	t.Run("saves an order with items and charges", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormOrderRepository(db)
		ctx := context.Background()

		orgID := uuid.New()
		order := storedOrder(orgID, uuid.New(), "SELL-000001", 250, 0, time.Now())
		order.Items = []ordering.OrderItem{{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: uuid.New(),
			VariantID: uuid.New(),
			Rate:      decimal.NewFromInt(125),
			Quantity:  2,
			Amount:    decimal.NewFromInt(250),
		}}
		order.Charges = []ordering.OrderCharge{{
			ID:             uuid.New(),
			OrderID:        order.ID,
			Label:          "VAT",
			Type:           ordering.ChargeTypePercentage,
			Amount:         decimal.NewFromFloat(32.5),
			Percentage:     decimal.NewFromInt(13),
			IsVat:          true,
			BearedByEntity: true,
		}}

		require.NoError(t, repo.Save(ctx, order))

		found, err := repo.FindByIDForOrg(ctx, orgID, order.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "SELL-000001", found.OrderNumber)
		require.Len(t, found.Items, 1)
		assert.Equal(t, 2, found.Items[0].Quantity)
		require.Len(t, found.Charges, 1)
		assert.True(t, found.Charges[0].IsVat)
	})

	t.Run("returns nil for an unknown order", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormOrderRepository(db)

		found, err := repo.FindByIDForOrg(context.Background(), uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("does not cross organization boundaries", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormOrderRepository(db)
		ctx := context.Background()

		order := storedOrder(uuid.New(), uuid.New(), "SELL-000001", 100, 0, time.Now())
		require.NoError(t, repo.Save(ctx, order))

		found, err := repo.FindByIDForOrg(ctx, uuid.New(), order.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormOrderRepository_FindOutstandingByEntity(t *testing.T) {
	t.Run("returns unsettled orders oldest first", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormOrderRepository(db)
		ctx := context.Background()

		orgID := uuid.New()
		entityID := uuid.New()
		now := time.Now()

		newest := storedOrder(orgID, entityID, "SELL-000003", 50, 0, now)
		oldest := storedOrder(orgID, entityID, "SELL-000001", 30, 10, now.Add(-48*time.Hour))
		middle := storedOrder(orgID, entityID, "SELL-000002", 40, 0, now.Add(-24*time.Hour))
		settled := storedOrder(orgID, entityID, "SELL-000004", 20, 20, now.Add(-72*time.Hour))

		for _, order := range []*ordering.Order{newest, oldest, middle, settled} {
			require.NoError(t, repo.Save(ctx, order))
		}

		outstanding, err := repo.FindOutstandingByEntity(ctx, orgID, entityID, ordering.OrderTypeSell)
		require.NoError(t, err)
		require.Len(t, outstanding, 3)
		assert.Equal(t, "SELL-000001", outstanding[0].OrderNumber)
		assert.Equal(t, "SELL-000002", outstanding[1].OrderNumber)
		assert.Equal(t, "SELL-000003", outstanding[2].OrderNumber)
	})

	t.Run("filters by order type", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormOrderRepository(db)
		ctx := context.Background()

		orgID := uuid.New()
		entityID := uuid.New()

		sell := storedOrder(orgID, entityID, "SELL-000001", 100, 0, time.Now())
		buy := storedOrder(orgID, entityID, "BUY-000001", 100, 0, time.Now())
		buy.Type = ordering.OrderTypeBuy
		require.NoError(t, repo.Save(ctx, sell))
		require.NoError(t, repo.Save(ctx, buy))

		outstanding, err := repo.FindOutstandingByEntity(ctx, orgID, entityID, ordering.OrderTypeBuy)
		require.NoError(t, err)
		require.Len(t, outstanding, 1)
		assert.Equal(t, "BUY-000001", outstanding[0].OrderNumber)
	})
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	t.Run("persists payment progress and bumps the version", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormOrderRepository(db)
		ctx := context.Background()

		orgID := uuid.New()
		order := storedOrder(orgID, uuid.New(), "SELL-000001", 100, 0, time.Now())
		require.NoError(t, repo.Save(ctx, order))

		require.NoError(t, order.ApplyPayment(decimal.NewFromInt(60)))
		require.NoError(t, repo.SaveWithLock(ctx, order))
		assert.Equal(t, 2, order.Version)

		found, err := repo.FindByIDForOrg(ctx, orgID, order.ID)
		require.NoError(t, err)
		assert.True(t, found.PaidAmount.Equal(decimal.NewFromInt(60)))
		assert.Equal(t, 2, found.Version)
	})

	t.Run("rejects a stale write", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormOrderRepository(db)
		ctx := context.Background()

		order := storedOrder(uuid.New(), uuid.New(), "SELL-000001", 100, 0, time.Now())
		require.NoError(t, repo.Save(ctx, order))

		stale := *order
		require.NoError(t, order.ApplyPayment(decimal.NewFromInt(60)))
		require.NoError(t, repo.SaveWithLock(ctx, order))

		require.NoError(t, stale.ApplyPayment(decimal.NewFromInt(40)))
		err := repo.SaveWithLock(ctx, &stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestGormOrderRepository_NextOrderNumber(t *testing.T) {
	t.Run("issues sequential numbers per org and type", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormOrderRepository(db)
		ctx := context.Background()

		orgID := uuid.New()

		first, err := repo.NextOrderNumber(ctx, orgID, ordering.OrderTypeSell)
		require.NoError(t, err)
		assert.Equal(t, "SELL-000001", first)

		second, err := repo.NextOrderNumber(ctx, orgID, ordering.OrderTypeSell)
		require.NoError(t, err)
		assert.Equal(t, "SELL-000002", second)

		buy, err := repo.NextOrderNumber(ctx, orgID, ordering.OrderTypeBuy)
		require.NoError(t, err)
		assert.Equal(t, "BUY-000001", buy)

		otherOrg, err := repo.NextOrderNumber(ctx, uuid.New(), ordering.OrderTypeSell)
		require.NoError(t, err)
		assert.Equal(t, "SELL-000001", otherOrg)
	})
}

package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karobar/backend/internal/domain/partner"
)

func TestGormEntityRepository(t *testing.T) {
	t.Run("saves and finds an entity within its org", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormEntityRepository(db)
		ctx := context.Background()

		orgID := uuid.New()
		entity, err := partner.NewEntity(orgID, "Ram Traders")
		require.NoError(t, err)
		entity.SetContact("9841000000", "Kathmandu")
		require.NoError(t, repo.Save(ctx, entity))

		found, err := repo.FindByIDForOrg(ctx, orgID, entity.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Ram Traders", found.Name)
		assert.Equal(t, "9841000000", found.Phone)
	})

	t.Run("finds the walk-in entity", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormEntityRepository(db)
		ctx := context.Background()

		orgID := uuid.New()
		named, err := partner.NewEntity(orgID, "Ram Traders")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, named))
		require.NoError(t, repo.Save(ctx, partner.NewDefaultEntity(orgID)))

		found, err := repo.FindDefaultForOrg(ctx, orgID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.IsDefault)
		assert.Equal(t, "Cash Customer", found.Name)
	})

	t.Run("returns nil when no walk-in entity exists", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormEntityRepository(db)

		found, err := repo.FindDefaultForOrg(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormSettingsRepository(t *testing.T) {
	t.Run("returns nil when no settings are saved", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewGormSettingsRepository(db)

		found, err := repo.FindByOrg(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

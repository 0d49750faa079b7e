package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karobar/backend/internal/domain/org"
)

// GormSettingsRepository implements SettingsRepository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

func (r *GormSettingsRepository) conn(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db).WithContext(ctx)
}

// FindByOrg finds the organization's settings, nil when none are saved
func (r *GormSettingsRepository) FindByOrg(ctx context.Context, orgID uuid.UUID) (*org.Settings, error) {
	var settings org.Settings
	if err := r.conn(ctx).
		Where("org_id = ?", orgID).
		First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

// Save creates or updates the organization's settings
func (r *GormSettingsRepository) Save(ctx context.Context, settings *org.Settings) error {
	return r.conn(ctx).Save(settings).Error
}

var _ org.SettingsRepository = (*GormSettingsRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karobar/backend/internal/domain/partner"
	"github.com/karobar/backend/internal/domain/shared"
)

// GormEntityRepository implements EntityRepository using GORM
type GormEntityRepository struct {
	db *gorm.DB
}

// NewGormEntityRepository creates a new GormEntityRepository
func NewGormEntityRepository(db *gorm.DB) *GormEntityRepository {
	return &GormEntityRepository{db: db}
}

func (r *GormEntityRepository) conn(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db).WithContext(ctx)
}

// FindByID finds an entity by its ID
func (r *GormEntityRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Entity, error) {
	var entity partner.Entity
	if err := r.conn(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// FindByIDForOrg finds an entity by ID within an organization
func (r *GormEntityRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*partner.Entity, error) {
	var entity partner.Entity
	if err := r.conn(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// FindAllForOrg finds all entities for an organization
func (r *GormEntityRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]partner.Entity, error) {
	query := r.conn(ctx).Model(&partner.Entity{}).Where("org_id = ?", orgID)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR phone ILIKE ?", pattern, pattern)
	}

	var entities []partner.Entity
	if err := applyFilter(query, filter, "name ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// FindDefaultForOrg finds the organization's walk-in entity
func (r *GormEntityRepository) FindDefaultForOrg(ctx context.Context, orgID uuid.UUID) (*partner.Entity, error) {
	var entity partner.Entity
	if err := r.conn(ctx).
		Where("org_id = ? AND is_default = ?", orgID, true).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// Save creates or updates an entity
func (r *GormEntityRepository) Save(ctx context.Context, entity *partner.Entity) error {
	return r.conn(ctx).Save(entity).Error
}

// Delete deletes an entity
func (r *GormEntityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.conn(ctx).Delete(&partner.Entity{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ partner.EntityRepository = (*GormEntityRepository)(nil)

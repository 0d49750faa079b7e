package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karobar/backend/internal/domain/ordering"
	"github.com/karobar/backend/internal/domain/shared"
)

// GormOrderRepository implements OrderRepository using GORM.
// Find methods return nil without error when no row matches; callers
// decide whether absence is an error.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) conn(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db).WithContext(ctx)
}

// FindByID finds an order with its items and charges
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.conn(ctx).
		Preload("Items").Preload("Charges").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDForOrg finds an order by ID within an organization
func (r *GormOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.conn(ctx).
		Preload("Items").Preload("Charges").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// FindAllForOrg finds all orders for an organization
func (r *GormOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]ordering.Order, error) {
	query := r.conn(ctx).Model(&ordering.Order{}).
		Preload("Items").Preload("Charges").
		Where("org_id = ?", orgID)
	query = r.applySearch(query, filter)

	var orders []ordering.Order
	if err := applyFilter(query, filter, "issued_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByEntityForOrg finds an entity's orders within an organization
func (r *GormOrderRepository) FindByEntityForOrg(ctx context.Context, orgID, entityID uuid.UUID, filter shared.Filter) ([]ordering.Order, error) {
	query := r.conn(ctx).Model(&ordering.Order{}).
		Preload("Items").Preload("Charges").
		Where("org_id = ? AND entity_id = ?", orgID, entityID)

	var orders []ordering.Order
	if err := applyFilter(query, filter, "issued_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindOutstandingByEntity returns the entity's unsettled orders of the
// given type, oldest first
func (r *GormOrderRepository) FindOutstandingByEntity(ctx context.Context, orgID, entityID uuid.UUID, orderType ordering.OrderType) ([]ordering.Order, error) {
	var orders []ordering.Order
	if err := r.conn(ctx).
		Where("org_id = ? AND entity_id = ? AND type = ? AND paid_amount < grand_total", orgID, entityID, orderType).
		Order("issued_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save inserts the order together with its items and charges. Orders
// are frozen at submission, later payment updates go through SaveWithLock.
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	return r.conn(ctx).Create(order).Error
}

// SaveWithLock persists payment progress with optimistic locking on the
// version column. Returns shared.ErrConcurrencyConflict on a stale write.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *ordering.Order) error {
	result := r.conn(ctx).Model(&ordering.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]interface{}{
			"paid_amount": order.PaidAmount,
			"updated_at":  order.UpdatedAt,
			"version":     gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	order.IncrementVersion()
	return nil
}

// NextOrderNumber issues the next sequential order number for the
// organization and order type. The counter row is upserted atomically
// so concurrent submissions never share a number.
func (r *GormOrderRepository) NextOrderNumber(ctx context.Context, orgID uuid.UUID, orderType ordering.OrderType) (string, error) {
	var value int64
	err := r.conn(ctx).Raw(`
		INSERT INTO order_counters (org_id, order_type, value)
		VALUES (?, ?, 1)
		ON CONFLICT (org_id, order_type)
		DO UPDATE SET value = order_counters.value + 1
		RETURNING value`, orgID, string(orderType)).Scan(&value).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", orderType, value), nil
}

func (r *GormOrderRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("order_number ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "settled":
			if value == true {
				query = query.Where("paid_amount >= grand_total")
			} else {
				query = query.Where("paid_amount < grand_total")
			}
		}
	}
	return query
}

// OrderCounter backs the per-organization order number sequence
type OrderCounter struct {
	OrgID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderType string    `gorm:"primaryKey;size:10"`
	Value     int64     `gorm:"not null"`
}

// TableName returns the database table name
func (OrderCounter) TableName() string {
	return "order_counters"
}

var _ ordering.OrderRepository = (*GormOrderRepository)(nil)

package ordering

import (
	"context"

	"github.com/google/uuid"

	"github.com/karobar/backend/internal/domain/shared"
)

// OrderRepository defines persistence operations for orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Order, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Order, error)
	FindByEntityForOrg(ctx context.Context, orgID, entityID uuid.UUID, filter shared.Filter) ([]Order, error)
	// FindOutstandingByEntity returns the entity's unsettled orders of the
	// given type ordered oldest first, the order payment sweeps consume them in.
	FindOutstandingByEntity(ctx context.Context, orgID, entityID uuid.UUID, orderType OrderType) ([]Order, error)
	Save(ctx context.Context, order *Order) error
	SaveWithLock(ctx context.Context, order *Order) error
	// NextOrderNumber issues the next sequential order number for the
	// organization and order type, such as "SELL-000042".
	NextOrderNumber(ctx context.Context, orgID uuid.UUID, orderType OrderType) (string, error)
}

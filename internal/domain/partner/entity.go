package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/karobar/backend/internal/domain/shared"
)

// Entity represents a counterparty of an order: the vendor on a BUY
// order or the customer on a SELL order. Each organization has one
// default entity standing in for walk-in cash customers.
type Entity struct {
	shared.OrgAggregateRoot
	Name      string
	Phone     string
	Address   string
	IsDefault bool
}

// NewEntity creates a new entity
func NewEntity(orgID uuid.UUID, name string) (*Entity, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Entity name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Entity name cannot exceed 200 characters")
	}

	return &Entity{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
	}, nil
}

// NewDefaultEntity creates the walk-in entity for an organization
func NewDefaultEntity(orgID uuid.UUID) *Entity {
	entity := &Entity{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             "Cash Customer",
		IsDefault:        true,
	}
	return entity
}

// SetContact updates contact details
func (e *Entity) SetContact(phone, address string) {
	e.Phone = phone
	e.Address = address
}

// TableName returns the database table name
func (Entity) TableName() string {
	return "entities"
}

// EntityRepository defines persistence operations for entities
type EntityRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Entity, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Entity, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Entity, error)
	FindDefaultForOrg(ctx context.Context, orgID uuid.UUID) (*Entity, error)
	Save(ctx context.Context, entity *Entity) error
	Delete(ctx context.Context, id uuid.UUID) error
}

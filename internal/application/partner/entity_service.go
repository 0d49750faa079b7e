package partner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/karobar/backend/internal/domain/partner"
	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/infrastructure/telemetry"
)

// EntityService manages the organization's counterparties
type EntityService struct {
	entityRepo partner.EntityRepository
}

// NewEntityService creates a new EntityService
func NewEntityService(entityRepo partner.EntityRepository) *EntityService {
	return &EntityService{entityRepo: entityRepo}
}

// CreateEntityRequest registers a new counterparty
type CreateEntityRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// EntityResponse is one serialized counterparty
type EntityResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntityResponse serializes an entity
func NewEntityResponse(entity *partner.Entity) EntityResponse {
	return EntityResponse{
		ID:        entity.ID,
		Name:      entity.Name,
		Phone:     entity.Phone,
		Address:   entity.Address,
		IsDefault: entity.IsDefault,
		CreatedAt: entity.CreatedAt,
	}
}

// Create registers a new counterparty
func (s *EntityService) Create(ctx context.Context, orgID uuid.UUID, req CreateEntityRequest) (*EntityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "entity", "create")
	defer span.End()

	entity, err := partner.NewEntity(orgID, req.Name)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	entity.SetContact(req.Phone, req.Address)

	if err := s.entityRepo.Save(ctx, entity); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := NewEntityResponse(entity)
	return &response, nil
}

// Get returns one counterparty
func (s *EntityService) Get(ctx context.Context, orgID, entityID uuid.UUID) (*EntityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "entity", "get")
	defer span.End()

	entity, err := s.entityRepo.FindByIDForOrg(ctx, orgID, entityID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if entity == nil {
		return nil, shared.ErrNotFound
	}

	response := NewEntityResponse(entity)
	return &response, nil
}

// List returns the org's counterparties
func (s *EntityService) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]EntityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "entity", "list")
	defer span.End()

	entities, err := s.entityRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	responses := make([]EntityResponse, 0, len(entities))
	for i := range entities {
		responses = append(responses, NewEntityResponse(&entities[i]))
	}
	return responses, nil
}

// EnsureDefault returns the org's walk-in entity, creating it on first use
func (s *EntityService) EnsureDefault(ctx context.Context, orgID uuid.UUID) (*EntityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "entity", "ensure_default")
	defer span.End()

	entity, err := s.entityRepo.FindDefaultForOrg(ctx, orgID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if entity == nil {
		entity = partner.NewDefaultEntity(orgID)
		if err := s.entityRepo.Save(ctx, entity); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	response := NewEntityResponse(entity)
	return &response, nil
}

package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/catalog"
	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/infrastructure/telemetry"
)

// ProductService manages the organization's product catalog
type ProductService struct {
	productRepo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// VariantInput is one variant of a new product
type VariantInput struct {
	Name  string `json:"name" binding:"required"`
	Rate  string `json:"rate" binding:"required,decimal"`
	Stock int    `json:"stock"`
}

// CreateProductRequest registers a new product with its variants
type CreateProductRequest struct {
	Name     string         `json:"name" binding:"required"`
	Unit     string         `json:"unit"`
	Variants []VariantInput `json:"variants" binding:"required,min=1,dive"`
}

// VariantResponse is one serialized variant
type VariantResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Rate  string    `json:"rate"`
	Stock int       `json:"stock"`
}

// ProductResponse is one serialized product
type ProductResponse struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Unit      string            `json:"unit,omitempty"`
	Variants  []VariantResponse `json:"variants"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewProductResponse serializes a product
func NewProductResponse(product *catalog.Product) ProductResponse {
	variants := make([]VariantResponse, 0, len(product.Variants))
	for _, variant := range product.Variants {
		variants = append(variants, VariantResponse{
			ID:    variant.ID,
			Name:  variant.Name,
			Rate:  variant.Rate.StringFixed(2),
			Stock: variant.Stock,
		})
	}

	return ProductResponse{
		ID:        product.ID,
		Name:      product.Name,
		Unit:      product.Unit,
		Variants:  variants,
		CreatedAt: product.CreatedAt,
	}
}

// Create registers a new product with its variants
func (s *ProductService) Create(ctx context.Context, orgID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "create")
	defer span.End()

	product, err := catalog.NewProduct(orgID, req.Name, req.Unit)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	for _, input := range req.Variants {
		rate, err := decimal.NewFromString(input.Rate)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_RATE", "Variant rate is not a valid number")
		}
		if _, err := product.AddVariant(input.Name, rate, input.Stock); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := NewProductResponse(product)
	return &response, nil
}

// Get returns one product with its variants
func (s *ProductService) Get(ctx context.Context, orgID, productID uuid.UUID) (*ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "get")
	defer span.End()

	product, err := s.productRepo.FindByIDForOrg(ctx, orgID, productID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if product == nil {
		return nil, shared.ErrNotFound
	}

	response := NewProductResponse(product)
	return &response, nil
}

// List returns the org's products
func (s *ProductService) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]ProductResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "list")
	defer span.End()

	products, err := s.productRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, NewProductResponse(&products[i]))
	}
	return responses, nil
}

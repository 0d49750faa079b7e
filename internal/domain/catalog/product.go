package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/shared"
)

// Variant is a sellable variation of a product (size, colour, grade).
// Stock is tracked per variant.
type Variant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string
	Rate      decimal.Decimal
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the database table name
func (Variant) TableName() string {
	return "product_variants"
}

// Product represents a catalog product with its variants
type Product struct {
	shared.OrgAggregateRoot
	Name     string
	Unit     string
	Variants []Variant `gorm:"foreignKey:ProductID"`
}

// NewProduct creates a new product
func NewProduct(orgID uuid.UUID, name, unit string) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}

	return &Product{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Unit:             unit,
		Variants:         make([]Variant, 0),
	}, nil
}

// AddVariant adds a variant to the product
func (p *Product) AddVariant(name string, rate decimal.Decimal, stock int) (*Variant, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Variant name cannot be empty")
	}
	if rate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Variant rate cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Variant stock cannot be negative")
	}

	now := time.Now()
	variant := Variant{
		ID:        uuid.New(),
		ProductID: p.ID,
		Name:      name,
		Rate:      rate,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Variants = append(p.Variants, variant)
	p.UpdatedAt = now

	return &p.Variants[len(p.Variants)-1], nil
}

// VariantByID returns the variant with the given ID, or nil
func (p *Product) VariantByID(variantID uuid.UUID) *Variant {
	for idx := range p.Variants {
		if p.Variants[idx].ID == variantID {
			return &p.Variants[idx]
		}
	}
	return nil
}

// CheckStock verifies the variant can satisfy the requested quantity
func (p *Product) CheckStock(variantID uuid.UUID, quantity int) error {
	variant := p.VariantByID(variantID)
	if variant == nil {
		return shared.NewDomainError("VARIANT_NOT_FOUND", "Product variant not found")
	}
	if quantity > variant.Stock {
		return shared.NewDomainError(
			"INSUFFICIENT_STOCK",
			fmt.Sprintf("Only %d of %s (%s) in stock, %d requested", variant.Stock, p.Name, variant.Name, quantity),
		)
	}
	return nil
}

// AdjustStock changes a variant's stock by delta (negative for sales)
func (p *Product) AdjustStock(variantID uuid.UUID, delta int) error {
	variant := p.VariantByID(variantID)
	if variant == nil {
		return shared.NewDomainError("VARIANT_NOT_FOUND", "Product variant not found")
	}
	if variant.Stock+delta < 0 {
		return shared.ErrInsufficientStock
	}

	variant.Stock += delta
	variant.UpdatedAt = time.Now()
	p.UpdatedAt = variant.UpdatedAt
	return nil
}

// TableName returns the database table name
func (Product) TableName() string {
	return "products"
}

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Product, error)
	FindByIDsForOrg(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

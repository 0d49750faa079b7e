package ordering

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one product row of an order draft. Rows are created empty
// in the console and filled in as the user picks a product and variant,
// so a draft routinely holds incomplete rows; only complete rows take
// part in pricing and submission.
type LineItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	VariantID   uuid.UUID       `json:"variant_id"`
	Rate        decimal.Decimal `json:"rate"`
	Quantity    int             `json:"quantity"`
	Description string          `json:"description"`
}

// IsComplete reports whether both product and variant are selected
func (i LineItem) IsComplete() bool {
	return i.ProductID != uuid.Nil && i.VariantID != uuid.Nil
}

// Amount returns rate × quantity. Incomplete rows and non-positive
// quantities contribute zero.
func (i LineItem) Amount() decimal.Decimal {
	if !i.IsComplete() || i.Quantity < 1 {
		return decimal.Zero
	}
	return i.Rate.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CompleteItems filters a slice down to rows with product and variant set
func CompleteItems(items []LineItem) []LineItem {
	complete := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.IsComplete() {
			complete = append(complete, item)
		}
	}
	return complete
}

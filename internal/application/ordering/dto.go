package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/ordering"
)

// ItemInput is one line item row as edited in the console
type ItemInput struct {
	ProductID   uuid.UUID `json:"product_id"`
	VariantID   uuid.UUID `json:"variant_id"`
	Rate        string    `json:"rate" binding:"required,decimal"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description"`
}

// ChequeInput carries cheque metadata for cheque-account payments
type ChequeInput struct {
	Issuer string    `json:"issuer" binding:"required"`
	Bank   string    `json:"bank" binding:"required"`
	Number string    `json:"number" binding:"required"`
	Date   time.Time `json:"date"`
}

// PaymentInput is one payment row as edited in the console
type PaymentInput struct {
	AccountID uuid.UUID    `json:"account_id" binding:"required"`
	Amount    string       `json:"amount" binding:"required,decimal"`
	Cheque    *ChequeInput `json:"cheque,omitempty"`
}

// ChargeUpdateInput is a partial edit of one charge row
type ChargeUpdateInput struct {
	Label          *string `json:"label,omitempty"`
	Type           *string `json:"type,omitempty"`
	Amount         *string `json:"amount,omitempty"`
	Percentage     *string `json:"percentage,omitempty"`
	BearedByEntity *bool   `json:"beared_by_entity,omitempty"`
}

// PreviewRequest prices a hypothetical order without touching any draft
type PreviewRequest struct {
	Items    []ItemInput     `json:"items" binding:"required,dive"`
	Discount string          `json:"discount" binding:"omitempty,decimal"`
	Charges  []PreviewCharge `json:"charges"`
}

// PreviewCharge is one charge row of a preview request
type PreviewCharge struct {
	Label          string `json:"label"`
	Type           string `json:"type" binding:"required,oneof=fixed percentage"`
	Amount         string `json:"amount" binding:"omitempty,decimal"`
	Percentage     string `json:"percentage" binding:"omitempty,decimal"`
	BearedByEntity bool   `json:"beared_by_entity"`
}

// BreakdownResponse is the serialized pricing of a draft or preview
type BreakdownResponse struct {
	SubTotal          string `json:"sub_total"`
	Discount          string `json:"discount"`
	TaxableBase       string `json:"taxable_base"`
	EntityChargeTotal string `json:"entity_charge_total"`
	VendorChargeTotal string `json:"vendor_charge_total"`
	GrandTotal        string `json:"grand_total"`
	TotalPaid         string `json:"total_paid"`
	Remaining         string `json:"remaining"`
}

// NewBreakdownResponse serializes a price breakdown
func NewBreakdownResponse(b ordering.PriceBreakdown) BreakdownResponse {
	return BreakdownResponse{
		SubTotal:          b.SubTotal.StringFixed(2),
		Discount:          b.Discount.StringFixed(2),
		TaxableBase:       b.TaxableBase.StringFixed(2),
		EntityChargeTotal: b.EntityChargeTotal.StringFixed(2),
		VendorChargeTotal: b.VendorChargeTotal.StringFixed(2),
		GrandTotal:        b.GrandTotal.StringFixed(2),
		TotalPaid:         b.TotalPaid.StringFixed(2),
		Remaining:         b.Remaining.StringFixed(2),
	}
}

// ChargeResponse is one serialized charge row
type ChargeResponse struct {
	ID             uuid.UUID `json:"id"`
	Label          string    `json:"label"`
	Type           string    `json:"type"`
	Amount         string    `json:"amount"`
	Percentage     string    `json:"percentage"`
	IsVat          bool      `json:"is_vat"`
	BearedByEntity bool      `json:"beared_by_entity"`
}

// PaymentResponse is one serialized payment row
type PaymentResponse struct {
	ID        uuid.UUID               `json:"id"`
	AccountID uuid.UUID               `json:"account_id"`
	Amount    string                  `json:"amount"`
	Cheque    *ordering.ChequeDetails `json:"cheque,omitempty"`
}

// ItemResponse is one serialized line item row
type ItemResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	VariantID   uuid.UUID `json:"variant_id"`
	Rate        string    `json:"rate"`
	Quantity    int       `json:"quantity"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
}

// DraftResponse is the full serialized state of a draft
type DraftResponse struct {
	ID        uuid.UUID         `json:"id"`
	Type      string            `json:"type"`
	Step      string            `json:"step"`
	EntityID  *uuid.UUID        `json:"entity_id,omitempty"`
	Items     []ItemResponse    `json:"items"`
	Discount  string            `json:"discount"`
	Charges   []ChargeResponse  `json:"charges"`
	Payments  []PaymentResponse `json:"payments"`
	Breakdown BreakdownResponse `json:"breakdown"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewDraftResponse serializes a draft with its current pricing
func NewDraftResponse(draft *ordering.OrderDraft) DraftResponse {
	items := make([]ItemResponse, 0, len(draft.Items))
	for _, item := range draft.Items {
		items = append(items, ItemResponse{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			Rate:        item.Rate.StringFixed(2),
			Quantity:    item.Quantity,
			Amount:      item.Amount().StringFixed(2),
			Description: item.Description,
		})
	}

	charges := make([]ChargeResponse, 0, len(draft.Charges.Charges))
	for _, charge := range draft.Charges.Charges {
		charges = append(charges, ChargeResponse{
			ID:             charge.ID,
			Label:          charge.Label,
			Type:           string(charge.Type),
			Amount:         charge.Amount.StringFixed(2),
			Percentage:     charge.Percentage.StringFixed(2),
			IsVat:          charge.IsVat,
			BearedByEntity: charge.BearedByEntity,
		})
	}

	payments := make([]PaymentResponse, 0, len(draft.Payments))
	for _, payment := range draft.Payments {
		payments = append(payments, PaymentResponse{
			ID:        payment.ID,
			AccountID: payment.AccountID,
			Amount:    payment.Amount.StringFixed(2),
			Cheque:    payment.Cheque,
		})
	}

	return DraftResponse{
		ID:        draft.ID,
		Type:      draft.Type.String(),
		Step:      string(draft.Step),
		EntityID:  draft.EntityID,
		Items:     items,
		Discount:  draft.Discount.StringFixed(2),
		Charges:   charges,
		Payments:  payments,
		Breakdown: NewBreakdownResponse(draft.Breakdown()),
		UpdatedAt: draft.UpdatedAt,
	}
}

// OrderResponse is one serialized persisted order
type OrderResponse struct {
	ID                uuid.UUID      `json:"id"`
	OrderNumber       string         `json:"order_number"`
	Type              string         `json:"type"`
	EntityID          uuid.UUID      `json:"entity_id"`
	SubTotal          string         `json:"sub_total"`
	Discount          string         `json:"discount"`
	EntityChargeTotal string         `json:"entity_charge_total"`
	VendorChargeTotal string         `json:"vendor_charge_total"`
	GrandTotal        string         `json:"grand_total"`
	PaidAmount        string         `json:"paid_amount"`
	RemainingAmount   string         `json:"remaining_amount"`
	PaymentStatus     string         `json:"payment_status"`
	IssuedAt          time.Time      `json:"issued_at"`
	Items             []ItemResponse `json:"items,omitempty"`
}

// NewOrderResponse serializes a persisted order
func NewOrderResponse(order *ordering.Order) OrderResponse {
	items := make([]ItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemResponse{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			Rate:        item.Rate.StringFixed(2),
			Quantity:    item.Quantity,
			Amount:      item.Amount.StringFixed(2),
			Description: item.Description,
		})
	}

	return OrderResponse{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		Type:              order.Type.String(),
		EntityID:          order.EntityID,
		SubTotal:          order.SubTotal.StringFixed(2),
		Discount:          order.Discount.StringFixed(2),
		EntityChargeTotal: order.EntityChargeTotal.StringFixed(2),
		VendorChargeTotal: order.VendorChargeTotal.StringFixed(2),
		GrandTotal:        order.GrandTotal.StringFixed(2),
		PaidAmount:        order.PaidAmount.StringFixed(2),
		RemainingAmount:   order.RemainingAmount().StringFixed(2),
		PaymentStatus:     string(order.PaymentStatus()),
		IssuedAt:          order.IssuedAt,
		Items:             items,
	}
}

// parseDecimal parses a decimal field, treating empty as zero
func parseDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

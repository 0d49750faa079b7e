package ordering

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/shared"
)

// PaymentStatus is derived from the paid amount against the grand total
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// OrderItem is one persisted product row of an order
type OrderItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null"`
	VariantID   uuid.UUID `gorm:"type:uuid;not null"`
	Rate        decimal.Decimal
	Quantity    int
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// TableName returns the database table name
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderCharge is one persisted charge row of an order. The amount is
// frozen at submission; the percentage is kept for display.
type OrderCharge struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Label          string
	Type           ChargeType
	Amount         decimal.Decimal
	Percentage     decimal.Decimal
	IsVat          bool
	BearedByEntity bool
	CreatedAt      time.Time
}

// TableName returns the database table name
func (OrderCharge) TableName() string {
	return "order_charges"
}

// Order is a submitted, persisted order. Pricing figures are frozen at
// submission; only PaidAmount moves afterwards, as sweep payments are
// applied against the outstanding balance.
type Order struct {
	shared.OrgAggregateRoot
	OrderNumber       string    `gorm:"not null;uniqueIndex"`
	Type              OrderType `gorm:"not null;index"`
	EntityID          uuid.UUID `gorm:"type:uuid;not null;index"`
	SubTotal          decimal.Decimal
	Discount          decimal.Decimal
	EntityChargeTotal decimal.Decimal
	VendorChargeTotal decimal.Decimal
	GrandTotal        decimal.Decimal
	PaidAmount        decimal.Decimal
	IssuedAt          time.Time     `gorm:"not null;index"`
	Items             []OrderItem   `gorm:"foreignKey:OrderID"`
	Charges           []OrderCharge `gorm:"foreignKey:OrderID"`
}

// NewOrderFromSubmission freezes a finalized draft into a persistable order
func NewOrderFromSubmission(orderNumber string, submission *Submission) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(submission.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order needs at least one item")
	}

	draft := submission.Draft
	now := time.Now()

	order := &Order{
		OrgAggregateRoot:  shared.NewOrgAggregateRoot(draft.OrgID),
		OrderNumber:       orderNumber,
		Type:              draft.Type,
		EntityID:          submission.EntityID,
		SubTotal:          submission.Breakdown.SubTotal,
		Discount:          submission.Breakdown.Discount,
		EntityChargeTotal: submission.Breakdown.EntityChargeTotal,
		VendorChargeTotal: submission.Breakdown.VendorChargeTotal,
		GrandTotal:        submission.Breakdown.GrandTotal,
		PaidAmount:        submission.Breakdown.TotalPaid,
		IssuedAt:          now,
	}
	order.SetCreatedBy(draft.UserID)

	for _, item := range submission.Items {
		order.Items = append(order.Items, OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			Rate:        item.Rate,
			Quantity:    item.Quantity,
			Amount:      item.Amount(),
			Description: item.Description,
			CreatedAt:   now,
		})
	}

	for _, charge := range submission.Charges {
		order.Charges = append(order.Charges, OrderCharge{
			ID:             uuid.New(),
			OrderID:        order.ID,
			Label:          charge.Label,
			Type:           charge.Type,
			Amount:         charge.Amount,
			Percentage:     charge.Percentage,
			IsVat:          charge.IsVat,
			BearedByEntity: charge.BearedByEntity,
			CreatedAt:      now,
		})
	}

	return order, nil
}

// RemainingAmount is the unpaid balance, floored at zero
func (o *Order) RemainingAmount() decimal.Decimal {
	remaining := o.GrandTotal.Sub(o.PaidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsSettled reports whether nothing remains unpaid
func (o *Order) IsSettled() bool {
	return o.RemainingAmount().IsZero()
}

// PaymentStatus derives the order's payment state
func (o *Order) PaymentStatus() PaymentStatus {
	switch {
	case o.IsSettled():
		return PaymentStatusPaid
	case o.PaidAmount.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusUnpaid
	}
}

// ApplyPayment records an additional payment against the order. The
// amount must fit within the remaining balance.
func (o *Order) ApplyPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	remaining := o.RemainingAmount()
	if amount.GreaterThan(remaining) {
		return shared.NewDomainError(
			"OVERPAYMENT",
			fmt.Sprintf("Payment %s exceeds remaining balance %s on order %s",
				amount.StringFixed(2), remaining.StringFixed(2), o.OrderNumber),
		)
	}

	o.PaidAmount = o.PaidAmount.Add(amount)
	o.UpdatedAt = time.Now()
	return nil
}

// TableName returns the database table name
func (Order) TableName() string {
	return "orders"
}

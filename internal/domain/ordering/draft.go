package ordering

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/org"
	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/domain/treasury"
)

// OrderType distinguishes purchases from sales
type OrderType string

const (
	OrderTypeBuy  OrderType = "BUY"
	OrderTypeSell OrderType = "SELL"
)

// IsValid checks if the type is a known OrderType
func (t OrderType) IsValid() bool {
	return t == OrderTypeBuy || t == OrderTypeSell
}

// String returns the string representation of OrderType
func (t OrderType) String() string {
	return string(t)
}

// OrderDraft is the in-progress order a user builds in the console
// before submitting. Each user keeps at most one draft per order type,
// so a purchase in progress never clobbers a sale in progress. Drafts
// live in memory only; nothing touches accounts or stock until the
// draft is submitted.
type OrderDraft struct {
	ID        uuid.UUID  `json:"id"`
	OrgID     uuid.UUID  `json:"org_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Type      OrderType  `json:"type"`
	EntityID  *uuid.UUID `json:"entity_id,omitempty"`
	Items     []LineItem `json:"items"`
	Discount  decimal.Decimal
	Charges   ChargeList `json:"charges"`
	Payments  []Payment  `json:"payments"`
	VatStatus org.VatStatus
	Step      WizardStep `json:"step"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewOrderDraft starts an empty draft for a user. The organization's
// VAT setting is captured at creation and drives the VAT charge policy
// for the draft's lifetime.
func NewOrderDraft(orgID, userID uuid.UUID, orderType OrderType, vatStatus org.VatStatus) (*OrderDraft, error) {
	if !orderType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORDER_TYPE", "Order type must be BUY or SELL")
	}
	if !vatStatus.IsValid() {
		return nil, shared.NewDomainError("INVALID_VAT_STATUS", "VAT status must be always, never or conditional")
	}

	now := time.Now()
	draft := &OrderDraft{
		ID:        uuid.New(),
		OrgID:     orgID,
		UserID:    userID,
		Type:      orderType,
		Items:     make([]LineItem, 0),
		Discount:  decimal.Zero,
		Charges:   NewChargeList(),
		Payments:  make([]Payment, 0),
		VatStatus: vatStatus,
		Step:      StepDetails,
		CreatedAt: now,
		UpdatedAt: now,
	}
	draft.Charges.EnsureVatPolicy(vatStatus, decimal.Zero)
	return draft, nil
}

// taxableBase is the discounted subtotal charges are computed on
func (d *OrderDraft) taxableBase() decimal.Decimal {
	return TaxableBase(SubTotal(d.Items), d.Discount)
}

// recalculate refreshes derived charge fields after items or discount moved
func (d *OrderDraft) recalculate() {
	d.Charges.RecalculateOnBaseChange(d.taxableBase())
	d.UpdatedAt = time.Now()
}

// SetEntity assigns the counterparty. Passing uuid.Nil clears it, which
// for SELL orders means a walk-in cash customer.
func (d *OrderDraft) SetEntity(entityID uuid.UUID) {
	if entityID == uuid.Nil {
		d.EntityID = nil
	} else {
		d.EntityID = &entityID
	}
	d.UpdatedAt = time.Now()
}

// SetItems replaces the line items and recomputes charge mirrors
func (d *OrderDraft) SetItems(items []LineItem) error {
	for _, item := range items {
		if item.Quantity < 0 {
			return shared.NewDomainError("INVALID_QUANTITY", "Item quantity cannot be negative")
		}
		if item.Rate.IsNegative() {
			return shared.NewDomainError("INVALID_RATE", "Item rate cannot be negative")
		}
	}

	d.Items = items
	d.recalculate()
	return nil
}

// SetDiscount applies an order-level discount. The discount cannot
// exceed the subtotal.
func (d *OrderDraft) SetDiscount(discount decimal.Decimal) error {
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if discount.GreaterThan(SubTotal(d.Items)) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the subtotal")
	}

	d.Discount = discount
	d.recalculate()
	return nil
}

// AddCharge appends a blank fixed charge for the user to fill in
func (d *OrderDraft) AddCharge() *Charge {
	charge := d.Charges.Add()
	d.UpdatedAt = time.Now()
	return charge
}

// AddVatCharge inserts a VAT charge on user request, subject to the
// organization's VAT setting
func (d *OrderDraft) AddVatCharge() (*Charge, error) {
	charge, err := d.Charges.AddVat(d.VatStatus, d.taxableBase())
	if err != nil {
		return nil, err
	}
	d.UpdatedAt = time.Now()
	return charge, nil
}

// RemoveCharge deletes a charge, honoring the VAT removal restriction
func (d *OrderDraft) RemoveCharge(chargeID uuid.UUID) error {
	if err := d.Charges.Remove(chargeID, d.VatStatus); err != nil {
		return err
	}
	d.UpdatedAt = time.Now()
	return nil
}

// UpdateCharge applies a user edit to one charge field
func (d *OrderDraft) UpdateCharge(chargeID uuid.UUID, apply func(*ChargeList, uuid.UUID, decimal.Decimal) error) error {
	if err := apply(&d.Charges, chargeID, d.taxableBase()); err != nil {
		return err
	}
	d.UpdatedAt = time.Now()
	return nil
}

// AddPayment records a payment row against an account. For BUY orders
// money leaves the account, so the payment must fit within the balance
// net of payments this draft already holds against the same account.
// The total across all payments must not exceed the grand total.
func (d *OrderDraft) AddPayment(account *treasury.Account, amount decimal.Decimal, cheque *ChequeDetails) (*Payment, error) {
	payment, err := NewPayment(account, amount, cheque)
	if err != nil {
		return nil, err
	}
	if account.OrgID != d.OrgID {
		return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Payment account not found")
	}

	breakdown := d.Breakdown()
	newTotal := breakdown.TotalPaid.Add(amount)
	if newTotal.GreaterThan(breakdown.GrandTotal) {
		return nil, shared.NewDomainError(
			"OVERPAYMENT",
			fmt.Sprintf("Payments total %s exceeds order total %s",
				newTotal.StringFixed(2), breakdown.GrandTotal.StringFixed(2)),
		)
	}

	if d.Type == OrderTypeBuy {
		alreadyDrawn := PaidToAccount(d.Payments, account.ID)
		if !account.CanCover(alreadyDrawn.Add(amount)) {
			available := account.Balance.Sub(alreadyDrawn)
			if available.IsNegative() {
				available = decimal.Zero
			}
			return nil, shared.NewDomainError(
				"INSUFFICIENT_BALANCE",
				fmt.Sprintf("Insufficient balance in %s: available %s, required %s",
					account.Name, available.StringFixed(2), amount.StringFixed(2)),
			)
		}
	}

	d.Payments = append(d.Payments, payment)
	d.UpdatedAt = time.Now()
	return &d.Payments[len(d.Payments)-1], nil
}

// RemovePayment deletes a payment row
func (d *OrderDraft) RemovePayment(paymentID uuid.UUID) error {
	for idx := range d.Payments {
		if d.Payments[idx].ID != paymentID {
			continue
		}
		d.Payments = append(d.Payments[:idx], d.Payments[idx+1:]...)
		d.UpdatedAt = time.Now()
		return nil
	}
	return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
}

// ClearPayments drops all payment rows, used when going back to edit
// items invalidates the payment plan
func (d *OrderDraft) ClearPayments() {
	d.Payments = d.Payments[:0]
	d.UpdatedAt = time.Now()
}

// Breakdown computes the current pricing of the draft
func (d *OrderDraft) Breakdown() PriceBreakdown {
	return CalculatePrice(d.Items, d.Discount, d.Charges.Charges, d.Payments)
}

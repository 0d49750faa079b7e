package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/org"
	"github.com/karobar/backend/internal/domain/shared"
)

// ChargeType distinguishes flat-amount charges from percentage charges
type ChargeType string

const (
	ChargeTypeFixed      ChargeType = "fixed"
	ChargeTypePercentage ChargeType = "percentage"
)

// IsValid checks if the type is a known ChargeType
func (t ChargeType) IsValid() bool {
	return t == ChargeTypeFixed || t == ChargeTypePercentage
}

var oneHundred = decimal.NewFromInt(100)

// Charge is an extra amount applied on top of the subtotal, such as VAT
// or a delivery fee. Amount and Percentage mirror each other against the
// taxable base: for percentage charges Amount is derived, for fixed
// charges Percentage is a display-only derivation.
type Charge struct {
	ID             uuid.UUID       `json:"id"`
	Label          string          `json:"label"`
	Type           ChargeType      `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Percentage     decimal.Decimal `json:"percentage"`
	IsVat          bool            `json:"is_vat"`
	BearedByEntity bool            `json:"beared_by_entity"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AmountOn returns the charge's amount computed against the given base.
// Percentage charges are recomputed; fixed charges return their amount
// regardless of base.
func (c Charge) AmountOn(base decimal.Decimal) decimal.Decimal {
	if c.Type == ChargeTypePercentage {
		return base.Mul(c.Percentage).Div(oneHundred)
	}
	return c.Amount
}

// newVatCharge builds the auto-inserted VAT charge at the statutory rate
func newVatCharge(base decimal.Decimal) Charge {
	return Charge{
		ID:             uuid.New(),
		Label:          "VAT",
		Type:           ChargeTypePercentage,
		Percentage:     org.StandardVatRate,
		Amount:         base.Mul(org.StandardVatRate).Div(oneHundred),
		IsVat:          true,
		BearedByEntity: true,
		CreatedAt:      time.Now(),
	}
}

// ChargeList owns the mutable set of charges on a draft and keeps the
// amount/percentage mirrors consistent as the taxable base moves.
// All mutation goes through explicit commands; there is no reactive
// dependency graph to cycle.
type ChargeList struct {
	Charges []Charge `json:"charges"`
}

// NewChargeList creates an empty charge list
func NewChargeList() ChargeList {
	return ChargeList{Charges: make([]Charge, 0)}
}

// Get returns the charge with the given ID, or nil
func (l *ChargeList) Get(id uuid.UUID) *Charge {
	for idx := range l.Charges {
		if l.Charges[idx].ID == id {
			return &l.Charges[idx]
		}
	}
	return nil
}

// VatCharge returns the VAT charge if one exists, or nil
func (l *ChargeList) VatCharge() *Charge {
	for idx := range l.Charges {
		if l.Charges[idx].IsVat {
			return &l.Charges[idx]
		}
	}
	return nil
}

// Add appends a zero-value fixed charge for the user to edit and
// returns it
func (l *ChargeList) Add() *Charge {
	charge := Charge{
		ID:             uuid.New(),
		Type:           ChargeTypeFixed,
		Amount:         decimal.Zero,
		Percentage:     decimal.Zero,
		BearedByEntity: true,
		CreatedAt:      time.Now(),
	}
	l.Charges = append(l.Charges, charge)
	return &l.Charges[len(l.Charges)-1]
}

// Remove deletes the charge with the given ID. The VAT charge cannot be
// removed while the organization's VAT status is "always".
func (l *ChargeList) Remove(id uuid.UUID, vatStatus org.VatStatus) error {
	for idx := range l.Charges {
		if l.Charges[idx].ID != id {
			continue
		}
		if l.Charges[idx].IsVat && vatStatus == org.VatStatusAlways {
			return shared.NewDomainError("VAT_REQUIRED", "VAT cannot be removed for this organization")
		}
		l.Charges = append(l.Charges[:idx], l.Charges[idx+1:]...)
		return nil
	}
	return shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
}

// RecalculateOnBaseChange syncs every charge's derived field against a
// new taxable base: percentage charges get a fresh amount, fixed charges
// a fresh display percentage. Returns true when any field actually
// changed so callers embedded in reactive UIs can skip no-op updates.
func (l *ChargeList) RecalculateOnBaseChange(base decimal.Decimal) bool {
	changed := false
	for idx := range l.Charges {
		charge := &l.Charges[idx]
		switch charge.Type {
		case ChargeTypePercentage:
			amount := base.Mul(charge.Percentage).Div(oneHundred)
			if !amount.Equal(charge.Amount) {
				charge.Amount = amount
				changed = true
			}
		case ChargeTypeFixed:
			percentage := decimal.Zero
			if !base.IsZero() {
				percentage = charge.Amount.Div(base).Mul(oneHundred)
			}
			if !percentage.Equal(charge.Percentage) {
				charge.Percentage = percentage
				changed = true
			}
		}
	}
	return changed
}

// EnsureVatPolicy enforces the organization's VAT setting against the
// current list. Under "always" a missing VAT charge is inserted at the
// statutory rate. Under "never" nothing is inserted and AddVat refuses;
// a VAT charge that predates the setting change is left in place for
// the user to remove.
func (l *ChargeList) EnsureVatPolicy(vatStatus org.VatStatus, base decimal.Decimal) {
	if vatStatus == org.VatStatusAlways && l.VatCharge() == nil {
		l.Charges = append(l.Charges, newVatCharge(base))
	}
}

// AddVat inserts a VAT charge on user request
func (l *ChargeList) AddVat(vatStatus org.VatStatus, base decimal.Decimal) (*Charge, error) {
	if vatStatus == org.VatStatusNever {
		return nil, shared.NewDomainError("VAT_FORBIDDEN", "VAT is disabled for this organization")
	}
	if l.VatCharge() != nil {
		return nil, shared.NewDomainError("VAT_EXISTS", "Order already has a VAT charge")
	}

	l.Charges = append(l.Charges, newVatCharge(base))
	return &l.Charges[len(l.Charges)-1], nil
}

// SetType switches a charge between fixed and percentage. Both
// directions keep the current amount and only move the derived
// percentage mirror, so a round trip returns the exact amount; the
// amount drifts later only when the base itself moves.
func (l *ChargeList) SetType(id uuid.UUID, newType ChargeType, base decimal.Decimal) error {
	if !newType.IsValid() {
		return shared.NewDomainError("INVALID_CHARGE_TYPE", "Charge type must be fixed or percentage")
	}

	charge := l.Get(id)
	if charge == nil {
		return shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
	}
	if charge.Type == newType {
		return nil
	}

	switch newType {
	case ChargeTypePercentage:
		if base.IsZero() {
			charge.Percentage = decimal.Zero
			charge.Amount = decimal.Zero
		} else {
			charge.Percentage = charge.Amount.Div(base).Mul(oneHundred)
		}
	case ChargeTypeFixed:
		if base.IsZero() {
			charge.Percentage = decimal.Zero
		} else {
			charge.Percentage = charge.Amount.Div(base).Mul(oneHundred)
		}
	}
	charge.Type = newType
	return nil
}

// SetAmount applies a user edit to a charge's amount and refreshes the
// percentage mirror. Editing the amount of a percentage charge turns it
// into the authoritative field, so percentage follows.
func (l *ChargeList) SetAmount(id uuid.UUID, amount decimal.Decimal, base decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Charge amount cannot be negative")
	}

	charge := l.Get(id)
	if charge == nil {
		return shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
	}

	charge.Amount = amount
	if base.IsZero() {
		charge.Percentage = decimal.Zero
	} else {
		charge.Percentage = amount.Div(base).Mul(oneHundred)
	}
	return nil
}

// SetPercentage applies a user edit to a charge's percentage and
// refreshes the amount mirror
func (l *ChargeList) SetPercentage(id uuid.UUID, percentage decimal.Decimal, base decimal.Decimal) error {
	if percentage.IsNegative() || percentage.GreaterThan(oneHundred) {
		return shared.NewDomainError("INVALID_PERCENTAGE", "Charge percentage must be between 0 and 100")
	}

	charge := l.Get(id)
	if charge == nil {
		return shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
	}

	charge.Percentage = percentage
	charge.Amount = base.Mul(percentage).Div(oneHundred)
	return nil
}

// SetLabel renames a charge
func (l *ChargeList) SetLabel(id uuid.UUID, label string) error {
	charge := l.Get(id)
	if charge == nil {
		return shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
	}
	charge.Label = label
	return nil
}

// SetBearer flips who settles the charge. VAT is always passed on to
// the entity.
func (l *ChargeList) SetBearer(id uuid.UUID, bearedByEntity bool) error {
	charge := l.Get(id)
	if charge == nil {
		return shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
	}
	if charge.IsVat && !bearedByEntity {
		return shared.NewDomainError("INVALID_BEARER", "VAT must be borne by the entity")
	}
	charge.BearedByEntity = bearedByEntity
	return nil
}

package ordering

import (
	"github.com/shopspring/decimal"
)

// PriceBreakdown is the full derived pricing of a draft or order at one
// point in time. All figures follow from the items, discount, charges
// and payments; nothing here is stored independently.
type PriceBreakdown struct {
	SubTotal          decimal.Decimal `json:"sub_total"`
	Discount          decimal.Decimal `json:"discount"`
	TaxableBase       decimal.Decimal `json:"taxable_base"`
	EntityChargeTotal decimal.Decimal `json:"entity_charge_total"`
	VendorChargeTotal decimal.Decimal `json:"vendor_charge_total"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	Remaining         decimal.Decimal `json:"remaining"`
}

// SubTotal sums the amounts of all complete line items
func SubTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount())
	}
	return total
}

// TaxableBase is the subtotal net of discount, floored at zero. Charges
// borne by the entity are computed on this base.
func TaxableBase(subTotal, discount decimal.Decimal) decimal.Decimal {
	base := subTotal.Sub(discount)
	if base.IsNegative() {
		return decimal.Zero
	}
	return base
}

// EntityChargeTotal sums charges the counterparty settles as part of the
// order total. Percentage charges apply to the discounted base.
func EntityChargeTotal(charges []Charge, taxableBase decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, charge := range charges {
		if !charge.BearedByEntity {
			continue
		}
		total = total.Add(charge.AmountOn(taxableBase))
	}
	return total
}

// VendorChargeTotal sums charges the business settles itself, outside
// the order total. Percentage charges apply to the raw subtotal, not the
// discounted base; the discount is an arrangement between the parties
// and does not shrink what the business owes third parties.
func VendorChargeTotal(charges []Charge, subTotal decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, charge := range charges {
		if charge.BearedByEntity {
			continue
		}
		total = total.Add(charge.AmountOn(subTotal))
	}
	return total
}

// TotalPaid sums the payments recorded against the order
func TotalPaid(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, payment := range payments {
		total = total.Add(payment.Amount)
	}
	return total
}

// CalculatePrice derives the complete breakdown from the draft inputs.
// GrandTotal and Remaining are floored at zero so an oversized discount
// or payment never produces a negative balance.
func CalculatePrice(items []LineItem, discount decimal.Decimal, charges []Charge, payments []Payment) PriceBreakdown {
	subTotal := SubTotal(items)
	taxableBase := TaxableBase(subTotal, discount)
	entityCharges := EntityChargeTotal(charges, taxableBase)
	vendorCharges := VendorChargeTotal(charges, subTotal)

	grandTotal := taxableBase.Add(entityCharges)
	if grandTotal.IsNegative() {
		grandTotal = decimal.Zero
	}

	totalPaid := TotalPaid(payments)
	remaining := grandTotal.Sub(totalPaid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return PriceBreakdown{
		SubTotal:          subTotal,
		Discount:          discount,
		TaxableBase:       taxableBase,
		EntityChargeTotal: entityCharges,
		VendorChargeTotal: vendorCharges,
		GrandTotal:        grandTotal,
		TotalPaid:         totalPaid,
		Remaining:         remaining,
	}
}

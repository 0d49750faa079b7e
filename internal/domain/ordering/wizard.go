package ordering

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/domain/treasury"
)

// WizardStep is one screen of the order console
type WizardStep string

const (
	StepDetails WizardStep = "DETAILS"
	StepPayment WizardStep = "PAYMENT"
	StepSummary WizardStep = "SUMMARY"
)

// IsValid checks if the step is a known WizardStep
func (s WizardStep) IsValid() bool {
	return s == StepDetails || s == StepPayment || s == StepSummary
}

// StockChecker verifies a variant can satisfy a requested quantity
type StockChecker func(ctx context.Context, productID, variantID uuid.UUID, quantity int) error

// AccountFetcher loads a payment account by ID
type AccountFetcher func(ctx context.Context, accountID uuid.UUID) (*treasury.Account, error)

// Wizard drives a draft through the console's three screens. Forward
// movement is guarded; moving backward is always allowed and never
// loses data.
type Wizard struct {
	draft        *OrderDraft
	checkStock   StockChecker
	fetchAccount AccountFetcher
}

// NewWizard wraps a draft with the lookups its guards need
func NewWizard(draft *OrderDraft, checkStock StockChecker, fetchAccount AccountFetcher) *Wizard {
	return &Wizard{
		draft:        draft,
		checkStock:   checkStock,
		fetchAccount: fetchAccount,
	}
}

// Draft returns the wrapped draft
func (w *Wizard) Draft() *OrderDraft {
	return w.draft
}

// Next advances the draft one step after its guard passes
func (w *Wizard) Next(ctx context.Context) error {
	switch w.draft.Step {
	case StepDetails:
		if err := w.guardDetails(ctx); err != nil {
			return err
		}
		w.draft.Step = StepPayment
	case StepPayment:
		if err := w.guardPayment(ctx); err != nil {
			return err
		}
		w.draft.Step = StepSummary
	case StepSummary:
		return shared.NewDomainError("INVALID_STEP", "Already at the last step")
	default:
		return shared.NewDomainError("INVALID_STEP", fmt.Sprintf("Unknown wizard step %q", w.draft.Step))
	}
	return nil
}

// Back moves the draft one step backward
func (w *Wizard) Back() error {
	switch w.draft.Step {
	case StepSummary:
		w.draft.Step = StepPayment
	case StepPayment:
		w.draft.Step = StepDetails
	case StepDetails:
		return shared.NewDomainError("INVALID_STEP", "Already at the first step")
	default:
		return shared.NewDomainError("INVALID_STEP", fmt.Sprintf("Unknown wizard step %q", w.draft.Step))
	}
	return nil
}

// guardDetails validates the details screen: at least one complete item,
// and for sales every requested quantity must be in stock.
func (w *Wizard) guardDetails(ctx context.Context) error {
	complete := CompleteItems(w.draft.Items)
	if len(complete) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Order needs at least one item with a product and variant")
	}

	for _, item := range complete {
		if item.Quantity < 1 {
			return shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be at least 1")
		}
	}

	if w.draft.Type == OrderTypeSell {
		for _, item := range complete {
			if err := w.checkStock(ctx, item.ProductID, item.VariantID, item.Quantity); err != nil {
				return err
			}
		}
	}

	return nil
}

// guardPayment validates the payment screen. An unpaid remainder needs a
// named counterparty to hang the credit on, except walk-in sales which
// are settled in full at submission. Account balances are re-checked for
// purchases since they may have moved since the rows were added.
func (w *Wizard) guardPayment(ctx context.Context) error {
	breakdown := w.draft.Breakdown()

	if breakdown.Remaining.IsPositive() && w.draft.EntityID == nil && w.draft.Type == OrderTypeBuy {
		return shared.NewDomainError("ENTITY_REQUIRED", "Partially paid orders need a counterparty")
	}

	if w.draft.Type == OrderTypeBuy {
		drawn := make(map[uuid.UUID]decimal.Decimal)
		for _, payment := range w.draft.Payments {
			drawn[payment.AccountID] = drawn[payment.AccountID].Add(payment.Amount)
		}
		for accountID, amount := range drawn {
			account, err := w.fetchAccount(ctx, accountID)
			if err != nil {
				return err
			}
			if !account.CanCover(amount) {
				return shared.NewDomainError(
					"INSUFFICIENT_BALANCE",
					fmt.Sprintf("Insufficient balance in %s: available %s, required %s",
						account.Name, account.Balance.StringFixed(2), amount.StringFixed(2)),
				)
			}
		}
	}

	return nil
}

// Submission is the finalized form of a draft, ready to be persisted as
// an order with its money movements.
type Submission struct {
	Draft             *OrderDraft
	EntityID          uuid.UUID
	Items             []LineItem
	Charges           []Charge
	Payments          []Payment
	Breakdown         PriceBreakdown
	VendorSettlement  *treasury.Account
	VendorChargeTotal decimal.Decimal
}

// BuildSubmission finalizes the draft from the summary screen.
//
// A sale with no counterparty, or one sold to the organization's
// default entity, is treated as a walk-in cash sale: the default entity
// stands in and any recorded payments are replaced with a single full
// payment into the cash counter.
//
// Only entity-borne charges with a positive amount travel onto the
// order; charges the business settles itself survive as the vendor
// charge total and need an account to settle from, so when any exist
// vendorSettlement must be provided and able to cover the total.
func (w *Wizard) BuildSubmission(walkInEntityID uuid.UUID, cashCounter *treasury.Account, vendorSettlement *treasury.Account) (*Submission, error) {
	if w.draft.Step != StepSummary {
		return nil, shared.NewDomainError("INVALID_STEP", "Order can only be submitted from the summary step")
	}

	items := CompleteItems(w.draft.Items)
	payments := make([]Payment, len(w.draft.Payments))
	copy(payments, w.draft.Payments)

	entityID := uuid.Nil
	if w.draft.EntityID != nil {
		entityID = *w.draft.EntityID
	}

	breakdown := w.draft.Breakdown()

	walkIn := entityID == uuid.Nil || (walkInEntityID != uuid.Nil && entityID == walkInEntityID)
	if w.draft.Type == OrderTypeSell && walkIn {
		if walkInEntityID == uuid.Nil {
			return nil, shared.NewDomainError("ENTITY_REQUIRED", "No default entity configured for walk-in sales")
		}
		entityID = walkInEntityID

		if breakdown.GrandTotal.IsPositive() {
			if cashCounter == nil || cashCounter.Type != treasury.AccountTypeCashCounter {
				return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "No cash counter account configured for walk-in sales")
			}
			cash, err := NewPayment(cashCounter, breakdown.GrandTotal, nil)
			if err != nil {
				return nil, err
			}
			payments = []Payment{cash}
		} else {
			payments = nil
		}
		breakdown = CalculatePrice(items, w.draft.Discount, w.draft.Charges.Charges, payments)
	}

	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("ENTITY_REQUIRED", "Order needs a counterparty")
	}

	if breakdown.VendorChargeTotal.IsPositive() {
		if vendorSettlement == nil {
			return nil, shared.NewDomainError("ACCOUNT_REQUIRED", "Charges borne by the business need a settlement account")
		}
		if !vendorSettlement.CanCover(breakdown.VendorChargeTotal) {
			return nil, shared.NewDomainError(
				"INSUFFICIENT_BALANCE",
				fmt.Sprintf("Insufficient balance in %s to settle charges of %s",
					vendorSettlement.Name, breakdown.VendorChargeTotal.StringFixed(2)),
			)
		}
	} else {
		vendorSettlement = nil
	}

	charges := make([]Charge, 0, len(w.draft.Charges.Charges))
	for _, charge := range w.draft.Charges.Charges {
		if charge.BearedByEntity && charge.Amount.IsPositive() {
			charges = append(charges, charge)
		}
	}

	return &Submission{
		Draft:             w.draft,
		EntityID:          entityID,
		Items:             items,
		Charges:           charges,
		Payments:          payments,
		Breakdown:         breakdown,
		VendorSettlement:  vendorSettlement,
		VendorChargeTotal: breakdown.VendorChargeTotal,
	}, nil
}

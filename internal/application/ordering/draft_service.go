package ordering

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/catalog"
	domainordering "github.com/karobar/backend/internal/domain/ordering"
	"github.com/karobar/backend/internal/domain/org"
	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/domain/treasury"
	"github.com/karobar/backend/internal/infrastructure/telemetry"
)

type draftKey struct {
	userID    uuid.UUID
	orderType domainordering.OrderType
}

// draftStore keeps in-progress drafts in memory, one per user and order
// type. Drafts are working state of the console, not records; losing
// them on restart is acceptable and nothing outside this process reads
// them.
type draftStore struct {
	mu     sync.RWMutex
	drafts map[draftKey]*domainordering.OrderDraft
}

func newDraftStore() *draftStore {
	return &draftStore{drafts: make(map[draftKey]*domainordering.OrderDraft)}
}

func (s *draftStore) get(userID uuid.UUID, orderType domainordering.OrderType) *domainordering.OrderDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drafts[draftKey{userID: userID, orderType: orderType}]
}

func (s *draftStore) put(draft *domainordering.OrderDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draftKey{userID: draft.UserID, orderType: draft.Type}] = draft
}

func (s *draftStore) remove(userID uuid.UUID, orderType domainordering.OrderType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftKey{userID: userID, orderType: orderType})
}

// DraftService manages the order console's in-progress drafts: one BUY
// and one SELL draft per user, edited field by field until submission.
type DraftService struct {
	store        *draftStore
	settingsRepo org.SettingsRepository
	accountRepo  treasury.AccountRepository
	productRepo  catalog.ProductRepository
}

// NewDraftService creates a new DraftService
func NewDraftService(
	settingsRepo org.SettingsRepository,
	accountRepo treasury.AccountRepository,
	productRepo catalog.ProductRepository,
) *DraftService {
	return &DraftService{
		store:        newDraftStore(),
		settingsRepo: settingsRepo,
		accountRepo:  accountRepo,
		productRepo:  productRepo,
	}
}

// draftFor returns the user's draft of the given type, or nil
func (s *DraftService) draftFor(userID uuid.UUID, orderType domainordering.OrderType) *domainordering.OrderDraft {
	return s.store.get(userID, orderType)
}

// discard drops the user's draft of the given type
func (s *DraftService) discard(userID uuid.UUID, orderType domainordering.OrderType) {
	s.store.remove(userID, orderType)
}

// vatStatusFor resolves the organization's VAT setting, defaulting to
// conditional when none has been saved yet
func (s *DraftService) vatStatusFor(ctx context.Context, orgID uuid.UUID) (org.VatStatus, error) {
	settings, err := s.settingsRepo.FindByOrg(ctx, orgID)
	if err != nil {
		return "", err
	}
	if settings == nil {
		return org.VatStatusConditional, nil
	}
	return settings.VatStatus, nil
}

// stockChecker adapts the product repository to the wizard's stock guard
func (s *DraftService) stockChecker(orgID uuid.UUID) domainordering.StockChecker {
	return func(ctx context.Context, productID, variantID uuid.UUID, quantity int) error {
		product, err := s.productRepo.FindByIDForOrg(ctx, orgID, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return product.CheckStock(variantID, quantity)
	}
}

// accountFetcher adapts the account repository to the wizard's balance guard
func (s *DraftService) accountFetcher(orgID uuid.UUID) domainordering.AccountFetcher {
	return func(ctx context.Context, accountID uuid.UUID) (*treasury.Account, error) {
		account, err := s.accountRepo.FindByIDForOrg(ctx, orgID, accountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Payment account not found")
		}
		return account, nil
	}
}

// wizardFor wraps a draft with its guards
func (s *DraftService) wizardFor(draft *domainordering.OrderDraft) *domainordering.Wizard {
	return domainordering.NewWizard(draft, s.stockChecker(draft.OrgID), s.accountFetcher(draft.OrgID))
}

// GetOrCreate returns the user's draft of the given type, starting a
// fresh one if none is in progress
func (s *DraftService) GetOrCreate(ctx context.Context, orgID, userID uuid.UUID, orderType domainordering.OrderType) (*DraftResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "draft", "get_or_create")
	defer span.End()
	telemetry.SetAttributes(span, "org_id", orgID.String(), "order_type", orderType.String())

	if draft := s.store.get(userID, orderType); draft != nil {
		response := NewDraftResponse(draft)
		return &response, nil
	}

	vatStatus, err := s.vatStatusFor(ctx, orgID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	draft, err := domainordering.NewOrderDraft(orgID, userID, orderType, vatStatus)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.store.put(draft)

	response := NewDraftResponse(draft)
	return &response, nil
}

// mutate runs fn against the user's draft and serializes the result
func (s *DraftService) mutate(userID uuid.UUID, orderType domainordering.OrderType, fn func(*domainordering.OrderDraft) error) (*DraftResponse, error) {
	draft := s.store.get(userID, orderType)
	if draft == nil {
		return nil, shared.NewDomainError("DRAFT_NOT_FOUND", "No draft in progress")
	}
	if err := fn(draft); err != nil {
		return nil, err
	}

	response := NewDraftResponse(draft)
	return &response, nil
}

// SetEntity assigns or clears the draft's counterparty
func (s *DraftService) SetEntity(ctx context.Context, userID uuid.UUID, orderType domainordering.OrderType, entityID uuid.UUID) (*DraftResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, "draft", "set_entity")
	defer span.End()

	return s.mutate(userID, orderType, func(draft *domainordering.OrderDraft) error {
		draft.SetEntity(entityID)
		return nil
	})
}

// SetItems replaces the draft's line items
func (s *DraftService) SetItems(ctx context.Context, userID uuid.UUID, orderType domainordering.OrderType, inputs []ItemInput) (*DraftResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, "draft", "set_items")
	defer span.End()
	telemetry.SetAttribute(span, "items_count", len(inputs))

	items := make([]domainordering.LineItem, 0, len(inputs))
	for _, input := range inputs {
		rate, err := parseDecimal(input.Rate)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, shared.NewDomainError("INVALID_RATE", "Item rate is not a valid number")
		}
		items = append(items, domainordering.LineItem{
			ProductID:   input.ProductID,
			VariantID:   input.VariantID,
			Rate:        rate,
			Quantity:    input.Quantity,
			Description: input.Description,
		})
	}

	return s.mutate(userID, orderType, func(draft *domainordering.OrderDraft) error {
		return draft.SetItems(items)
	})
}

// SetDiscount applies an order-level discount
func (s *DraftService) SetDiscount(ctx context.Context, userID uuid.UUID, orderType domainordering.OrderType, value string) (*DraftResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, "draft", "set_discount")
	defer span.End()

	discount, err := parseDecimal(value)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount is not a valid number")
	}

	return s.mutate(userID, orderType, func(draft *domainordering.OrderDraft) error {
		return draft.SetDiscount(discount)
	})
}

// AddCharge appends a blank charge row
func (s *DraftService) AddCharge(ctx context.Context, userID uuid.UUID, orderType domainordering.OrderType) (*DraftResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, "draft", "add_charge")
	defer span.End()

	return s.mutate(userID, orderType, func(draft *domainordering.OrderDraft) error {
		draft.AddCharge()
		return nil
	})
}

// AddVatCharge inserts a VAT charge, subject to the org's VAT setting
func (s *DraftService) AddVatCharge(ctx context.Context, userID uuid.UUID, orderType domainordering.OrderType) (*DraftResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, "draft", "add_vat")
	defer span.End()

	return s.mutate(userID, orderType, func(draft *domainordering.OrderDraft) error {
		_, err := draft.AddVatCharge()
		return err
	})
}

// RemoveCharge deletes a charge row
func (s *DraftService) RemoveCharge(ctx context.Context, userID uuid.UUID, orderType domainordering.OrderType, chargeID uuid.UUID) (*DraftResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, "draft", "remove_charge")
	defer span.End()

	return s.mutate(userID, orderType, func(draft *domainordering.OrderDraft) error {
		return draft.RemoveCharge(chargeID)
	})
}

// UpdateCharge applies a partial edit to one charge row. Fields are
// applied in a fixed order: label, bearer, type, then amount or
// percentage, so a single request can retype a charge and set its value.
func (s *DraftService) UpdateCharge(ctx context.Context, userID uuid.UUID, orderType domainordering.OrderType, chargeID uuid.UUID, input ChargeUpdateInput) (*DraftResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, "draft", "update_charge")
	defer span.End()
	telemetry.SetAttribute(span, "charge_id", chargeID.String())

	return s.mutate(userID, orderType, func(draft *domainordering.OrderDraft) error {
		if input.Label != nil {
			if err := draft.Charges.SetLabel(chargeID, *input.Label); err != nil {
				return err
			}
		}
		if input.BearedByEntity != nil {
			if err := draft.Charges.SetBearer(chargeID, *input.BearedByEntity); err != nil {
				return err
			}
		}
		if input.Type != nil {
			if err := draft.UpdateCharge(chargeID, func(list *domainordering.ChargeList, id uuid.UUID, base decimal.Decimal) error {
				return list.SetType(id, domainordering.ChargeType(*input.Type), base)
			}); err != nil {
				return err
			}
		}
		if input.Amount != nil {
			amount, err := parseDecimal(*input.Amount)
			if err != nil {
				return shared.NewDomainError("INVALID_AMOUNT", "Charge amount is not a valid number")
			}
			if err := draft.UpdateCharge(chargeID, func(list *domainordering.ChargeList, id uuid.UUID, base decimal.Decimal) error {
				return list.SetAmount(id, amount, base)
			}); err != nil {
				return err
			}
		}
		if input.Percentage != nil {
			percentage, err := parseDecimal(*input.Percentage)
			if err != nil {
				return shared.NewDomainError("INVALID_PERCENTAGE", "Charge percentage is not a valid number")
			}
			if err := draft.UpdateCharge(chargeID, func(list *domainordering.ChargeList, id uuid.UUID, base decimal.Decimal) error {
				return list.SetPercentage(id, percentage, base)
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// AddPayment records a payment row against one of the org's accounts
func (s *DraftService) AddPayment(ctx context.Context, userID uuid.UUID, orderType domainordering.OrderType, input PaymentInput) (*DraftResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "draft", "add_payment")
	defer span.End()
	telemetry.SetAttribute(span, "account_id", input.AccountID.String())

	amount, err := parseDecimal(input.Amount)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount is not a valid number")
	}

	draft := s.store.get(userID, orderType)
	if draft == nil {
		return nil, shared.NewDomainError("DRAFT_NOT_FOUND", "No draft in progress")
	}

	account, err := s.accountFetcher(draft.OrgID)(ctx, input.AccountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var cheque *domainordering.ChequeDetails
	if input.Cheque != nil {
		cheque = &domainordering.ChequeDetails{
			Issuer: input.Cheque.Issuer,
			Bank:   input.Cheque.Bank,
			Number: input.Cheque.Number,
			Date:   input.Cheque.Date,
		}
	}

	if _, err := draft.AddPayment(account, amount, cheque); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := NewDraftResponse(draft)
	return &response, nil
}

// RemovePayment deletes a payment row
func (s *DraftService) RemovePayment(ctx context.Context, userID uuid.UUID, orderType domainordering.OrderType, paymentID uuid.UUID) (*DraftResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, "draft", "remove_payment")
	defer span.End()

	return s.mutate(userID, orderType, func(draft *domainordering.OrderDraft) error {
		return draft.RemovePayment(paymentID)
	})
}

// Next advances the draft to the next wizard step
func (s *DraftService) Next(ctx context.Context, userID uuid.UUID, orderType domainordering.OrderType) (*DraftResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "draft", "next_step")
	defer span.End()

	draft := s.store.get(userID, orderType)
	if draft == nil {
		return nil, shared.NewDomainError("DRAFT_NOT_FOUND", "No draft in progress")
	}

	if err := s.wizardFor(draft).Next(ctx); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := NewDraftResponse(draft)
	return &response, nil
}

// Back moves the draft to the previous wizard step
func (s *DraftService) Back(ctx context.Context, userID uuid.UUID, orderType domainordering.OrderType) (*DraftResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, "draft", "previous_step")
	defer span.End()

	return s.mutate(userID, orderType, func(draft *domainordering.OrderDraft) error {
		return s.wizardFor(draft).Back()
	})
}

// Discard drops the user's draft of the given type
func (s *DraftService) Discard(ctx context.Context, userID uuid.UUID, orderType domainordering.OrderType) error {
	_, span := telemetry.StartServiceSpan(ctx, "draft", "discard")
	defer span.End()

	s.store.remove(userID, orderType)
	return nil
}

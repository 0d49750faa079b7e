package ordering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/karobar/backend/internal/domain/catalog"
	domainordering "github.com/karobar/backend/internal/domain/ordering"
	"github.com/karobar/backend/internal/domain/partner"
	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/domain/treasury"
	"github.com/karobar/backend/internal/infrastructure/telemetry"
)

// idempotencyTTL is how long a submission key blocks duplicates
const idempotencyTTL = 24 * time.Hour

// OrderService turns finalized drafts into persisted orders together
// with their money movements, all inside one database transaction.
type OrderService struct {
	drafts          *DraftService
	orderRepo       domainordering.OrderRepository
	accountRepo     treasury.AccountRepository
	transactionRepo treasury.TransactionRepository
	entityRepo      partner.EntityRepository
	productRepo     catalog.ProductRepository
	txRunner        shared.TransactionRunner
	idempotency     shared.IdempotencyStore
	logger          *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	drafts *DraftService,
	orderRepo domainordering.OrderRepository,
	accountRepo treasury.AccountRepository,
	transactionRepo treasury.TransactionRepository,
	entityRepo partner.EntityRepository,
	productRepo catalog.ProductRepository,
	txRunner shared.TransactionRunner,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		drafts:          drafts,
		orderRepo:       orderRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		entityRepo:      entityRepo,
		productRepo:     productRepo,
		txRunner:        txRunner,
		idempotency:     idempotency,
		logger:          logger,
	}
}

// SubmitRequest finalizes the user's draft of the given type
type SubmitRequest struct {
	OrgID     uuid.UUID
	UserID    uuid.UUID
	OrderType domainordering.OrderType
	// VendorSettlementAccountID funds charges the business bears itself.
	// Required only when such charges exist on the draft.
	VendorSettlementAccountID *uuid.UUID
	// IdempotencyKey guards against double submission. Empty disables the check.
	IdempotencyKey string
}

// Submit persists the draft as an order. The order row, every payment's
// account movement and ledger entry, the settlement of business-borne
// charges and the stock adjustments commit together or not at all.
func (s *OrderService) Submit(ctx context.Context, req SubmitRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "submit")
	defer span.End()
	telemetry.SetAttributes(span,
		"org_id", req.OrgID.String(),
		"order_type", req.OrderType.String(),
	)

	if req.IdempotencyKey != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, req.IdempotencyKey, idempotencyTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if !fresh {
			telemetry.RecordError(span, shared.ErrDuplicateSubmission)
			return nil, shared.ErrDuplicateSubmission
		}
	}

	draft := s.drafts.draftFor(req.UserID, req.OrderType)
	if draft == nil {
		return nil, shared.NewDomainError("DRAFT_NOT_FOUND", "No draft in progress")
	}
	if draft.OrgID != req.OrgID {
		return nil, shared.NewDomainError("DRAFT_NOT_FOUND", "No draft in progress")
	}

	submission, err := s.buildSubmission(ctx, draft, req.VendorSettlementAccountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var order *domainordering.Order
	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		order, txErr = s.persistSubmission(ctx, submission)
		return txErr
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.drafts.discard(req.UserID, req.OrderType)

	telemetry.SetAttribute(span, "order_number", order.OrderNumber)
	s.logger.Info("order submitted",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("order_type", order.Type.String()),
		zap.String("grand_total", order.GrandTotal.StringFixed(2)),
	)

	response := NewOrderResponse(order)
	return &response, nil
}

// buildSubmission finalizes the draft, resolving the walk-in entity,
// the cash counter and the settlement account it may need. A sale with
// no counterparty or with the default entity explicitly selected is a
// walk-in sale, so the cash counter is looked up for either.
func (s *OrderService) buildSubmission(ctx context.Context, draft *domainordering.OrderDraft, vendorAccountID *uuid.UUID) (*domainordering.Submission, error) {
	wizard := s.drafts.wizardFor(draft)
	if draft.Step != domainordering.StepSummary {
		return nil, shared.NewDomainError("INVALID_STEP", "Order can only be submitted from the summary step")
	}

	walkInID := uuid.Nil
	var cashCounter *treasury.Account
	if draft.Type == domainordering.OrderTypeSell {
		walkIn, err := s.entityRepo.FindDefaultForOrg(ctx, draft.OrgID)
		if err != nil {
			return nil, err
		}
		if walkIn != nil {
			walkInID = walkIn.ID
		}

		if draft.EntityID == nil || (walkIn != nil && *draft.EntityID == walkIn.ID) {
			counters, err := s.accountRepo.FindByTypeForOrg(ctx, draft.OrgID, treasury.AccountTypeCashCounter)
			if err != nil {
				return nil, err
			}
			if len(counters) > 0 {
				cashCounter = &counters[0]
			}
		}
	}

	var vendorSettlement *treasury.Account
	if vendorAccountID != nil {
		account, err := s.accountRepo.FindByIDForOrg(ctx, draft.OrgID, *vendorAccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Settlement account not found")
		}
		vendorSettlement = account
	}

	return wizard.BuildSubmission(walkInID, cashCounter, vendorSettlement)
}

// persistSubmission writes the order and all its side effects. It runs
// inside the caller's transaction; accounts are re-read here so balance
// checks apply to current state under the transaction's isolation.
func (s *OrderService) persistSubmission(ctx context.Context, submission *domainordering.Submission) (*domainordering.Order, error) {
	draft := submission.Draft

	orderNumber, err := s.orderRepo.NextOrderNumber(ctx, draft.OrgID, draft.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to issue order number: %w", err)
	}

	order, err := domainordering.NewOrderFromSubmission(orderNumber, submission)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	for _, payment := range submission.Payments {
		if err := s.applyPayment(ctx, order, payment); err != nil {
			return nil, err
		}
	}

	if submission.VendorSettlement != nil {
		if err := s.settleVendorCharges(ctx, order, submission); err != nil {
			return nil, err
		}
	}

	if err := s.adjustStock(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// applyPayment moves money for one payment row and writes its ledger
// entry. Sales credit the account, purchases debit it.
func (s *OrderService) applyPayment(ctx context.Context, order *domainordering.Order, payment domainordering.Payment) error {
	account, err := s.accountRepo.FindByIDForOrg(ctx, order.OrgID, payment.AccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return shared.NewDomainError("ACCOUNT_NOT_FOUND", "Payment account not found")
	}

	var txType treasury.TransactionType
	if order.Type == domainordering.OrderTypeSell {
		txType = treasury.TransactionTypeCredit
		if err := account.Credit(payment.Amount); err != nil {
			return err
		}
	} else {
		txType = treasury.TransactionTypeDebit
		if err := account.Debit(payment.Amount); err != nil {
			return err
		}
	}
	if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	entry, err := treasury.NewTransaction(order.OrgID, account.ID, payment.Amount, txType,
		fmt.Sprintf("Order %s payment", order.OrderNumber))
	if err != nil {
		return err
	}
	entry = entry.WithOrder(order.ID)
	if payment.Cheque != nil {
		entry = entry.WithCheque(payment.Cheque.Issuer, payment.Cheque.Bank, payment.Cheque.Number).
			WithChequeDate(payment.Cheque.Date)
	}
	if err := s.transactionRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	return nil
}

// settleVendorCharges debits the settlement account for charges the
// business bears and tags the ledger entry with the order
func (s *OrderService) settleVendorCharges(ctx context.Context, order *domainordering.Order, submission *domainordering.Submission) error {
	account, err := s.accountRepo.FindByIDForOrg(ctx, order.OrgID, submission.VendorSettlement.ID)
	if err != nil {
		return err
	}
	if account == nil {
		return shared.NewDomainError("ACCOUNT_NOT_FOUND", "Settlement account not found")
	}

	if err := account.Debit(submission.VendorChargeTotal); err != nil {
		return err
	}
	if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
		return fmt.Errorf("failed to update settlement account: %w", err)
	}

	entry, err := treasury.NewTransaction(order.OrgID, account.ID, submission.VendorChargeTotal,
		treasury.TransactionTypeDebit, fmt.Sprintf("Order %s charges settled", order.OrderNumber))
	if err != nil {
		return err
	}
	if err := s.transactionRepo.Create(ctx, entry.WithOrder(order.ID)); err != nil {
		return fmt.Errorf("failed to record settlement transaction: %w", err)
	}

	return nil
}

// adjustStock moves inventory for each order item: sales consume stock,
// purchases replenish it
func (s *OrderService) adjustStock(ctx context.Context, order *domainordering.Order) error {
	for _, item := range order.Items {
		product, err := s.productRepo.FindByIDForOrg(ctx, order.OrgID, item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}

		delta := item.Quantity
		if order.Type == domainordering.OrderTypeSell {
			delta = -delta
		}
		if err := product.AdjustStock(item.VariantID, delta); err != nil {
			return err
		}
		if err := s.productRepo.Save(ctx, product); err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}
	}
	return nil
}

// Preview prices a hypothetical order without touching any draft
func (s *OrderService) Preview(ctx context.Context, req PreviewRequest) (*BreakdownResponse, error) {
	_, span := telemetry.StartServiceSpan(ctx, "order", "preview")
	defer span.End()

	items := make([]domainordering.LineItem, 0, len(req.Items))
	for _, input := range req.Items {
		rate, err := parseDecimal(input.Rate)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_RATE", "Item rate is not a valid number")
		}
		items = append(items, domainordering.LineItem{
			ProductID: input.ProductID,
			VariantID: input.VariantID,
			Rate:      rate,
			Quantity:  input.Quantity,
		})
	}

	discount, err := parseDecimal(req.Discount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount is not a valid number")
	}

	charges := make([]domainordering.Charge, 0, len(req.Charges))
	for _, input := range req.Charges {
		amount, err := parseDecimal(input.Amount)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Charge amount is not a valid number")
		}
		percentage, err := parseDecimal(input.Percentage)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PERCENTAGE", "Charge percentage is not a valid number")
		}
		charges = append(charges, domainordering.Charge{
			ID:             uuid.New(),
			Label:          input.Label,
			Type:           domainordering.ChargeType(input.Type),
			Amount:         amount,
			Percentage:     percentage,
			BearedByEntity: input.BearedByEntity,
		})
	}

	breakdown := domainordering.CalculatePrice(items, discount, charges, nil)
	response := NewBreakdownResponse(breakdown)
	return &response, nil
}

// Get returns one order with its items
func (s *OrderService) Get(ctx context.Context, orgID, orderID uuid.UUID) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "get")
	defer span.End()
	telemetry.SetAttribute(span, "order_id", orderID.String())

	order, err := s.orderRepo.FindByIDForOrg(ctx, orgID, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if order == nil {
		return nil, shared.ErrNotFound
	}

	response := NewOrderResponse(order)
	return &response, nil
}

// List returns the org's orders, newest first by default
func (s *OrderService) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "list")
	defer span.End()

	orders, err := s.orderRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, NewOrderResponse(&orders[i]))
	}
	return responses, nil
}

// ListByEntity returns the orders of one counterparty
func (s *OrderService) ListByEntity(ctx context.Context, orgID, entityID uuid.UUID, filter shared.Filter) ([]OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "list_by_entity")
	defer span.End()
	telemetry.SetAttribute(span, "entity_id", entityID.String())

	orders, err := s.orderRepo.FindByEntityForOrg(ctx, orgID, entityID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, NewOrderResponse(&orders[i]))
	}
	return responses, nil
}

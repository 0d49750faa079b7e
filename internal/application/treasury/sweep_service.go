package treasury

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainordering "github.com/karobar/backend/internal/domain/ordering"
	"github.com/karobar/backend/internal/domain/partner"
	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/domain/treasury"
	"github.com/karobar/backend/internal/infrastructure/telemetry"
)

const sweepIdempotencyTTL = 24 * time.Hour

// SweepService applies a lump payment from or to a counterparty across
// their outstanding orders, oldest first, in one database transaction.
type SweepService struct {
	orderRepo       domainordering.OrderRepository
	accountRepo     treasury.AccountRepository
	transactionRepo treasury.TransactionRepository
	entityRepo      partner.EntityRepository
	txRunner        shared.TransactionRunner
	idempotency     shared.IdempotencyStore
	logger          *zap.Logger
}

// NewSweepService creates a new SweepService
func NewSweepService(
	orderRepo domainordering.OrderRepository,
	accountRepo treasury.AccountRepository,
	transactionRepo treasury.TransactionRepository,
	entityRepo partner.EntityRepository,
	txRunner shared.TransactionRunner,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *SweepService {
	return &SweepService{
		orderRepo:       orderRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		entityRepo:      entityRepo,
		txRunner:        txRunner,
		idempotency:     idempotency,
		logger:          logger,
	}
}

// SweepRequest settles a counterparty's outstanding orders with one payment
type SweepRequest struct {
	OrgID    uuid.UUID
	EntityID uuid.UUID
	// OrderType selects which side to settle: SELL sweeps money owed by
	// the entity, BUY sweeps money owed to the entity.
	OrderType domainordering.OrderType
	AccountID uuid.UUID
	Amount    decimal.Decimal
	// Cheque metadata, required when the account is a cheque account
	ChequeIssuer string
	ChequeBank   string
	ChequeNumber string
	// IdempotencyKey guards against double submission. Empty disables the check.
	IdempotencyKey string
}

// AllocationResult is one order's share of a swept payment
type AllocationResult struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Applied     string    `json:"applied"`
	Remaining   string    `json:"remaining"`
	Settled     bool      `json:"settled"`
}

// SweepResponse summarizes a completed sweep
type SweepResponse struct {
	EntityID    uuid.UUID          `json:"entity_id"`
	AccountID   uuid.UUID          `json:"account_id"`
	Amount      string             `json:"amount"`
	Allocations []AllocationResult `json:"allocations"`
}

// Sweep spreads the payment across the entity's outstanding orders of
// the given type, oldest first. All order updates, the account movement
// and the ledger entries commit together or not at all; a payment
// exceeding the total outstanding amount is rejected up front.
func (s *SweepService) Sweep(ctx context.Context, req SweepRequest) (*SweepResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_sweep", "sweep")
	defer span.End()
	telemetry.SetAttributes(span,
		"org_id", req.OrgID.String(),
		"entity_id", req.EntityID.String(),
		"order_type", req.OrderType.String(),
		"amount", req.Amount.String(),
	)

	if req.IdempotencyKey != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, req.IdempotencyKey, sweepIdempotencyTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if !fresh {
			telemetry.RecordError(span, shared.ErrDuplicateSubmission)
			return nil, shared.ErrDuplicateSubmission
		}
	}

	entity, err := s.entityRepo.FindByIDForOrg(ctx, req.OrgID, req.EntityID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if entity == nil {
		return nil, shared.NewDomainError("ENTITY_NOT_FOUND", "Entity not found")
	}

	var response *SweepResponse
	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		response, txErr = s.sweepInTransaction(ctx, req)
		return txErr
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("payment swept",
		zap.String("entity_id", req.EntityID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.Int("orders_touched", len(response.Allocations)),
	)

	return response, nil
}

func (s *SweepService) sweepInTransaction(ctx context.Context, req SweepRequest) (*SweepResponse, error) {
	orders, err := s.orderRepo.FindOutstandingByEntity(ctx, req.OrgID, req.EntityID, req.OrderType)
	if err != nil {
		return nil, fmt.Errorf("failed to load outstanding orders: %w", err)
	}

	outstanding := make([]treasury.OutstandingOrder, 0, len(orders))
	byID := make(map[uuid.UUID]*domainordering.Order, len(orders))
	for i := range orders {
		order := &orders[i]
		outstanding = append(outstanding, treasury.OutstandingOrder{
			OrderID:   order.ID,
			Remaining: order.RemainingAmount(),
		})
		byID[order.ID] = order
	}

	allocations, err := treasury.AllocatePayment(req.Amount, outstanding)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByIDForOrg(ctx, req.OrgID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
	}
	if account.Type.RequiresChequeDetails() && req.ChequeNumber == "" {
		return nil, shared.NewDomainError("CHEQUE_DETAILS_REQUIRED", "Cheque payments require cheque details")
	}

	var txType treasury.TransactionType
	if req.OrderType == domainordering.OrderTypeSell {
		txType = treasury.TransactionTypeCredit
		if err := account.Credit(req.Amount); err != nil {
			return nil, err
		}
	} else {
		txType = treasury.TransactionTypeDebit
		if err := account.Debit(req.Amount); err != nil {
			return nil, err
		}
	}
	if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account balance: %w", err)
	}

	results := make([]AllocationResult, 0, len(allocations))
	for _, allocation := range allocations {
		order := byID[allocation.OrderID]
		if err := order.ApplyPayment(allocation.Amount); err != nil {
			return nil, err
		}
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to update order %s: %w", order.OrderNumber, err)
		}

		entry, err := treasury.NewTransaction(req.OrgID, account.ID, allocation.Amount, txType,
			fmt.Sprintf("Order %s swept payment", order.OrderNumber))
		if err != nil {
			return nil, err
		}
		entry = entry.WithOrder(order.ID)
		if req.ChequeNumber != "" {
			entry = entry.WithCheque(req.ChequeIssuer, req.ChequeBank, req.ChequeNumber)
		}
		if err := s.transactionRepo.Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record transaction: %w", err)
		}

		results = append(results, AllocationResult{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Applied:     allocation.Amount.StringFixed(2),
			Remaining:   order.RemainingAmount().StringFixed(2),
			Settled:     order.IsSettled(),
		})
	}

	return &SweepResponse{
		EntityID:    req.EntityID,
		AccountID:   req.AccountID,
		Amount:      req.Amount.StringFixed(2),
		Allocations: results,
	}, nil
}

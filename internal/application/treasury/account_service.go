package treasury

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/domain/treasury"
	"github.com/karobar/backend/internal/infrastructure/telemetry"
)

// AccountService manages the organization's money-holding accounts
type AccountService struct {
	accountRepo     treasury.AccountRepository
	transactionRepo treasury.TransactionRepository
	txRunner        shared.TransactionRunner
}

// NewAccountService creates a new AccountService
func NewAccountService(
	accountRepo treasury.AccountRepository,
	transactionRepo treasury.TransactionRepository,
	txRunner shared.TransactionRunner,
) *AccountService {
	return &AccountService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		txRunner:        txRunner,
	}
}

// CreateAccountRequest opens a new account
type CreateAccountRequest struct {
	Name           string `json:"name" binding:"required"`
	Type           string `json:"type" binding:"required"`
	OpeningBalance string `json:"opening_balance" binding:"omitempty,decimal"`
}

// AccountResponse is one serialized account
type AccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAccountResponse serializes an account
func NewAccountResponse(account *treasury.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Type:      account.Type.String(),
		Balance:   account.Balance.StringFixed(2),
		CreatedAt: account.CreatedAt,
	}
}

// TransactionResponse is one serialized ledger entry
type TransactionResponse struct {
	ID           uuid.UUID  `json:"id"`
	AccountID    uuid.UUID  `json:"account_id"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
	Amount       string     `json:"amount"`
	Type         string     `json:"type"`
	Description  string     `json:"description"`
	ChequeNumber string     `json:"cheque_number,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Create opens a new account for the organization
func (s *AccountService) Create(ctx context.Context, orgID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "create")
	defer span.End()
	telemetry.SetAttribute(span, "account_type", req.Type)

	opening := decimal.Zero
	if req.OpeningBalance != "" {
		parsed, err := decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_BALANCE", "Opening balance is not a valid number")
		}
		opening = parsed
	}

	account, err := treasury.NewAccount(orgID, req.Name, treasury.AccountType(req.Type), opening)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := NewAccountResponse(account)
	return &response, nil
}

// Get returns one account
func (s *AccountService) Get(ctx context.Context, orgID, accountID uuid.UUID) (*AccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "get")
	defer span.End()

	account, err := s.accountRepo.FindByIDForOrg(ctx, orgID, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if account == nil {
		return nil, shared.ErrNotFound
	}

	response := NewAccountResponse(account)
	return &response, nil
}

// List returns the org's accounts
func (s *AccountService) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]AccountResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "list")
	defer span.End()

	accounts, err := s.accountRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, NewAccountResponse(&accounts[i]))
	}
	return responses, nil
}

// RecordTransactionRequest records a manual ledger entry against an account
type RecordTransactionRequest struct {
	Amount      string `json:"amount" binding:"required,decimal"`
	Type        string `json:"type" binding:"required,oneof=DEBIT CREDIT"`
	Description string `json:"description"`
	// Cheque metadata, required when the account is a cheque account
	ChequeIssuer string `json:"cheque_issuer"`
	ChequeBank   string `json:"cheque_bank"`
	ChequeNumber string `json:"cheque_number"`
}

// RecordTransaction applies a manual debit or credit to an account and
// writes its ledger entry. Balance update and entry commit together.
func (s *AccountService) RecordTransaction(ctx context.Context, orgID, accountID uuid.UUID, req RecordTransactionRequest) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "record_transaction")
	defer span.End()
	telemetry.SetAttributes(span, "account_id", accountID.String(), "type", req.Type)

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount is not a valid number")
	}

	var response *TransactionResponse
	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.FindByIDForOrg(ctx, orgID, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		if account.Type.RequiresChequeDetails() && req.ChequeNumber == "" {
			return shared.NewDomainError("CHEQUE_DETAILS_REQUIRED", "Cheque payments require cheque details")
		}

		txType := treasury.TransactionType(req.Type)
		if txType == treasury.TransactionTypeCredit {
			if err := account.Credit(amount); err != nil {
				return err
			}
		} else {
			if err := account.Debit(amount); err != nil {
				return err
			}
		}
		if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
			return err
		}

		entry, err := treasury.NewTransaction(orgID, account.ID, amount, txType, req.Description)
		if err != nil {
			return err
		}
		if req.ChequeNumber != "" {
			entry = entry.WithCheque(req.ChequeIssuer, req.ChequeBank, req.ChequeNumber)
		}
		if err := s.transactionRepo.Create(ctx, entry); err != nil {
			return err
		}

		response = &TransactionResponse{
			ID:           entry.ID,
			AccountID:    entry.AccountID,
			Amount:       entry.Amount.StringFixed(2),
			Type:         string(entry.Type),
			Description:  entry.Description,
			ChequeNumber: entry.ChequeNumber,
			CreatedAt:    entry.CreatedAt,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return response, nil
}

// ListTransactions returns an account's ledger entries
func (s *AccountService) ListTransactions(ctx context.Context, orgID, accountID uuid.UUID, filter shared.Filter) ([]TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "list_transactions")
	defer span.End()
	telemetry.SetAttribute(span, "account_id", accountID.String())

	account, err := s.accountRepo.FindByIDForOrg(ctx, orgID, accountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if account == nil {
		return nil, shared.ErrNotFound
	}

	transactions, err := s.transactionRepo.FindByAccountForOrg(ctx, orgID, accountID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	responses := make([]TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		responses = append(responses, TransactionResponse{
			ID:           tx.ID,
			AccountID:    tx.AccountID,
			OrderID:      tx.OrderID,
			Amount:       tx.Amount.StringFixed(2),
			Type:         string(tx.Type),
			Description:  tx.Description,
			ChequeNumber: tx.ChequeNumber,
			CreatedAt:    tx.CreatedAt,
		})
	}
	return responses, nil
}

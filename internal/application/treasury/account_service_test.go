package treasury

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/domain/treasury"
)

func newAccountFixture(t *testing.T) (*AccountService, *MockAccountRepository, *MockTransactionRepository) {
	t.Helper()
	accountRepo := new(MockAccountRepository)
	transactionRepo := new(MockTransactionRepository)
	service := NewAccountService(accountRepo, transactionRepo, passthroughTxRunner{})
	return service, accountRepo, transactionRepo
}

func TestAccountService_Create(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("opens an account with an opening balance", func(t *testing.T) {
		service, accountRepo, _ := newAccountFixture(t)
		accountRepo.On("Save", mock.Anything, mock.AnythingOfType("*treasury.Account")).Return(nil)

		response, err := service.Create(ctx, orgID, CreateAccountRequest{
			Name:           "Main Counter",
			Type:           "CASH_COUNTER",
			OpeningBalance: "5000",
		})
		require.NoError(t, err)
		assert.Equal(t, "Main Counter", response.Name)
		assert.Equal(t, "5000.00", response.Balance)
	})

	t.Run("rejects a malformed opening balance", func(t *testing.T) {
		service, _, _ := newAccountFixture(t)

		_, err := service.Create(ctx, orgID, CreateAccountRequest{
			Name:           "Main Counter",
			Type:           "CASH_COUNTER",
			OpeningBalance: "lots",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_BALANCE", domainErr.Code)
	})
}

func TestAccountService_RecordTransaction(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("credits the account and writes the ledger entry", func(t *testing.T) {
		service, accountRepo, transactionRepo := newAccountFixture(t)

		account, err := treasury.NewAccount(orgID, "Bank", treasury.AccountTypeBank, decimal.NewFromInt(100))
		require.NoError(t, err)

		accountRepo.On("FindByIDForOrg", mock.Anything, orgID, account.ID).Return(account, nil)
		accountRepo.On("SaveWithLock", mock.Anything, account).Return(nil)
		transactionRepo.On("Create", mock.Anything, mock.AnythingOfType("*treasury.Transaction")).Return(nil)

		response, err := service.RecordTransaction(ctx, orgID, account.ID, RecordTransactionRequest{
			Amount:      "250",
			Type:        "CREDIT",
			Description: "cash deposit",
		})
		require.NoError(t, err)

		assert.Equal(t, "250.00", response.Amount)
		assert.Equal(t, "CREDIT", response.Type)
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(350)))
		transactionRepo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("debit fails when the balance cannot cover it", func(t *testing.T) {
		service, accountRepo, transactionRepo := newAccountFixture(t)

		account, err := treasury.NewAccount(orgID, "Bank", treasury.AccountTypeBank, decimal.NewFromInt(10))
		require.NoError(t, err)

		accountRepo.On("FindByIDForOrg", mock.Anything, orgID, account.ID).Return(account, nil)

		_, err = service.RecordTransaction(ctx, orgID, account.ID, RecordTransactionRequest{
			Amount: "50",
			Type:   "DEBIT",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_BALANCE", domainErr.Code)
		transactionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("cheque account requires cheque details", func(t *testing.T) {
		service, accountRepo, _ := newAccountFixture(t)

		account, err := treasury.NewAccount(orgID, "Cheques", treasury.AccountTypeCheque, decimal.Zero)
		require.NoError(t, err)

		accountRepo.On("FindByIDForOrg", mock.Anything, orgID, account.ID).Return(account, nil)

		_, err = service.RecordTransaction(ctx, orgID, account.ID, RecordTransactionRequest{
			Amount: "100",
			Type:   "CREDIT",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CHEQUE_DETAILS_REQUIRED", domainErr.Code)
	})

	t.Run("unknown account is rejected", func(t *testing.T) {
		service, accountRepo, _ := newAccountFixture(t)
		accountID := uuid.New()

		accountRepo.On("FindByIDForOrg", mock.Anything, orgID, accountID).Return(nil, nil)

		_, err := service.RecordTransaction(ctx, orgID, accountID, RecordTransactionRequest{
			Amount: "100",
			Type:   "CREDIT",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_NOT_FOUND", domainErr.Code)
	})

	t.Run("malformed amount is rejected", func(t *testing.T) {
		service, _, _ := newAccountFixture(t)

		_, err := service.RecordTransaction(ctx, orgID, uuid.New(), RecordTransactionRequest{
			Amount: "a-lot",
			Type:   "CREDIT",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})
}

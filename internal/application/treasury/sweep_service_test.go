package treasury

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainordering "github.com/karobar/backend/internal/domain/ordering"
	"github.com/karobar/backend/internal/domain/partner"
	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/domain/treasury"
)

// =============================================================================
// Mocks
// =============================================================================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainordering.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*domainordering.Order, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]domainordering.Order, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]domainordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByEntityForOrg(ctx context.Context, orgID, entityID uuid.UUID, filter shared.Filter) ([]domainordering.Order, error) {
	args := m.Called(ctx, orgID, entityID, filter)
	return args.Get(0).([]domainordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindOutstandingByEntity(ctx context.Context, orgID, entityID uuid.UUID, orderType domainordering.OrderType) ([]domainordering.Order, error) {
	args := m.Called(ctx, orgID, entityID, orderType)
	return args.Get(0).([]domainordering.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domainordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *domainordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) NextOrderNumber(ctx context.Context, orgID uuid.UUID, orderType domainordering.OrderType) (string, error) {
	args := m.Called(ctx, orgID, orderType)
	return args.String(0), args.Error(1)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*treasury.Account, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]treasury.Account, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]treasury.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByTypeForOrg(ctx context.Context, orgID uuid.UUID, accountType treasury.AccountType) ([]treasury.Account, error) {
	args := m.Called(ctx, orgID, accountType)
	return args.Get(0).([]treasury.Account), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *treasury.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveWithLock(ctx context.Context, account *treasury.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByAccountForOrg(ctx context.Context, orgID, accountID uuid.UUID, filter shared.Filter) ([]treasury.Transaction, error) {
	args := m.Called(ctx, orgID, accountID, filter)
	return args.Get(0).([]treasury.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByOrderForOrg(ctx context.Context, orgID, orderID uuid.UUID) ([]treasury.Transaction, error) {
	args := m.Called(ctx, orgID, orderID)
	return args.Get(0).([]treasury.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Create(ctx context.Context, transaction *treasury.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

type MockEntityRepository struct {
	mock.Mock
}

func (m *MockEntityRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Entity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Entity), args.Error(1)
}

func (m *MockEntityRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*partner.Entity, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Entity), args.Error(1)
}

func (m *MockEntityRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]partner.Entity, error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).([]partner.Entity), args.Error(1)
}

func (m *MockEntityRepository) FindDefaultForOrg(ctx context.Context, orgID uuid.UUID) (*partner.Entity, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Entity), args.Error(1)
}

func (m *MockEntityRepository) Save(ctx context.Context, entity *partner.Entity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockEntityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// passthroughTxRunner runs the function directly, no transaction
type passthroughTxRunner struct{}

func (passthroughTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeIdempotencyStore struct {
	seen map[string]bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	return s.seen[key], nil
}

func (s *fakeIdempotencyStore) Close() error { return nil }

// =============================================================================
// Helpers
// =============================================================================

func outstandingOrder(t *testing.T, orgID, entityID uuid.UUID, number string, total, paid int64) domainordering.Order {
	t.Helper()
	order := domainordering.Order{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		OrderNumber:      number,
		Type:             domainordering.OrderTypeSell,
		EntityID:         entityID,
		GrandTotal:       decimal.NewFromInt(total),
		PaidAmount:       decimal.NewFromInt(paid),
	}
	require.True(t, order.RemainingAmount().IsPositive() || total == paid)
	return order
}

func newSweepFixture(t *testing.T) (*SweepService, *MockOrderRepository, *MockAccountRepository, *MockTransactionRepository, *MockEntityRepository) {
	t.Helper()
	orderRepo := new(MockOrderRepository)
	accountRepo := new(MockAccountRepository)
	transactionRepo := new(MockTransactionRepository)
	entityRepo := new(MockEntityRepository)

	service := NewSweepService(
		orderRepo, accountRepo, transactionRepo, entityRepo,
		passthroughTxRunner{}, newFakeIdempotencyStore(), zap.NewNop(),
	)
	return service, orderRepo, accountRepo, transactionRepo, entityRepo
}

// =============================================================================
// Tests
// =============================================================================

func TestSweepService_Sweep(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	entityID := uuid.New()

	newEntity := func(t *testing.T) *partner.Entity {
		t.Helper()
		entity, err := partner.NewEntity(orgID, "Sita Suppliers")
		require.NoError(t, err)
		entity.ID = entityID
		return entity
	}

	t.Run("spreads payment oldest first and records everything", func(t *testing.T) {
		service, orderRepo, accountRepo, transactionRepo, entityRepo := newSweepFixture(t)

		orders := []domainordering.Order{
			outstandingOrder(t, orgID, entityID, "SELL-000001", 30, 0),
			outstandingOrder(t, orgID, entityID, "SELL-000002", 50, 0),
			outstandingOrder(t, orgID, entityID, "SELL-000003", 20, 0),
		}
		account, err := treasury.NewAccount(orgID, "Counter", treasury.AccountTypeCashCounter, decimal.Zero)
		require.NoError(t, err)

		entityRepo.On("FindByIDForOrg", mock.Anything, orgID, entityID).Return(newEntity(t), nil)
		orderRepo.On("FindOutstandingByEntity", mock.Anything, orgID, entityID, domainordering.OrderTypeSell).Return(orders, nil)
		accountRepo.On("FindByIDForOrg", mock.Anything, orgID, account.ID).Return(account, nil)
		accountRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*treasury.Account")).Return(nil)
		orderRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ordering.Order")).Return(nil)
		transactionRepo.On("Create", mock.Anything, mock.AnythingOfType("*treasury.Transaction")).Return(nil)

		response, err := service.Sweep(ctx, SweepRequest{
			OrgID:     orgID,
			EntityID:  entityID,
			OrderType: domainordering.OrderTypeSell,
			AccountID: account.ID,
			Amount:    decimal.NewFromInt(60),
		})
		require.NoError(t, err)

		require.Len(t, response.Allocations, 2)
		assert.Equal(t, "SELL-000001", response.Allocations[0].OrderNumber)
		assert.Equal(t, "30.00", response.Allocations[0].Applied)
		assert.True(t, response.Allocations[0].Settled)
		assert.Equal(t, "SELL-000002", response.Allocations[1].OrderNumber)
		assert.Equal(t, "30.00", response.Allocations[1].Applied)
		assert.Equal(t, "20.00", response.Allocations[1].Remaining)
		assert.False(t, response.Allocations[1].Settled)

		// money arrived in the account
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(60)))
		transactionRepo.AssertNumberOfCalls(t, "Create", 2)
		orderRepo.AssertNumberOfCalls(t, "SaveWithLock", 2)
	})

	t.Run("rejects overpayment before touching anything", func(t *testing.T) {
		service, orderRepo, accountRepo, transactionRepo, entityRepo := newSweepFixture(t)

		orders := []domainordering.Order{
			outstandingOrder(t, orgID, entityID, "SELL-000001", 30, 10),
		}

		entityRepo.On("FindByIDForOrg", mock.Anything, orgID, entityID).Return(newEntity(t), nil)
		orderRepo.On("FindOutstandingByEntity", mock.Anything, orgID, entityID, domainordering.OrderTypeSell).Return(orders, nil)

		_, err := service.Sweep(ctx, SweepRequest{
			OrgID:     orgID,
			EntityID:  entityID,
			OrderType: domainordering.OrderTypeSell,
			AccountID: uuid.New(),
			Amount:    decimal.NewFromInt(21),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OVERPAYMENT", domainErr.Code)
		accountRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		transactionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("purchase sweep debits the account and checks its balance", func(t *testing.T) {
		service, orderRepo, accountRepo, _, entityRepo := newSweepFixture(t)

		order := outstandingOrder(t, orgID, entityID, "BUY-000001", 100, 0)
		order.Type = domainordering.OrderTypeBuy
		account, err := treasury.NewAccount(orgID, "Bank", treasury.AccountTypeBank, decimal.NewFromInt(10))
		require.NoError(t, err)

		entityRepo.On("FindByIDForOrg", mock.Anything, orgID, entityID).Return(newEntity(t), nil)
		orderRepo.On("FindOutstandingByEntity", mock.Anything, orgID, entityID, domainordering.OrderTypeBuy).
			Return([]domainordering.Order{order}, nil)
		accountRepo.On("FindByIDForOrg", mock.Anything, orgID, account.ID).Return(account, nil)

		_, err = service.Sweep(ctx, SweepRequest{
			OrgID:     orgID,
			EntityID:  entityID,
			OrderType: domainordering.OrderTypeBuy,
			AccountID: account.ID,
			Amount:    decimal.NewFromInt(50),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_BALANCE", domainErr.Code)
	})

	t.Run("cheque account requires cheque details", func(t *testing.T) {
		service, orderRepo, accountRepo, _, entityRepo := newSweepFixture(t)

		orders := []domainordering.Order{
			outstandingOrder(t, orgID, entityID, "SELL-000001", 50, 0),
		}
		account, err := treasury.NewAccount(orgID, "Cheques", treasury.AccountTypeCheque, decimal.Zero)
		require.NoError(t, err)

		entityRepo.On("FindByIDForOrg", mock.Anything, orgID, entityID).Return(newEntity(t), nil)
		orderRepo.On("FindOutstandingByEntity", mock.Anything, orgID, entityID, domainordering.OrderTypeSell).Return(orders, nil)
		accountRepo.On("FindByIDForOrg", mock.Anything, orgID, account.ID).Return(account, nil)

		_, err = service.Sweep(ctx, SweepRequest{
			OrgID:     orgID,
			EntityID:  entityID,
			OrderType: domainordering.OrderTypeSell,
			AccountID: account.ID,
			Amount:    decimal.NewFromInt(50),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CHEQUE_DETAILS_REQUIRED", domainErr.Code)
	})

	t.Run("duplicate idempotency key is rejected", func(t *testing.T) {
		service, orderRepo, accountRepo, transactionRepo, entityRepo := newSweepFixture(t)

		orders := []domainordering.Order{
			outstandingOrder(t, orgID, entityID, "SELL-000001", 50, 0),
		}
		account, err := treasury.NewAccount(orgID, "Counter", treasury.AccountTypeCashCounter, decimal.Zero)
		require.NoError(t, err)

		entityRepo.On("FindByIDForOrg", mock.Anything, orgID, entityID).Return(newEntity(t), nil)
		orderRepo.On("FindOutstandingByEntity", mock.Anything, orgID, entityID, domainordering.OrderTypeSell).Return(orders, nil)
		accountRepo.On("FindByIDForOrg", mock.Anything, orgID, account.ID).Return(account, nil)
		accountRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)
		orderRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)
		transactionRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		req := SweepRequest{
			OrgID:          orgID,
			EntityID:       entityID,
			OrderType:      domainordering.OrderTypeSell,
			AccountID:      account.ID,
			Amount:         decimal.NewFromInt(50),
			IdempotencyKey: "sweep-abc",
		}

		_, err = service.Sweep(ctx, req)
		require.NoError(t, err)

		_, err = service.Sweep(ctx, req)
		assert.ErrorIs(t, err, shared.ErrDuplicateSubmission)
	})

	t.Run("unknown entity is rejected", func(t *testing.T) {
		service, _, _, _, entityRepo := newSweepFixture(t)

		entityRepo.On("FindByIDForOrg", mock.Anything, orgID, entityID).Return(nil, nil)

		_, err := service.Sweep(ctx, SweepRequest{
			OrgID:     orgID,
			EntityID:  entityID,
			OrderType: domainordering.OrderTypeSell,
			AccountID: uuid.New(),
			Amount:    decimal.NewFromInt(10),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ENTITY_NOT_FOUND", domainErr.Code)
	})
}

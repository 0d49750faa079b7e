package ordering

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karobar/backend/internal/domain/org"
	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/domain/treasury"
)

func submittedOrder(t *testing.T, paid int64) *Order {
	t.Helper()
	draft := newTestDraft(t, OrderTypeSell, org.VatStatusNever)
	entityID := uuid.New()
	draft.SetEntity(entityID)
	require.NoError(t, draft.SetItems([]LineItem{completeItem(100, 1)}))
	bank := newTestAccount(t, draft.OrgID, treasury.AccountTypeBank, 0)

	if paid > 0 {
		_, err := draft.AddPayment(bank, decimal.NewFromInt(paid), nil)
		require.NoError(t, err)
	}

	ctx := context.Background()
	wizard := NewWizard(draft, noStockIssues, fetchAccounts(bank))
	require.NoError(t, wizard.Next(ctx))
	require.NoError(t, wizard.Next(ctx))

	submission, err := wizard.BuildSubmission(uuid.Nil, nil, nil)
	require.NoError(t, err)

	order, err := NewOrderFromSubmission("SELL-000001", submission)
	require.NoError(t, err)
	return order
}

func TestNewOrderFromSubmission(t *testing.T) {
	order := submittedOrder(t, 40)

	assert.Equal(t, "SELL-000001", order.OrderNumber)
	assert.Equal(t, OrderTypeSell, order.Type)
	assert.Len(t, order.Items, 1)
	assert.True(t, order.GrandTotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, order.PaidAmount.Equal(decimal.NewFromInt(40)))
	assert.True(t, order.RemainingAmount().Equal(decimal.NewFromInt(60)))
	assert.Equal(t, 1, order.GetVersion())
}

func TestOrderPaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusUnpaid, submittedOrder(t, 0).PaymentStatus())
	assert.Equal(t, PaymentStatusPartial, submittedOrder(t, 40).PaymentStatus())
	assert.Equal(t, PaymentStatusPaid, submittedOrder(t, 100).PaymentStatus())
}

func TestOrderApplyPayment(t *testing.T) {
	t.Run("accumulates up to the grand total", func(t *testing.T) {
		order := submittedOrder(t, 40)

		require.NoError(t, order.ApplyPayment(decimal.NewFromInt(30)))
		require.NoError(t, order.ApplyPayment(decimal.NewFromInt(30)))

		assert.True(t, order.IsSettled())
		assert.Equal(t, PaymentStatusPaid, order.PaymentStatus())
	})

	t.Run("rejects amounts beyond the remaining balance", func(t *testing.T) {
		order := submittedOrder(t, 40)

		err := order.ApplyPayment(decimal.NewFromInt(61))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OVERPAYMENT", domainErr.Code)
		assert.True(t, order.PaidAmount.Equal(decimal.NewFromInt(40)))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		order := submittedOrder(t, 0)
		assert.Error(t, order.ApplyPayment(decimal.Zero))
	})
}

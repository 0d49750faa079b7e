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

func noStockIssues(context.Context, uuid.UUID, uuid.UUID, int) error {
	return nil
}

func stockExhausted(context.Context, uuid.UUID, uuid.UUID, int) error {
	return shared.ErrInsufficientStock
}

func fetchAccounts(accounts ...*treasury.Account) AccountFetcher {
	return func(_ context.Context, accountID uuid.UUID) (*treasury.Account, error) {
		for _, account := range accounts {
			if account.ID == accountID {
				return account, nil
			}
		}
		return nil, shared.ErrNotFound
	}
}

func TestWizardNext(t *testing.T) {
	ctx := context.Background()

	t.Run("details step needs at least one complete item", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeSell, org.VatStatusNever)
		require.NoError(t, draft.SetItems([]LineItem{{Rate: decimal.NewFromInt(10), Quantity: 1}}))
		wizard := NewWizard(draft, noStockIssues, fetchAccounts())

		err := wizard.Next(ctx)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ITEMS", domainErr.Code)
		assert.Equal(t, StepDetails, draft.Step)
	})

	t.Run("sale details step checks stock", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeSell, org.VatStatusNever)
		require.NoError(t, draft.SetItems([]LineItem{completeItem(10, 5)}))
		wizard := NewWizard(draft, stockExhausted, fetchAccounts())

		err := wizard.Next(ctx)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("purchase details step skips stock checks", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeBuy, org.VatStatusNever)
		draft.SetEntity(uuid.New())
		require.NoError(t, draft.SetItems([]LineItem{completeItem(10, 5)}))
		wizard := NewWizard(draft, stockExhausted, fetchAccounts())

		require.NoError(t, wizard.Next(ctx))
		assert.Equal(t, StepPayment, draft.Step)
	})

	t.Run("partially paid purchase needs a counterparty", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeBuy, org.VatStatusNever)
		require.NoError(t, draft.SetItems([]LineItem{completeItem(100, 1)}))
		wizard := NewWizard(draft, noStockIssues, fetchAccounts())
		require.NoError(t, wizard.Next(ctx))

		err := wizard.Next(ctx)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ENTITY_REQUIRED", domainErr.Code)
	})

	t.Run("payment step revalidates purchase account balances", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeBuy, org.VatStatusNever)
		draft.SetEntity(uuid.New())
		require.NoError(t, draft.SetItems([]LineItem{completeItem(100, 1)}))
		account := newTestAccount(t, draft.OrgID, treasury.AccountTypeBank, 100)
		wizard := NewWizard(draft, noStockIssues, fetchAccounts(account))

		require.NoError(t, wizard.Next(ctx))
		_, err := draft.AddPayment(account, decimal.NewFromInt(80), nil)
		require.NoError(t, err)

		// the balance moved after the payment row was added
		require.NoError(t, account.Debit(decimal.NewFromInt(50)))

		err = wizard.Next(ctx)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_BALANCE", domainErr.Code)
	})

	t.Run("walks forward to summary and back without losing data", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeSell, org.VatStatusNever)
		require.NoError(t, draft.SetItems([]LineItem{completeItem(100, 1)}))
		wizard := NewWizard(draft, noStockIssues, fetchAccounts())

		require.NoError(t, wizard.Next(ctx))
		require.NoError(t, wizard.Next(ctx))
		assert.Equal(t, StepSummary, draft.Step)

		require.NoError(t, wizard.Back())
		require.NoError(t, wizard.Back())
		assert.Equal(t, StepDetails, draft.Step)
		assert.Len(t, draft.Items, 1)

		assert.Error(t, wizard.Back())
	})
}

func TestBuildSubmission(t *testing.T) {
	ctx := context.Background()

	advanceToSummary := func(t *testing.T, wizard *Wizard) {
		t.Helper()
		require.NoError(t, wizard.Next(ctx))
		require.NoError(t, wizard.Next(ctx))
	}

	t.Run("only allowed from the summary step", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeSell, org.VatStatusNever)
		wizard := NewWizard(draft, noStockIssues, fetchAccounts())

		_, err := wizard.BuildSubmission(uuid.New(), nil, nil)
		assert.Error(t, err)
	})

	t.Run("walk-in sale substitutes a full cash payment", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeSell, org.VatStatusNever)
		require.NoError(t, draft.SetItems([]LineItem{completeItem(150, 1)}))
		wizard := NewWizard(draft, noStockIssues, fetchAccounts())
		advanceToSummary(t, wizard)

		walkIn := uuid.New()
		cash := newTestAccount(t, draft.OrgID, treasury.AccountTypeCashCounter, 0)

		submission, err := wizard.BuildSubmission(walkIn, cash, nil)
		require.NoError(t, err)

		assert.Equal(t, walkIn, submission.EntityID)
		require.Len(t, submission.Payments, 1)
		assert.Equal(t, cash.ID, submission.Payments[0].AccountID)
		assert.True(t, submission.Payments[0].Amount.Equal(decimal.NewFromInt(150)))
		assert.True(t, submission.Breakdown.Remaining.IsZero())
	})

	t.Run("walk-in sale without a cash counter fails", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeSell, org.VatStatusNever)
		require.NoError(t, draft.SetItems([]LineItem{completeItem(150, 1)}))
		wizard := NewWizard(draft, noStockIssues, fetchAccounts())
		advanceToSummary(t, wizard)

		_, err := wizard.BuildSubmission(uuid.New(), nil, nil)
		assert.Error(t, err)
	})

	t.Run("explicitly selected walk-in entity still settles in cash", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeSell, org.VatStatusNever)
		walkIn := uuid.New()
		draft.SetEntity(walkIn)
		require.NoError(t, draft.SetItems([]LineItem{completeItem(150, 1)}))
		bank := newTestAccount(t, draft.OrgID, treasury.AccountTypeBank, 0)
		wizard := NewWizard(draft, noStockIssues, fetchAccounts(bank))

		_, err := draft.AddPayment(bank, decimal.NewFromInt(40), nil)
		require.NoError(t, err)
		advanceToSummary(t, wizard)

		cash := newTestAccount(t, draft.OrgID, treasury.AccountTypeCashCounter, 0)
		submission, err := wizard.BuildSubmission(walkIn, cash, nil)
		require.NoError(t, err)

		assert.Equal(t, walkIn, submission.EntityID)
		require.Len(t, submission.Payments, 1)
		assert.Equal(t, cash.ID, submission.Payments[0].AccountID)
		assert.True(t, submission.Payments[0].Amount.Equal(decimal.NewFromInt(150)))
		assert.True(t, submission.Breakdown.Remaining.IsZero())
	})

	t.Run("named entity keeps recorded payments", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeSell, org.VatStatusNever)
		entityID := uuid.New()
		draft.SetEntity(entityID)
		require.NoError(t, draft.SetItems([]LineItem{completeItem(100, 1)}))
		bank := newTestAccount(t, draft.OrgID, treasury.AccountTypeBank, 0)
		wizard := NewWizard(draft, noStockIssues, fetchAccounts(bank))

		_, err := draft.AddPayment(bank, decimal.NewFromInt(40), nil)
		require.NoError(t, err)
		advanceToSummary(t, wizard)

		submission, err := wizard.BuildSubmission(uuid.New(), nil, nil)
		require.NoError(t, err)

		assert.Equal(t, entityID, submission.EntityID)
		require.Len(t, submission.Payments, 1)
		assert.True(t, submission.Breakdown.Remaining.Equal(decimal.NewFromInt(60)))
	})

	t.Run("only positive entity-borne charges travel onto the order", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeBuy, org.VatStatusNever)
		draft.SetEntity(uuid.New())
		require.NoError(t, draft.SetItems([]LineItem{completeItem(100, 1)}))

		kept := draft.AddCharge()
		require.NoError(t, draft.Charges.SetLabel(kept.ID, "Delivery"))
		require.NoError(t, draft.Charges.SetAmount(kept.ID, decimal.NewFromInt(5), decimal.NewFromInt(100)))

		vendor := draft.AddCharge()
		require.NoError(t, draft.Charges.SetAmount(vendor.ID, decimal.NewFromInt(15), decimal.NewFromInt(100)))
		require.NoError(t, draft.Charges.SetBearer(vendor.ID, false))

		draft.AddCharge() // left blank

		wizard := NewWizard(draft, noStockIssues, fetchAccounts())
		advanceToSummary(t, wizard)

		funded := newTestAccount(t, draft.OrgID, treasury.AccountTypeMisc, 50)
		submission, err := wizard.BuildSubmission(uuid.Nil, nil, funded)
		require.NoError(t, err)

		require.Len(t, submission.Charges, 1)
		assert.Equal(t, "Delivery", submission.Charges[0].Label)
		assert.True(t, submission.VendorChargeTotal.Equal(decimal.NewFromInt(15)))
	})

	t.Run("business-borne charges need a funded settlement account", func(t *testing.T) {
		draft := newTestDraft(t, OrderTypeBuy, org.VatStatusNever)
		draft.SetEntity(uuid.New())
		require.NoError(t, draft.SetItems([]LineItem{completeItem(100, 1)}))
		charge := draft.AddCharge()
		require.NoError(t, draft.Charges.SetAmount(charge.ID, decimal.NewFromInt(15), decimal.NewFromInt(100)))
		require.NoError(t, draft.Charges.SetBearer(charge.ID, false))

		wizard := NewWizard(draft, noStockIssues, fetchAccounts())
		advanceToSummary(t, wizard)

		_, err := wizard.BuildSubmission(uuid.Nil, nil, nil)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_REQUIRED", domainErr.Code)

		broke := newTestAccount(t, draft.OrgID, treasury.AccountTypeMisc, 5)
		_, err = wizard.BuildSubmission(uuid.Nil, nil, broke)
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_BALANCE", domainErr.Code)

		funded := newTestAccount(t, draft.OrgID, treasury.AccountTypeMisc, 50)
		submission, err := wizard.BuildSubmission(uuid.Nil, nil, funded)
		require.NoError(t, err)
		assert.True(t, submission.VendorChargeTotal.Equal(decimal.NewFromInt(15)))
		assert.Equal(t, funded, submission.VendorSettlement)
	})
}

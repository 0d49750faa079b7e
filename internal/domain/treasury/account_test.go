package treasury

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karobar/backend/internal/domain/shared"
)

func TestAccountType(t *testing.T) {
	t.Run("IsValid returns true for valid types", func(t *testing.T) {
		validTypes := []AccountType{
			AccountTypeBank,
			AccountTypeBankOD,
			AccountTypeCashCounter,
			AccountTypeCheque,
			AccountTypeMisc,
		}
		for _, at := range validTypes {
			assert.True(t, at.IsValid(), "expected %s to be valid", at)
		}
	})

	t.Run("IsValid returns false for invalid types", func(t *testing.T) {
		assert.False(t, AccountType("WALLET").IsValid())
	})

	t.Run("only cheque accounts require cheque details", func(t *testing.T) {
		assert.True(t, AccountTypeCheque.RequiresChequeDetails())
		assert.False(t, AccountTypeBank.RequiresChequeDetails())
		assert.False(t, AccountTypeCashCounter.RequiresChequeDetails())
	})
}

func TestNewAccount(t *testing.T) {
	orgID := uuid.New()

	t.Run("creates account with valid inputs", func(t *testing.T) {
		account, err := NewAccount(orgID, "Main Counter", AccountTypeCashCounter, decimal.NewFromInt(5000))
		require.NoError(t, err)

		assert.Equal(t, orgID, account.OrgID)
		assert.Equal(t, "Main Counter", account.Name)
		assert.Equal(t, AccountTypeCashCounter, account.Type)
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, 1, account.GetVersion())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewAccount(orgID, "", AccountTypeBank, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewAccount(orgID, "X", AccountType("WALLET"), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects negative opening balance", func(t *testing.T) {
		_, err := NewAccount(orgID, "X", AccountTypeBank, decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestAccountDebitCredit(t *testing.T) {
	newAccount := func(t *testing.T, balance int64) *Account {
		t.Helper()
		account, err := NewAccount(uuid.New(), "Bank", AccountTypeBank, decimal.NewFromInt(balance))
		require.NoError(t, err)
		return account
	}

	t.Run("debit reduces the balance", func(t *testing.T) {
		account := newAccount(t, 100)
		require.NoError(t, account.Debit(decimal.NewFromInt(40)))
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(60)))
	})

	t.Run("debit to exactly zero is allowed", func(t *testing.T) {
		account := newAccount(t, 100)
		require.NoError(t, account.Debit(decimal.NewFromInt(100)))
		assert.True(t, account.Balance.IsZero())
	})

	t.Run("debit below zero is rejected", func(t *testing.T) {
		account := newAccount(t, 100)

		err := account.Debit(decimal.NewFromInt(101))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_BALANCE", domainErr.Code)
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(100)))
	})

	t.Run("credit increases the balance", func(t *testing.T) {
		account := newAccount(t, 10)
		require.NoError(t, account.Credit(decimal.NewFromInt(15)))
		assert.True(t, account.Balance.Equal(decimal.NewFromInt(25)))
	})

	t.Run("non-positive amounts are rejected", func(t *testing.T) {
		account := newAccount(t, 10)
		assert.Error(t, account.Debit(decimal.Zero))
		assert.Error(t, account.Credit(decimal.NewFromInt(-5)))
	})
}

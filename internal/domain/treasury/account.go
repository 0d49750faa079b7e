package treasury

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/shared"
)

// AccountType classifies where an organization keeps money
type AccountType string

const (
	AccountTypeBank        AccountType = "BANK"
	AccountTypeBankOD      AccountType = "BANK_OD"
	AccountTypeCashCounter AccountType = "CASH_COUNTER"
	AccountTypeCheque      AccountType = "CHEQUE"
	AccountTypeMisc        AccountType = "MISC"
)

// IsValid checks if the type is a known AccountType
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeBank, AccountTypeBankOD, AccountTypeCashCounter, AccountTypeCheque, AccountTypeMisc:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// RequiresChequeDetails reports whether payments from this account
// carry cheque metadata
func (t AccountType) RequiresChequeDetails() bool {
	return t == AccountTypeCheque
}

// Account represents a money-holding account of the organization.
// The balance must never go negative: debits are rejected rather than
// letting the account overdraw.
type Account struct {
	shared.OrgAggregateRoot
	Name    string
	Type    AccountType
	Balance decimal.Decimal
}

// NewAccount creates a new account
func NewAccount(orgID uuid.UUID, name string, accountType AccountType, openingBalance decimal.Decimal) (*Account, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", fmt.Sprintf("Unknown account type %q", accountType))
	}
	if openingBalance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BALANCE", "Opening balance cannot be negative")
	}

	return &Account{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Type:             accountType,
		Balance:          openingBalance,
	}, nil
}

// CanCover reports whether the account balance covers the given amount
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Debit withdraws the amount from the account
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Debit amount must be positive")
	}
	if !a.CanCover(amount) {
		return shared.NewDomainError(
			"INSUFFICIENT_BALANCE",
			fmt.Sprintf("Insufficient balance in %s: available %s, required %s",
				a.Name, a.Balance.StringFixed(2), amount.StringFixed(2)),
		)
	}

	a.Balance = a.Balance.Sub(amount)
	a.UpdatedAt = time.Now()
	return nil
}

// Credit deposits the amount into the account
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}

	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = time.Now()
	return nil
}

// TableName returns the database table name
func (Account) TableName() string {
	return "accounts"
}

package treasury

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/shared"
)

// TransactionType indicates the direction of an account transaction
type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "DEBIT"
	TransactionTypeCredit TransactionType = "CREDIT"
)

// IsValid checks if the type is a known TransactionType
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// Transaction records money moving in or out of an account.
// Transactions tied to an order carry the order ID so payments can be
// reconciled against the order's outstanding amount.
type Transaction struct {
	shared.OrgAggregateRoot
	AccountID   uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID     *uuid.UUID
	Amount      decimal.Decimal
	Type        TransactionType
	Description string
	// ChequeNumber is set for cheque-backed payments
	ChequeNumber string
	ChequeIssuer string
	ChequeBank   string
	ChequeDate   *time.Time
}

// NewTransaction creates a new account transaction
func NewTransaction(orgID, accountID uuid.UUID, amount decimal.Decimal, txType TransactionType, description string) (*Transaction, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transaction type must be DEBIT or CREDIT")
	}

	return &Transaction{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		AccountID:        accountID,
		Amount:           amount,
		Type:             txType,
		Description:      description,
	}, nil
}

// WithOrder links the transaction to an order
func (t *Transaction) WithOrder(orderID uuid.UUID) *Transaction {
	t.OrderID = &orderID
	return t
}

// WithCheque attaches cheque metadata
func (t *Transaction) WithCheque(issuer, bank, number string) *Transaction {
	t.ChequeIssuer = issuer
	t.ChequeBank = bank
	t.ChequeNumber = number
	return t
}

// WithChequeDate records the date written on the cheque. A zero date is
// treated as not provided.
func (t *Transaction) WithChequeDate(date time.Time) *Transaction {
	if !date.IsZero() {
		t.ChequeDate = &date
	}
	return t
}

// TableName returns the database table name
func (Transaction) TableName() string {
	return "account_transactions"
}

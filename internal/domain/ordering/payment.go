package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/shared"
	"github.com/karobar/backend/internal/domain/treasury"
)

// ChequeDetails carries the metadata of a cheque payment
type ChequeDetails struct {
	Issuer string    `json:"issuer"`
	Bank   string    `json:"bank"`
	Number string    `json:"number"`
	Date   time.Time `json:"date"`
}

// Payment is one payment row of a draft: an amount drawn from or
// deposited into one of the organization's accounts. Cheque accounts
// additionally carry cheque metadata.
type Payment struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Cheque    *ChequeDetails  `json:"cheque,omitempty"`
}

// NewPayment creates a payment row against the given account
func NewPayment(account *treasury.Account, amount decimal.Decimal, cheque *ChequeDetails) (Payment, error) {
	if account == nil {
		return Payment{}, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Payment account not found")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return Payment{}, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if account.Type.RequiresChequeDetails() {
		if cheque == nil || cheque.Number == "" {
			return Payment{}, shared.NewDomainError("CHEQUE_DETAILS_REQUIRED", "Cheque payments require cheque details")
		}
	} else {
		cheque = nil
	}

	return Payment{
		ID:        uuid.New(),
		AccountID: account.ID,
		Amount:    amount,
		Cheque:    cheque,
	}, nil
}

// PaidToAccount sums the payments in the slice drawn against one account
func PaidToAccount(payments []Payment, accountID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, payment := range payments {
		if payment.AccountID == accountID {
			total = total.Add(payment.Amount)
		}
	}
	return total
}

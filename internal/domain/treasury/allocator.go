package treasury

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karobar/backend/internal/domain/shared"
)

// OutstandingOrder is the allocator's view of an order that still owes money.
// Callers supply orders sorted oldest-first; the allocator preserves that order.
type OutstandingOrder struct {
	OrderID   uuid.UUID
	Remaining decimal.Decimal
}

// Allocation is one slice of a swept payment applied to a single order
type Allocation struct {
	OrderID uuid.UUID
	Amount  decimal.Decimal
}

// AllocatePayment spreads a lump payment across outstanding orders,
// oldest first. Each order receives min(pool, remaining) until the pool
// is exhausted. A payment larger than the total outstanding amount is
// rejected rather than silently dropping the remainder.
func AllocatePayment(amount decimal.Decimal, orders []OutstandingOrder) ([]Allocation, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	pool := amount
	allocations := make([]Allocation, 0, len(orders))

	for _, order := range orders {
		if pool.IsZero() {
			break
		}
		if order.Remaining.LessThanOrEqual(decimal.Zero) {
			continue
		}

		slice := decimal.Min(pool, order.Remaining)
		allocations = append(allocations, Allocation{
			OrderID: order.OrderID,
			Amount:  slice,
		})
		pool = pool.Sub(slice)
	}

	if pool.IsPositive() {
		return nil, shared.NewDomainError(
			"OVERPAYMENT",
			fmt.Sprintf("Payment exceeds outstanding amount by %s", pool.StringFixed(2)),
		)
	}

	return allocations, nil
}

// TotalAllocated sums the amounts of a set of allocations
func TotalAllocated(allocations []Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocations {
		total = total.Add(a.Amount)
	}
	return total
}

package ordering

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeItem(rate float64, quantity int) LineItem {
	return LineItem{
		ProductID: uuid.New(),
		VariantID: uuid.New(),
		Rate:      decimal.NewFromFloat(rate),
		Quantity:  quantity,
	}
}

func fixedCharge(amount float64, bearedByEntity bool) Charge {
	return Charge{
		ID:             uuid.New(),
		Type:           ChargeTypeFixed,
		Amount:         decimal.NewFromFloat(amount),
		BearedByEntity: bearedByEntity,
	}
}

func percentageCharge(percentage float64, bearedByEntity bool) Charge {
	return Charge{
		ID:             uuid.New(),
		Type:           ChargeTypePercentage,
		Percentage:     decimal.NewFromFloat(percentage),
		BearedByEntity: bearedByEntity,
	}
}

func TestSubTotal(t *testing.T) {
	t.Run("sums complete items only", func(t *testing.T) {
		items := []LineItem{
			completeItem(100, 2),
			completeItem(25, 2),
			{Rate: decimal.NewFromInt(999), Quantity: 3}, // no product selected
		}
		assert.True(t, SubTotal(items).Equal(decimal.NewFromInt(250)))
	})

	t.Run("ignores non-positive quantities", func(t *testing.T) {
		items := []LineItem{
			completeItem(100, 0),
			completeItem(50, 1),
		}
		assert.True(t, SubTotal(items).Equal(decimal.NewFromInt(50)))
	})

	t.Run("empty items give zero", func(t *testing.T) {
		assert.True(t, SubTotal(nil).IsZero())
	})
}

func TestCalculatePrice(t *testing.T) {
	t.Run("subtotal minus discount plus fixed charge", func(t *testing.T) {
		items := []LineItem{completeItem(125, 2)} // 250
		charges := []Charge{fixedCharge(10, true)}

		breakdown := CalculatePrice(items, decimal.NewFromInt(20), charges, nil)

		assert.True(t, breakdown.SubTotal.Equal(decimal.NewFromInt(250)))
		assert.True(t, breakdown.TaxableBase.Equal(decimal.NewFromInt(230)))
		assert.True(t, breakdown.EntityChargeTotal.Equal(decimal.NewFromInt(10)))
		assert.True(t, breakdown.GrandTotal.Equal(decimal.NewFromInt(240)))
		assert.True(t, breakdown.Remaining.Equal(decimal.NewFromInt(240)))
	})

	t.Run("percentage charge applies to discounted base", func(t *testing.T) {
		items := []LineItem{completeItem(100, 1)}
		charges := []Charge{percentageCharge(13, true)}

		breakdown := CalculatePrice(items, decimal.NewFromInt(20), charges, nil)

		// 13% of 80, not of 100
		assert.True(t, breakdown.EntityChargeTotal.Equal(decimal.NewFromFloat(10.4)))
		assert.True(t, breakdown.GrandTotal.Equal(decimal.NewFromFloat(90.4)))
	})

	t.Run("vendor percentage charge applies to raw subtotal", func(t *testing.T) {
		items := []LineItem{completeItem(100, 1)}
		charges := []Charge{percentageCharge(10, false)}

		breakdown := CalculatePrice(items, decimal.NewFromInt(20), charges, nil)

		assert.True(t, breakdown.VendorChargeTotal.Equal(decimal.NewFromInt(10)))
		// vendor charges stay out of the grand total
		assert.True(t, breakdown.GrandTotal.Equal(decimal.NewFromInt(80)))
	})

	t.Run("mixed bearers split correctly", func(t *testing.T) {
		items := []LineItem{completeItem(200, 1)}
		charges := []Charge{
			percentageCharge(10, true),  // 10% of 150 = 15
			percentageCharge(5, false),  // 5% of 200 = 10
			fixedCharge(25, true),       // 25
			fixedCharge(7, false),       // 7
		}

		breakdown := CalculatePrice(items, decimal.NewFromInt(50), charges, nil)

		assert.True(t, breakdown.EntityChargeTotal.Equal(decimal.NewFromInt(40)))
		assert.True(t, breakdown.VendorChargeTotal.Equal(decimal.NewFromInt(17)))
		assert.True(t, breakdown.GrandTotal.Equal(decimal.NewFromInt(190)))
	})

	t.Run("oversized discount clamps base and total to zero", func(t *testing.T) {
		items := []LineItem{completeItem(50, 1)}

		breakdown := CalculatePrice(items, decimal.NewFromInt(80), nil, nil)

		assert.True(t, breakdown.TaxableBase.IsZero())
		assert.True(t, breakdown.GrandTotal.IsZero())
		assert.True(t, breakdown.Remaining.IsZero())
	})

	t.Run("payments reduce remaining and clamp at zero", func(t *testing.T) {
		items := []LineItem{completeItem(100, 1)}
		payments := []Payment{
			{ID: uuid.New(), AccountID: uuid.New(), Amount: decimal.NewFromInt(60)},
			{ID: uuid.New(), AccountID: uuid.New(), Amount: decimal.NewFromInt(60)},
		}

		breakdown := CalculatePrice(items, decimal.Zero, nil, payments)

		assert.True(t, breakdown.TotalPaid.Equal(decimal.NewFromInt(120)))
		assert.True(t, breakdown.Remaining.IsZero())
	})
}

func TestChargeRoundTrip(t *testing.T) {
	t.Run("fixed to percentage and back preserves amount", func(t *testing.T) {
		base := decimal.NewFromInt(230)
		list := NewChargeList()
		charge := list.Add()

		require.NoError(t, list.SetAmount(charge.ID, decimal.NewFromInt(10), base))
		require.NoError(t, list.SetType(charge.ID, ChargeTypePercentage, base))
		require.NoError(t, list.SetType(charge.ID, ChargeTypeFixed, base))

		assert.True(t, list.Get(charge.ID).Amount.Equal(decimal.NewFromInt(10)))
	})

	t.Run("percentage recomputes when base moves", func(t *testing.T) {
		list := NewChargeList()
		charge := list.Add()
		base := decimal.NewFromInt(100)

		assert.NoError(t, list.SetType(charge.ID, ChargeTypePercentage, base))
		assert.NoError(t, list.SetPercentage(charge.ID, decimal.NewFromInt(10), base))
		assert.True(t, list.Get(charge.ID).Amount.Equal(decimal.NewFromInt(10)))

		changed := list.RecalculateOnBaseChange(decimal.NewFromInt(250))
		assert.True(t, changed)
		assert.True(t, list.Get(charge.ID).Amount.Equal(decimal.NewFromInt(25)))
	})
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateLineItem_ExclusiveMode(t *testing.T) {
	comp, err := CalculateLineItem(LineItemInput{
		Name:            "Widget",
		Quantity:        10,
		UnitPrice:       100,
		DiscountPercent: 10,
		GSTRate:         18,
	})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, comp.BaseAmount)
	assert.Equal(t, 100.0, comp.DiscountAmount)
	assert.Equal(t, 900.0, comp.TaxableAmount)
	assert.Equal(t, 81.0, comp.CGST)
	assert.Equal(t, 81.0, comp.SGST)
	assert.Equal(t, 0.0, comp.IGST)
	assert.Equal(t, 162.0, comp.TotalTax)
	assert.Equal(t, 1062.0, comp.ItemAmount)
}

func TestCalculateLineItem_InclusiveMode(t *testing.T) {
	// Price already includes tax: discounted amount 900 backs out to a
	// taxable base of 900 / 1.18.
	comp, err := CalculateLineItem(LineItemInput{
		Name:            "Widget",
		Quantity:        10,
		UnitPrice:       100,
		DiscountPercent: 10,
		GSTRate:         18,
		TaxInclusive:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, 762.71, comp.TaxableAmount)
	assert.Equal(t, 68.64, comp.CGST)
	assert.Equal(t, 68.64, comp.SGST)
	assert.Equal(t, 900.0, comp.ItemAmount)
}

func TestCalculateLineItem_ZeroTaxRate(t *testing.T) {
	comp, err := CalculateLineItem(LineItemInput{
		Name:      "Untaxed",
		Quantity:  3,
		UnitPrice: 50,
	})
	require.NoError(t, err)

	assert.Equal(t, 150.0, comp.TaxableAmount)
	assert.Equal(t, 0.0, comp.TotalTax)
	assert.Equal(t, 150.0, comp.ItemAmount)
}

func TestCalculateLineItem_ExplicitDiscountAmountWins(t *testing.T) {
	comp, err := CalculateLineItem(LineItemInput{
		Name:            "Widget",
		Quantity:        1,
		UnitPrice:       200,
		DiscountPercent: 10,
		DiscountAmount:  50,
		GSTRate:         18,
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, comp.DiscountAmount)
	assert.Equal(t, 150.0, comp.TaxableAmount)
}

func TestCalculateLineItem_ExplicitComponentRates(t *testing.T) {
	comp, err := CalculateLineItem(LineItemInput{
		Name:      "Interstate",
		Quantity:  1,
		UnitPrice: 1000,
		IGSTRate:  18,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, comp.CGST)
	assert.Equal(t, 0.0, comp.SGST)
	assert.Equal(t, 180.0, comp.IGST)
	assert.Equal(t, 1180.0, comp.ItemAmount)
}

func TestCalculateLineItem_RejectsInvalidLines(t *testing.T) {
	_, err := CalculateLineItem(LineItemInput{Name: "Bad", Quantity: 0, UnitPrice: 10})
	assert.Error(t, err)

	_, err = CalculateLineItem(LineItemInput{Name: "Bad", Quantity: 1, UnitPrice: -5})
	assert.Error(t, err)
}

// Computing exclusive-mode tax, then feeding the resulting gross price back
// through inclusive mode, must agree on the item amount within a paisa.
func TestTaxRoundTrip(t *testing.T) {
	cases := []struct {
		qty, price, discountPct, rate float64
	}{
		{10, 100, 10, 18},
		{1, 999.99, 0, 18},
		{7, 33.33, 5, 12},
		{3, 149.50, 2.5, 28},
		{100, 1.01, 0, 5},
	}

	for _, tc := range cases {
		excl, err := CalculateLineItem(LineItemInput{
			Name:            "RT",
			Quantity:        1,
			UnitPrice:       tc.qty * tc.price,
			DiscountPercent: tc.discountPct,
			GSTRate:         tc.rate,
		})
		require.NoError(t, err)

		incl, err := CalculateLineItem(LineItemInput{
			Name:         "RT",
			Quantity:     1,
			UnitPrice:    excl.ItemAmount,
			GSTRate:      tc.rate,
			TaxInclusive: true,
		})
		require.NoError(t, err)

		assert.InDelta(t, excl.ItemAmount, incl.ItemAmount, 0.01,
			"round trip mismatch for qty=%v price=%v rate=%v", tc.qty, tc.price, tc.rate)
	}
}

func TestAccumulateTotals(t *testing.T) {
	lineA, err := CalculateLineItem(LineItemInput{Name: "A", Quantity: 10, UnitPrice: 100, DiscountPercent: 10, GSTRate: 18})
	require.NoError(t, err)
	lineB, err := CalculateLineItem(LineItemInput{Name: "B", Quantity: 2, UnitPrice: 49.99, GSTRate: 12})
	require.NoError(t, err)

	totals := AccumulateTotals([]LineComputation{lineA, lineB}, 0, false)

	assert.Equal(t, Round2(lineA.TaxableAmount+lineB.TaxableAmount), totals.Subtotal)
	assert.Equal(t, Round2(lineA.TotalTax+lineB.TotalTax), totals.TotalTax)
	assert.Equal(t, Round2(lineA.ItemAmount+lineB.ItemAmount), totals.FinalTotal)
	assert.Equal(t, 0.0, totals.RoundOff)
}

func TestAccumulateTotals_RoundOff(t *testing.T) {
	line, err := CalculateLineItem(LineItemInput{Name: "A", Quantity: 1, UnitPrice: 99.60, GSTRate: 0})
	require.NoError(t, err)

	// Round-off applies only when explicitly enabled.
	totals := AccumulateTotals([]LineComputation{line}, 0.40, true)
	assert.Equal(t, 100.0, totals.FinalTotal)
	assert.Equal(t, 0.40, totals.RoundOff)

	totals = AccumulateTotals([]LineComputation{line}, 0.40, false)
	assert.Equal(t, 99.60, totals.FinalTotal)
	assert.Equal(t, 0.0, totals.RoundOff)
}

func TestRound2_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, -0.13, Round2(-0.125))
	assert.Equal(t, 1.0, Round2(0.995))
}

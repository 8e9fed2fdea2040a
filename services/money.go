// services/money.go
package services

import (
	"bizbooks-backend/utils"

	"github.com/shopspring/decimal"
)

// LineItemInput is one priced line before tax computation. Either the flat
// GSTRate or explicit component rates may be supplied; when only GSTRate is
// given it is split evenly between CGST and SGST (intra-state).
type LineItemInput struct {
	Name            string
	Quantity        float64
	UnitPrice       float64
	DiscountPercent float64
	DiscountAmount  float64
	GSTRate         float64
	CGSTRate        float64
	SGSTRate        float64
	IGSTRate        float64
	TaxInclusive    bool
}

// LineComputation is the full per-line tax breakdown. Every field is
// rounded to 2 decimals, half away from zero.
type LineComputation struct {
	BaseAmount     float64
	DiscountAmount float64
	TaxableAmount  float64
	CGST           float64
	SGST           float64
	IGST           float64
	TotalTax       float64
	ItemAmount     float64
	CGSTRate       float64
	SGSTRate       float64
	IGSTRate       float64
}

// DocumentTotals is the field-wise sum of line computations plus the
// optional round-off adjustment.
type DocumentTotals struct {
	Subtotal      float64
	TotalDiscount float64
	TotalCGST     float64
	TotalSGST     float64
	TotalIGST     float64
	TotalTax      float64
	RoundOff      float64
	FinalTotal    float64
}

// Round2 rounds a monetary value to 2 decimals, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CalculateLineItem computes the tax breakdown for one line under the
// given tax-inclusion mode.
//
// Inclusive mode treats the discounted amount as already containing tax:
// the taxable amount is backed out by dividing by (1 + rate/100) and the
// line amount stays unchanged. Exclusive mode taxes the discounted amount
// and adds the tax on top.
func CalculateLineItem(in LineItemInput) (LineComputation, error) {
	if in.Quantity <= 0 {
		return LineComputation{}, utils.NewValidationError("invalid line item %q: quantity must be greater than 0", in.Name)
	}
	if in.UnitPrice < 0 {
		return LineComputation{}, utils.NewValidationError("invalid line item %q: unit price cannot be negative", in.Name)
	}

	cgstRate, sgstRate, igstRate := resolveTaxRates(in)
	totalRate := decimal.NewFromFloat(cgstRate).
		Add(decimal.NewFromFloat(sgstRate)).
		Add(decimal.NewFromFloat(igstRate))

	qty := decimal.NewFromFloat(in.Quantity)
	price := decimal.NewFromFloat(in.UnitPrice)
	hundred := decimal.NewFromInt(100)

	baseAmount := round2(qty.Mul(price))

	discount := decimal.NewFromFloat(in.DiscountAmount)
	if discount.IsZero() && in.DiscountPercent != 0 {
		discount = baseAmount.Mul(decimal.NewFromFloat(in.DiscountPercent)).Div(hundred)
	}
	discount = round2(discount)

	afterDiscount := baseAmount.Sub(discount)

	var taxable, itemAmount decimal.Decimal
	if in.TaxInclusive {
		multiplier := decimal.NewFromInt(1).Add(totalRate.Div(hundred))
		taxable = round2(afterDiscount.Div(multiplier))
		itemAmount = round2(afterDiscount)
	} else {
		taxable = round2(afterDiscount)
	}

	cgst := round2(taxable.Mul(decimal.NewFromFloat(cgstRate)).Div(hundred))
	sgst := round2(taxable.Mul(decimal.NewFromFloat(sgstRate)).Div(hundred))
	igst := round2(taxable.Mul(decimal.NewFromFloat(igstRate)).Div(hundred))
	totalTax := round2(cgst.Add(sgst).Add(igst))

	if !in.TaxInclusive {
		itemAmount = round2(taxable.Add(totalTax))
	}

	return LineComputation{
		BaseAmount:     baseAmount.InexactFloat64(),
		DiscountAmount: discount.InexactFloat64(),
		TaxableAmount:  taxable.InexactFloat64(),
		CGST:           cgst.InexactFloat64(),
		SGST:           sgst.InexactFloat64(),
		IGST:           igst.InexactFloat64(),
		TotalTax:       totalTax.InexactFloat64(),
		ItemAmount:     itemAmount.InexactFloat64(),
		CGSTRate:       cgstRate,
		SGSTRate:       sgstRate,
		IGSTRate:       igstRate,
	}, nil
}

// resolveTaxRates picks explicit component rates when any are supplied,
// otherwise splits the flat GST rate evenly between CGST and SGST. The
// IGST path is carried for inter-state documents with explicit rates but
// the flat split never activates it.
func resolveTaxRates(in LineItemInput) (cgst, sgst, igst float64) {
	if in.CGSTRate != 0 || in.SGSTRate != 0 || in.IGSTRate != 0 {
		return in.CGSTRate, in.SGSTRate, in.IGSTRate
	}
	half := decimal.NewFromFloat(in.GSTRate).Div(decimal.NewFromInt(2)).InexactFloat64()
	return half, half, 0
}

// AccumulateTotals sums line computations field-wise, rounding each total
// before it feeds the final figure. The round-off adjustment is applied
// only when enabled.
func AccumulateTotals(lines []LineComputation, roundOff float64, applyRoundOff bool) DocumentTotals {
	var subtotal, totalDiscount, totalCGST, totalSGST, totalIGST, totalTax, sumItems decimal.Decimal
	for _, line := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(line.TaxableAmount))
		totalDiscount = totalDiscount.Add(decimal.NewFromFloat(line.DiscountAmount))
		totalCGST = totalCGST.Add(decimal.NewFromFloat(line.CGST))
		totalSGST = totalSGST.Add(decimal.NewFromFloat(line.SGST))
		totalIGST = totalIGST.Add(decimal.NewFromFloat(line.IGST))
		totalTax = totalTax.Add(decimal.NewFromFloat(line.TotalTax))
		sumItems = sumItems.Add(decimal.NewFromFloat(line.ItemAmount))
	}

	adjustment := decimal.Zero
	if applyRoundOff {
		adjustment = round2(decimal.NewFromFloat(roundOff))
	}
	finalTotal := round2(round2(sumItems).Add(adjustment))

	return DocumentTotals{
		Subtotal:      round2(subtotal).InexactFloat64(),
		TotalDiscount: round2(totalDiscount).InexactFloat64(),
		TotalCGST:     round2(totalCGST).InexactFloat64(),
		TotalSGST:     round2(totalSGST).InexactFloat64(),
		TotalIGST:     round2(totalIGST).InexactFloat64(),
		TotalTax:      round2(totalTax).InexactFloat64(),
		RoundOff:      adjustment.InexactFloat64(),
		FinalTotal:    finalTotal.InexactFloat64(),
	}
}

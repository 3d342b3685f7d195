// Package money computes line and invoice totals. All arithmetic is done
// with decimals; currency amounts and VAT percentages are carried with two
// fractional digits. The functions here are pure.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/tkallas/arved/internal/rules"
)

// Line is the monetary view of one invoice line. LineTotal is the stored
// value, which stays the source of truth for invoice totals once persisted.
type Line struct {
	Qty       decimal.Decimal
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Totals is the result of an invoice totals computation.
type Totals struct {
	Subtotal  decimal.Decimal
	VATAmount decimal.Decimal
	Total     decimal.Decimal
}

// LineTotal returns qty * unitPrice rounded to two fractional digits.
// Fails when qty is not strictly positive or unitPrice is negative.
func LineTotal(qty, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, rules.New(rules.KindInvalidAmount, "quantity must be greater than zero")
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, rules.New(rules.KindInvalidAmount, "unit price cannot be negative")
	}
	return qty.Mul(unitPrice).Round(2), nil
}

// InvoiceTotals sums the stored line totals and applies the VAT percentage.
// Lines are not recomputed from qty and price here; the stored line total
// wins so that a manually overridden line carries through unchanged.
func InvoiceTotals(lines []Line, vatRatePercent decimal.Decimal) (Totals, error) {
	if vatRatePercent.IsNegative() {
		return Totals{}, rules.New(rules.KindInvalidAmount, "VAT rate cannot be negative")
	}
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.LineTotal.IsNegative() {
			return Totals{}, rules.New(rules.KindInvalidAmount, "line total cannot be negative")
		}
		subtotal = subtotal.Add(l.LineTotal)
	}
	subtotal = subtotal.Round(2)
	vat := subtotal.Mul(vatRatePercent).Div(decimal.NewFromInt(100)).Round(2)
	return Totals{
		Subtotal:  subtotal,
		VATAmount: vat,
		Total:     subtotal.Add(vat),
	}, nil
}

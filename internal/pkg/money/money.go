// Package money holds the VAT and line-total arithmetic shared by invoicing,
// expenses and reporting. All amounts are decimal.Decimal rounded to 2 dp;
// totals are always derived server-side, never taken from client input.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds an amount to 2 decimal places (half up).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Line computes quantity * unitPrice rounded to 2 dp.
func Line(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round2(quantity.Mul(unitPrice))
}

// VAT computes the VAT amount for a line total at the given percent rate.
func VAT(lineTotal, vatPercent decimal.Decimal) decimal.Decimal {
	return Round2(lineTotal.Mul(vatPercent).Div(hundred))
}

// Sum adds amounts and rounds the result to 2 dp.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return Round2(total)
}

// ClampZero returns d, or zero when d is negative. Used for remaining
// balances so an overshoot never surfaces as a negative amount owed.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

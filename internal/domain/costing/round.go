package costing

import "github.com/shopspring/decimal"

// Money rounding is half-to-even at two places, the same mode Python's
// round(Decimal, n) applies to the stored figures.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

func round1(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(1)
}

var hundred = decimal.NewFromInt(100)

// Percent returns part as a percentage of total rounded to one decimal.
// A zero total yields zero instead of a division error.
func Percent(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return round1(part.Div(total).Mul(hundred))
}

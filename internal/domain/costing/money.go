package costing

import "github.com/shopspring/decimal"

// Stored money columns are NUMERIC(14,2): two decimals, twelve integer digits.
const (
	MoneyPlaces        = 2
	MoneyIntegerDigits = 12
)

// FitsNumeric reports whether d can be stored without rounding in a column
// with the given decimal places and integer digits.
func FitsNumeric(d decimal.Decimal, places, integerDigits int32) bool {
	if !d.Equal(d.Truncate(places)) {
		return false
	}
	return d.Abs().LessThan(decimal.New(1, integerDigits))
}

func ValidMoney(d decimal.Decimal) bool {
	return FitsNumeric(d, MoneyPlaces, MoneyIntegerDigits)
}

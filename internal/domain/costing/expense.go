package costing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Period is the recurrence of an expense expressed in days.
type Period int

const (
	PeriodDaily       Period = 1
	PeriodWeekly      Period = 7
	PeriodFortnightly Period = 15
	PeriodMonthly     Period = 30
	PeriodBimonthly   Period = 60
	PeriodQuarterly   Period = 90
	PeriodFourMonthly Period = 120
	PeriodSemiannual  Period = 180
	PeriodYearly      Period = 360
)

var Periods = []Period{
	PeriodDaily,
	PeriodWeekly,
	PeriodFortnightly,
	PeriodMonthly,
	PeriodBimonthly,
	PeriodQuarterly,
	PeriodFourMonthly,
	PeriodSemiannual,
	PeriodYearly,
}

var periodLabels = map[Period]string{
	PeriodDaily:       "daily",
	PeriodWeekly:      "weekly",
	PeriodFortnightly: "fortnightly",
	PeriodMonthly:     "monthly",
	PeriodBimonthly:   "bimonthly",
	PeriodQuarterly:   "quarterly",
	PeriodFourMonthly: "four-monthly",
	PeriodSemiannual:  "semiannual",
	PeriodYearly:      "yearly",
}

func (p Period) Valid() bool {
	_, ok := periodLabels[p]
	return ok
}

func (p Period) String() string {
	if label, ok := periodLabels[p]; ok {
		return label
	}
	return fmt.Sprintf("period(%d)", int(p))
}

const (
	daysPerWeek  = 7
	daysPerMonth = 30
	daysPerYear  = 360
)

// Expense is a recurring amount paid once every Period days. Company and
// personal expenses share it; only the owner differs.
type Expense struct {
	Amount decimal.Decimal
	Period Period
}

type Normalized struct {
	Weekly  decimal.Decimal `json:"weekly"`
	Monthly decimal.Decimal `json:"monthly"`
	Yearly  decimal.Decimal `json:"yearly"`
}

// Normalize scales the daily rate amount/period to a week, a 30 day month and
// a 360 day year, each rounded to cents.
func Normalize(amount decimal.Decimal, period Period) (Normalized, error) {
	if !period.Valid() {
		return Normalized{}, fmt.Errorf("%w: %d", ErrInvalidPeriod, int(period))
	}
	days := decimal.NewFromInt(int64(period))
	scale := func(n int64) decimal.Decimal {
		return round2(amount.Mul(decimal.NewFromInt(n)).Div(days))
	}
	return Normalized{
		Weekly:  scale(daysPerWeek),
		Monthly: scale(daysPerMonth),
		Yearly:  scale(daysPerYear),
	}, nil
}

// SumNormalized adds up the normalized figures of every expense.
func SumNormalized(expenses []Expense) (Normalized, error) {
	total := Normalized{Weekly: decimal.Zero, Monthly: decimal.Zero, Yearly: decimal.Zero}
	for _, expense := range expenses {
		n, err := Normalize(expense.Amount, expense.Period)
		if err != nil {
			return Normalized{}, err
		}
		total.Weekly = total.Weekly.Add(n.Weekly)
		total.Monthly = total.Monthly.Add(n.Monthly)
		total.Yearly = total.Yearly.Add(n.Yearly)
	}
	return total, nil
}

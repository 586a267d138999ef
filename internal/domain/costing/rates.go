package costing

import "github.com/shopspring/decimal"

const DefaultWeeklyHours = 40

// HourlyRate spreads a weekly cost over the weekly working hours.
func HourlyRate(weekly decimal.Decimal, weeklyHours int) (decimal.Decimal, error) {
	if weeklyHours <= 0 {
		return decimal.Zero, ErrZeroWorkingHours
	}
	return round2(weekly.Div(decimal.NewFromInt(int64(weeklyHours)))), nil
}

type CompanyRates struct {
	WeeklyHours int             `json:"weeklyHours"`
	Weekly      decimal.Decimal `json:"weekly"`
	Monthly     decimal.Decimal `json:"monthly"`
	Yearly      decimal.Decimal `json:"yearly"`
	Hourly      decimal.Decimal `json:"hourly"`
}

// CompanyOverhead aggregates the company's own expenses into an hourly office cost.
func CompanyOverhead(expenses []Expense, weeklyHours int) (CompanyRates, error) {
	sum, err := SumNormalized(expenses)
	if err != nil {
		return CompanyRates{}, err
	}
	hourly, err := HourlyRate(sum.Weekly, weeklyHours)
	if err != nil {
		return CompanyRates{}, err
	}
	return CompanyRates{
		WeeklyHours: weeklyHours,
		Weekly:      sum.Weekly,
		Monthly:     sum.Monthly,
		Yearly:      sum.Yearly,
		Hourly:      hourly,
	}, nil
}

// ProfessionalHourlyRate divides the weekly personal expenses by the weekly
// hours of the professional's company. Without a company the rate is zero.
func ProfessionalHourlyRate(expenses []Expense, companyWeeklyHours *int) (decimal.Decimal, error) {
	if companyWeeklyHours == nil {
		return decimal.Zero, nil
	}
	sum, err := SumNormalized(expenses)
	if err != nil {
		return decimal.Zero, err
	}
	return HourlyRate(sum.Weekly, *companyWeeklyHours)
}

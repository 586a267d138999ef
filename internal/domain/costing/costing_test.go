package costing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("expected %s %s, got %s", name, want, got.String())
	}
}

func TestNormalizeEveryPeriod(t *testing.T) {
	cases := []struct {
		period  Period
		weekly  string
		monthly string
		yearly  string
	}{
		{PeriodDaily, "7000", "30000", "360000"},
		{PeriodWeekly, "1000", "4285.71", "51428.57"},
		{PeriodFortnightly, "466.67", "2000", "24000"},
		{PeriodMonthly, "233.33", "1000", "12000"},
		{PeriodBimonthly, "116.67", "500", "6000"},
		{PeriodQuarterly, "77.78", "333.33", "4000"},
		{PeriodFourMonthly, "58.33", "250", "3000"},
		{PeriodSemiannual, "38.89", "166.67", "2000"},
		{PeriodYearly, "19.44", "83.33", "1000"},
	}
	if len(cases) != len(Periods) {
		t.Fatalf("expected a case per period, got %d cases for %d periods", len(cases), len(Periods))
	}
	for _, tc := range cases {
		t.Run(tc.period.String(), func(t *testing.T) {
			got, err := Normalize(dec("1000"), tc.period)
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			assertDecimal(t, "weekly", got.Weekly, tc.weekly)
			assertDecimal(t, "monthly", got.Monthly, tc.monthly)
			assertDecimal(t, "yearly", got.Yearly, tc.yearly)
		})
	}
}

func TestNormalizeRejectsUnknownPeriod(t *testing.T) {
	if _, err := Normalize(dec("10"), Period(45)); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestRoundingIsHalfEven(t *testing.T) {
	assertDecimal(t, "2.675", round2(dec("2.675")), "2.68")
	assertDecimal(t, "2.665", round2(dec("2.665")), "2.66")
	assertDecimal(t, "0.25", round1(dec("0.25")), "0.2")

	rate, err := HourlyRate(dec("0.25"), 10)
	if err != nil {
		t.Fatalf("hourly rate: %v", err)
	}
	assertDecimal(t, "hourly", rate, "0.02")
}

func TestCompanyOverhead(t *testing.T) {
	expenses := []Expense{
		{Amount: dec("3000"), Period: PeriodMonthly},
		{Amount: dec("700"), Period: PeriodWeekly},
	}
	rates, err := CompanyOverhead(expenses, DefaultWeeklyHours)
	if err != nil {
		t.Fatalf("overhead: %v", err)
	}
	assertDecimal(t, "weekly", rates.Weekly, "1400")
	assertDecimal(t, "monthly", rates.Monthly, "6000")
	assertDecimal(t, "hourly", rates.Hourly, "35")

	if _, err := CompanyOverhead(expenses, 0); !errors.Is(err, ErrZeroWorkingHours) {
		t.Fatalf("expected ErrZeroWorkingHours, got %v", err)
	}
}

func TestProfessionalWithoutCompanyHasZeroRate(t *testing.T) {
	expenses := []Expense{{Amount: dec("1000"), Period: PeriodWeekly}}
	rate, err := ProfessionalHourlyRate(expenses, nil)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if !rate.IsZero() {
		t.Fatalf("expected zero rate, got %s", rate)
	}

	hours := 50
	rate, err = ProfessionalHourlyRate(expenses, &hours)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	assertDecimal(t, "rate", rate, "20")
}

func TestVehicleCost(t *testing.T) {
	v := Vehicle{
		Value:           dec("1200000"),
		AnnualKm:        24000,
		Fuel:            FuelPremium,
		Efficiency:      10,
		RegistrationFee: dec("6000"),
		Insurance:       dec("12000"),
		Garage:          dec("8000"),
		Lubricant:       dec("9000"),
		Wash:            dec("2000"),
		Tire:            dec("40000"),
		Service:         dec("30000"),
		AnnualRepairs:   dec("120000"),
		Roadworthiness:  dec("4800"),
	}
	got, err := VehicleCost(v, dec("150"))
	if err != nil {
		t.Fatalf("vehicle cost: %v", err)
	}
	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"residual", got.ResidualValue, "600000"},
		{"monthly km", got.MonthlyKm, "2000"},
		{"amortization", got.ValueAmortization, "5"},
		{"insurance", got.Insurance, "6"},
		{"registration", got.Registration, "1.5"},
		{"garage", got.Garage, "4"},
		{"wash", got.Wash, "1"},
		{"fuel", got.Fuel, "15"},
		{"lubrication", got.Lubrication, "0.75"},
		{"repairs", got.Repairs, "5"},
		{"spare parts", got.SpareParts, "1"},
		{"roadworthiness", got.Roadworthiness, "0.1"},
		{"tires", got.Tires, "4"},
		{"service", got.Service, "3"},
		{"cost per km", got.CostPerKm, "46.35"},
	}
	for _, c := range checks {
		assertDecimal(t, c.name, c.got, c.want)
	}
}

func TestVehicleWithoutMaintenanceCostsOnlyFuel(t *testing.T) {
	got, err := VehicleCost(Vehicle{AnnualKm: 15000, Fuel: FuelDiesel, Efficiency: 8}, dec("100"))
	if err != nil {
		t.Fatalf("vehicle cost: %v", err)
	}
	assertDecimal(t, "fuel", got.Fuel, "12.5")
	assertDecimal(t, "cost per km", got.CostPerKm, "12.5")
	for name, term := range map[string]decimal.Decimal{
		"amortization":   got.ValueAmortization,
		"insurance":      got.Insurance,
		"registration":   got.Registration,
		"garage":         got.Garage,
		"lubrication":    got.Lubrication,
		"wash":           got.Wash,
		"repairs":        got.Repairs,
		"spare parts":    got.SpareParts,
		"tires":          got.Tires,
		"service":        got.Service,
		"roadworthiness": got.Roadworthiness,
	} {
		if !term.IsZero() {
			t.Fatalf("expected %s to be zero, got %s", name, term)
		}
	}
}

func TestVehicleWithoutMileageUsesOneMonthlyKm(t *testing.T) {
	v := Vehicle{
		Fuel:            FuelRegular,
		RegistrationFee: dec("600"),
		Insurance:       dec("1200"),
		Garage:          dec("500"),
		Wash:            dec("100"),
	}
	got, err := VehicleCost(v, decimal.Zero)
	if err != nil {
		t.Fatalf("vehicle cost: %v", err)
	}
	assertDecimal(t, "monthly km", got.MonthlyKm, "1")
	assertDecimal(t, "insurance", got.Insurance, "1200")
	assertDecimal(t, "registration", got.Registration, "300")
	assertDecimal(t, "garage", got.Garage, "500")
	assertDecimal(t, "wash", got.Wash, "100")
	assertDecimal(t, "cost per km", got.CostPerKm, "2100")
}

func TestVehicleCostErrors(t *testing.T) {
	if _, err := VehicleCost(Vehicle{Value: dec("1000")}, decimal.Zero); !errors.Is(err, ErrZeroMileage) {
		t.Fatalf("expected ErrZeroMileage, got %v", err)
	}
	if _, err := VehicleCost(Vehicle{AnnualKm: 1000}, dec("90")); !errors.Is(err, ErrZeroEfficiency) {
		t.Fatalf("expected ErrZeroEfficiency, got %v", err)
	}
}

func TestInstrumentCost(t *testing.T) {
	i := Instrument{Saved: true, ValueUSD: dec("1000"), UsefulLife: DefaultUsefulLife}
	got, err := InstrumentCost(i, dec("85.25"))
	if err != nil {
		t.Fatalf("instrument cost: %v", err)
	}
	assertDecimal(t, "ars", got.ValueARS, "85250.00")
	assertDecimal(t, "workday", got.CostPerWorkday, "426.25")

	again, err := InstrumentCost(i, dec("85.25"))
	if err != nil {
		t.Fatalf("instrument cost: %v", err)
	}
	if !again.ValueARS.Equal(got.ValueARS) || !again.CostPerWorkday.Equal(got.CostPerWorkday) {
		t.Fatalf("expected identical results, got %+v and %+v", got, again)
	}

	moved, err := InstrumentCost(i, dec("90"))
	if err != nil {
		t.Fatalf("instrument cost: %v", err)
	}
	assertDecimal(t, "ars after rate change", moved.ValueARS, "90000")
	assertDecimal(t, "workday after rate change", moved.CostPerWorkday, "450")
}

func TestUnsavedInstrumentIsWorthZero(t *testing.T) {
	got, err := InstrumentCost(Instrument{ValueUSD: dec("500"), UsefulLife: 100}, dec("85"))
	if err != nil {
		t.Fatalf("instrument cost: %v", err)
	}
	if !got.ValueARS.IsZero() || !got.CostPerWorkday.IsZero() {
		t.Fatalf("expected zero values, got %+v", got)
	}
	got, err = InstrumentCost(Instrument{ValueUSD: dec("500")}, dec("85"))
	if err != nil {
		t.Fatalf("unsaved instrument without useful life: %v", err)
	}
	if !got.ValueARS.IsZero() || !got.CostPerWorkday.IsZero() {
		t.Fatalf("expected zero values without useful life, got %+v", got)
	}
	if _, err := InstrumentCost(Instrument{Saved: true, ValueUSD: dec("500")}, dec("85")); !errors.Is(err, ErrZeroUsefulLife) {
		t.Fatalf("expected ErrZeroUsefulLife, got %v", err)
	}
}

func TestStampFee(t *testing.T) {
	assertDecimal(t, "stamp", StampFee(2, 3, dec("0.75")), "1734")
	assertDecimal(t, "stamp with unit module", StampFee(1, 1, decimal.NewFromInt(1)), "1412")
	assertDecimal(t, "no partidas", StampFee(0, 3, dec("0.75")), "0")
	assertDecimal(t, "no lots", StampFee(2, 0, dec("0.75")), "0")
	assertDecimal(t, "cadastral", CadastralReportFee(2, DefaultCadastralModules, dec("0.75")), "15")
	assertDecimal(t, "cadastral at another rate", CadastralReportFee(2, dec("12"), dec("0.75")), "18")
	assertDecimal(t, "cadastral without partidas", CadastralReportFee(0, DefaultCadastralModules, dec("0.75")), "0")
}

func testParams() Params {
	return Params{
		DollarRate: dec("85.25"),
		TaxModule:  dec("0.75"),
		FuelPrices: map[FuelType]decimal.Decimal{FuelPremium: dec("150")},
	}
}

func TestJobCost(t *testing.T) {
	in := JobInput{
		Company: &CompanyRates{WeeklyHours: 40, Hourly: dec("25.50")},
		Actuantes: []ActuanteCost{
			{Hours: 10, HourlyRate: dec("100")},
			{Hours: 5, HourlyRate: dec("80.50")},
		},
		Movilidad:        []MobilityCost{{Km: 120, CostPerKm: dec("46.35")}},
		Instrumental:     []InstrumentalCost{{Workdays: 2, CostPerWorkday: dec("426.25")}},
		Partidas:         2,
		LotesFinales:     3,
		ContributionCopa: DefaultContributionCopa,
		ContributionCaja: DefaultContributionCaja,
		Fees:             Fees{Travel: dec("1000"), Markers: dec("500")},
	}
	got, err := JobCost(in, testParams())
	if err != nil {
		t.Fatalf("job cost: %v", err)
	}
	if got.TotalHours != 15 || got.TotalKm != 120 || got.TotalWorkdays != 2 {
		t.Fatalf("unexpected totals %d/%d/%d", got.TotalHours, got.TotalKm, got.TotalWorkdays)
	}
	assertDecimal(t, "labor", got.Labor, "1402.50")
	assertDecimal(t, "overhead", got.Overhead, "382.50")
	assertDecimal(t, "mobility", got.Mobility, "5562")
	assertDecimal(t, "instrumental", got.Instrumental, "852.50")
	assertDecimal(t, "stamp", got.StampFee, "1734")
	assertDecimal(t, "cadastral", got.CadastralReportFee, "15")
	assertDecimal(t, "specific", got.SpecificExpenses, "3249")
	assertDecimal(t, "contributions", got.Contributions, "5090")
	assertDecimal(t, "grand total", got.GrandTotal, "16538.50")

	assertDecimal(t, "contributions %", got.Percentages.Contributions, "30.8")
	assertDecimal(t, "specific %", got.Percentages.SpecificExpenses, "19.6")
	assertDecimal(t, "overhead %", got.Percentages.Overhead, "2.3")
	assertDecimal(t, "labor %", got.Percentages.Labor, "8.5")
	assertDecimal(t, "mobility %", got.Percentages.Mobility, "33.6")
	assertDecimal(t, "instrumental %", got.Percentages.Instrumental, "5.2")

	again, err := JobCost(in, testParams())
	if err != nil {
		t.Fatalf("job cost: %v", err)
	}
	if !again.GrandTotal.Equal(got.GrandTotal) || !again.Percentages.Mobility.Equal(got.Percentages.Mobility) {
		t.Fatalf("expected identical recomputation, got %s and %s", got.GrandTotal, again.GrandTotal)
	}
}

func TestEmptyJobTotalsContributionsOnly(t *testing.T) {
	in := JobInput{
		Company:          &CompanyRates{WeeklyHours: 40, Hourly: dec("10")},
		ContributionCopa: DefaultContributionCopa,
		ContributionCaja: DefaultContributionCaja,
	}
	got, err := JobCost(in, testParams())
	if err != nil {
		t.Fatalf("job cost: %v", err)
	}
	assertDecimal(t, "grand total", got.GrandTotal, "5090")
	assertDecimal(t, "contributions %", got.Percentages.Contributions, "100")
	assertDecimal(t, "labor %", got.Percentages.Labor, "0")

	in.ContributionCopa = decimal.Zero
	in.ContributionCaja = decimal.Zero
	got, err = JobCost(in, testParams())
	if err != nil {
		t.Fatalf("job cost: %v", err)
	}
	if !got.GrandTotal.IsZero() {
		t.Fatalf("expected zero grand total, got %s", got.GrandTotal)
	}
	for name, pct := range map[string]decimal.Decimal{
		"contributions": got.Percentages.Contributions,
		"specific":      got.Percentages.SpecificExpenses,
		"overhead":      got.Percentages.Overhead,
		"labor":         got.Percentages.Labor,
		"mobility":      got.Percentages.Mobility,
		"instrumental":  got.Percentages.Instrumental,
	} {
		if !pct.IsZero() {
			t.Fatalf("expected %s percentage 0, got %s", name, pct)
		}
	}
}

func TestJobCostErrors(t *testing.T) {
	if _, err := JobCost(JobInput{}, testParams()); !errors.Is(err, ErrNoCompany) {
		t.Fatalf("expected ErrNoCompany, got %v", err)
	}
	in := JobInput{
		Company:   &CompanyRates{Hourly: dec("1")},
		Actuantes: []ActuanteCost{{Hours: -1, HourlyRate: dec("1")}},
	}
	if _, err := JobCost(in, testParams()); !errors.Is(err, ErrNegativeQuantity) {
		t.Fatalf("expected ErrNegativeQuantity, got %v", err)
	}
}

func TestFuelPrice(t *testing.T) {
	p := testParams()
	price, err := p.FuelPrice(FuelPremium)
	if err != nil {
		t.Fatalf("fuel price: %v", err)
	}
	assertDecimal(t, "premium", price, "150")
	if _, err := p.FuelPrice(FuelCNG); !errors.Is(err, ErrUnknownFuel) {
		t.Fatalf("expected ErrUnknownFuel, got %v", err)
	}
}

func TestFitsNumeric(t *testing.T) {
	tests := []struct {
		value  string
		places int32
		digits int32
		want   bool
	}{
		{"1234.56", MoneyPlaces, MoneyIntegerDigits, true},
		{"-999999999999.99", MoneyPlaces, MoneyIntegerDigits, true},
		{"0.004", MoneyPlaces, MoneyIntegerDigits, false},
		{"1.005", MoneyPlaces, MoneyIntegerDigits, false},
		{"1e12", MoneyPlaces, MoneyIntegerDigits, false},
		{"1.0050", 4, 10, true},
		{"0.00001", 4, 10, false},
	}

	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			if got := FitsNumeric(dec(tc.value), tc.places, tc.digits); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

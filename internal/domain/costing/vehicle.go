package costing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type FuelType string

const (
	FuelRegular       FuelType = "regular"
	FuelPremium       FuelType = "premium"
	FuelDiesel        FuelType = "diesel"
	FuelDieselPremium FuelType = "diesel_premium"
	FuelCNG           FuelType = "cng"
)

var FuelTypes = []FuelType{FuelRegular, FuelPremium, FuelDiesel, FuelDieselPremium, FuelCNG}

func (f FuelType) Valid() bool {
	for _, candidate := range FuelTypes {
		if f == candidate {
			return true
		}
	}
	return false
}

// Usage assumptions behind the per-kilometer amortization.
var (
	depreciationYears   = decimal.NewFromInt(5)
	residualDivisor     = decimal.NewFromInt(2)
	sparePartsRate      = decimal.RequireFromString("0.02")
	tiresPerSet         = decimal.NewFromInt(4)
	tireLifeKm          = decimal.NewFromInt(40000)
	serviceIntervalKm   = decimal.NewFromInt(10000)
	lubricationsPerYear = decimal.NewFromInt(2)
	monthsPerYear       = decimal.NewFromInt(12)
	inspectionsDivisor  = decimal.NewFromInt(2)
	// Registration is paid in two installments a year; earlier revisions
	// amortized the whole fee instead.
	registrationDivisor = decimal.NewFromInt(2)
)

// Vehicle holds the stored figures a cost-per-kilometer is derived from.
// Registration, insurance, garage and wash are monthly costs.
type Vehicle struct {
	Value           decimal.Decimal
	AnnualKm        int
	Fuel            FuelType
	Efficiency      int
	RegistrationFee decimal.Decimal
	Insurance       decimal.Decimal
	Garage          decimal.Decimal
	Lubricant       decimal.Decimal
	Wash            decimal.Decimal
	Tire            decimal.Decimal
	Service         decimal.Decimal
	AnnualRepairs   decimal.Decimal
	Roadworthiness  decimal.Decimal
}

type VehicleBreakdown struct {
	ResidualValue     decimal.Decimal `json:"residualValue"`
	MonthlyKm         decimal.Decimal `json:"monthlyKm"`
	ValueAmortization decimal.Decimal `json:"valueAmortization"`
	Insurance         decimal.Decimal `json:"insurance"`
	Registration      decimal.Decimal `json:"registration"`
	Garage            decimal.Decimal `json:"garage"`
	Fuel              decimal.Decimal `json:"fuel"`
	Lubrication       decimal.Decimal `json:"lubrication"`
	Wash              decimal.Decimal `json:"wash"`
	Repairs           decimal.Decimal `json:"repairs"`
	SpareParts        decimal.Decimal `json:"spareParts"`
	Tires             decimal.Decimal `json:"tires"`
	Service           decimal.Decimal `json:"service"`
	Roadworthiness    decimal.Decimal `json:"roadworthiness"`
	CostPerKm         decimal.Decimal `json:"costPerKm"`
}

// VehicleCost derives the fully loaded cost of driving one kilometer. Each
// term is rounded to cents before the sum. A zero cost field contributes zero
// without touching its divisor.
func VehicleCost(v Vehicle, fuelPrice decimal.Decimal) (VehicleBreakdown, error) {
	annualKm := decimal.NewFromInt(int64(v.AnnualKm))
	monthlyKm := decimal.NewFromInt(1)
	if v.AnnualKm > 0 {
		monthlyKm = annualKm.Div(monthsPerYear)
	}

	perAnnualKm := func(name string, cost decimal.Decimal) (decimal.Decimal, error) {
		if cost.IsZero() {
			return decimal.Zero, nil
		}
		if v.AnnualKm <= 0 {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrZeroMileage, name)
		}
		return round2(cost.Div(annualKm)), nil
	}
	perMonthlyKm := func(cost decimal.Decimal) decimal.Decimal {
		if cost.IsZero() {
			return decimal.Zero
		}
		if v.AnnualKm <= 0 {
			return round2(cost)
		}
		return round2(cost.Mul(monthsPerYear).Div(annualKm))
	}

	var out VehicleBreakdown
	var err error

	out.MonthlyKm = round2(monthlyKm)
	if !v.Value.IsZero() {
		out.ResidualValue = round2(v.Value.Div(residualDivisor))
	}
	depreciable := v.Value.Sub(v.Value.Div(residualDivisor))
	if out.ValueAmortization, err = perAnnualKm("value", depreciable.Div(depreciationYears)); err != nil {
		return VehicleBreakdown{}, err
	}
	out.Insurance = perMonthlyKm(v.Insurance)
	out.Registration = perMonthlyKm(v.RegistrationFee.Div(registrationDivisor))
	out.Garage = perMonthlyKm(v.Garage)
	out.Wash = perMonthlyKm(v.Wash)

	if !fuelPrice.IsZero() {
		if v.Efficiency <= 0 {
			return VehicleBreakdown{}, ErrZeroEfficiency
		}
		out.Fuel = round2(fuelPrice.Div(decimal.NewFromInt(int64(v.Efficiency))))
	}

	if out.Lubrication, err = perAnnualKm("lubricant", v.Lubricant.Mul(lubricationsPerYear)); err != nil {
		return VehicleBreakdown{}, err
	}
	if out.Repairs, err = perAnnualKm("repairs", v.AnnualRepairs); err != nil {
		return VehicleBreakdown{}, err
	}
	if out.SpareParts, err = perAnnualKm("spare parts", v.Value.Mul(sparePartsRate)); err != nil {
		return VehicleBreakdown{}, err
	}
	if out.Roadworthiness, err = perAnnualKm("roadworthiness", v.Roadworthiness.Div(inspectionsDivisor)); err != nil {
		return VehicleBreakdown{}, err
	}
	if !v.Tire.IsZero() {
		out.Tires = round2(v.Tire.Mul(tiresPerSet).Div(tireLifeKm))
	}
	if !v.Service.IsZero() {
		out.Service = round2(v.Service.Div(serviceIntervalKm))
	}

	out.CostPerKm = round2(decimal.Sum(
		out.ValueAmortization,
		out.Insurance,
		out.Registration,
		out.Garage,
		out.Fuel,
		out.Lubrication,
		out.Wash,
		out.Repairs,
		out.SpareParts,
		out.Tires,
		out.Service,
		out.Roadworthiness,
	))
	return out, nil
}

package fleet

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"costos/internal/domain/costing"
)

var ErrNotFound = errors.New("fleet item not found")

type Vehicle struct {
	ID              string                    `json:"id"`
	CompanyID       string                    `json:"companyId"`
	Name            string                    `json:"name"`
	Value           decimal.Decimal           `json:"value"`
	AnnualKm        int                       `json:"annualKm"`
	FuelType        costing.FuelType          `json:"fuelType"`
	Efficiency      int                       `json:"efficiency"`
	RegistrationFee decimal.Decimal           `json:"registrationFee"`
	Insurance       decimal.Decimal           `json:"insurance"`
	Garage          decimal.Decimal           `json:"garage"`
	Lubricant       decimal.Decimal           `json:"lubricant"`
	Wash            decimal.Decimal           `json:"wash"`
	Tire            decimal.Decimal           `json:"tire"`
	Service         decimal.Decimal           `json:"service"`
	AnnualRepairs   decimal.Decimal           `json:"annualRepairs"`
	Roadworthiness  decimal.Decimal           `json:"roadworthiness"`
	FuelPrice       *decimal.Decimal          `json:"fuelPrice,omitempty"`
	Breakdown       *costing.VehicleBreakdown `json:"breakdown,omitempty"`
	Incomplete      string                    `json:"incomplete,omitempty"`
	CreatedAt       time.Time                 `json:"createdAt"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
}

func (v *Vehicle) Costing() costing.Vehicle {
	return costing.Vehicle{
		Value:           v.Value,
		AnnualKm:        v.AnnualKm,
		Fuel:            v.FuelType,
		Efficiency:      v.Efficiency,
		RegistrationFee: v.RegistrationFee,
		Insurance:       v.Insurance,
		Garage:          v.Garage,
		Lubricant:       v.Lubricant,
		Wash:            v.Wash,
		Tire:            v.Tire,
		Service:         v.Service,
		AnnualRepairs:   v.AnnualRepairs,
		Roadworthiness:  v.Roadworthiness,
	}
}

type VehicleInput struct {
	Name            string          `json:"name" validate:"required,max=120"`
	Value           decimal.Decimal `json:"value" validate:"gte=0,money"`
	AnnualKm        int             `json:"annualKm" validate:"gte=0"`
	FuelType        string          `json:"fuelType" validate:"required,oneof=regular premium diesel diesel_premium cng"`
	Efficiency      *int            `json:"efficiency" validate:"omitempty,gte=0"`
	RegistrationFee decimal.Decimal `json:"registrationFee" validate:"gte=0,money"`
	Insurance       decimal.Decimal `json:"insurance" validate:"gte=0,money"`
	Garage          decimal.Decimal `json:"garage" validate:"gte=0,money"`
	Lubricant       decimal.Decimal `json:"lubricant" validate:"gte=0,money"`
	Wash            decimal.Decimal `json:"wash" validate:"gte=0,money"`
	Tire            decimal.Decimal `json:"tire" validate:"gte=0,money"`
	Service         decimal.Decimal `json:"service" validate:"gte=0,money"`
	AnnualRepairs   decimal.Decimal `json:"annualRepairs" validate:"gte=0,money"`
	Roadworthiness  decimal.Decimal `json:"roadworthiness" validate:"gte=0,money"`
}

// DefaultEfficiency is the km per liter assumed when none is given.
const DefaultEfficiency = 9

func (in VehicleInput) efficiency() int {
	if in.Efficiency == nil {
		return DefaultEfficiency
	}
	return *in.Efficiency
}

type Instrument struct {
	ID         string                       `json:"id"`
	CompanyID  string                       `json:"companyId"`
	Name       string                       `json:"name"`
	ValueUSD   decimal.Decimal              `json:"valueUsd"`
	UsefulLife int                          `json:"usefulLife"`
	Breakdown  *costing.InstrumentBreakdown `json:"breakdown,omitempty"`
	Incomplete string                       `json:"incomplete,omitempty"`
	CreatedAt  time.Time                    `json:"createdAt"`
	UpdatedAt  time.Time                    `json:"updatedAt"`
}

func (i *Instrument) Costing() costing.Instrument {
	return costing.Instrument{Saved: i.ID != "", ValueUSD: i.ValueUSD, UsefulLife: i.UsefulLife}
}

type InstrumentInput struct {
	Name       string          `json:"name" validate:"required,max=120"`
	ValueUSD   decimal.Decimal `json:"valueUsd" validate:"gte=0,money"`
	UsefulLife *int            `json:"usefulLife" validate:"omitempty,gte=1"`
}

func (in InstrumentInput) usefulLife() int {
	if in.UsefulLife == nil {
		return costing.DefaultUsefulLife
	}
	return *in.UsefulLife
}

package fleet

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"costos/internal/domain/costing"
)

func params(rate string, fuel map[costing.FuelType]string) costing.Params {
	prices := map[costing.FuelType]decimal.Decimal{}
	for k, v := range fuel {
		prices[k] = decimal.RequireFromString(v)
	}
	return costing.Params{
		DollarRate: decimal.RequireFromString(rate),
		TaxModule:  decimal.RequireFromString("0.75"),
		FuelPrices: prices,
	}
}

func TestPriceVehicleFuelOnly(t *testing.T) {
	v := &Vehicle{ID: "v1", AnnualKm: 20000, FuelType: costing.FuelDiesel, Efficiency: 10}
	if err := PriceVehicle(v, params("80", map[costing.FuelType]string{costing.FuelDiesel: "125"})); err != nil {
		t.Fatalf("price: %v", err)
	}
	if v.Breakdown == nil || !v.Breakdown.CostPerKm.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected breakdown %+v", v.Breakdown)
	}
	if v.FuelPrice == nil || !v.FuelPrice.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("expected fuel price attached, got %v", v.FuelPrice)
	}
}

func TestPriceVehicleFollowsFuelPrice(t *testing.T) {
	v := &Vehicle{AnnualKm: 20000, FuelType: costing.FuelRegular, Efficiency: 10}
	_ = PriceVehicle(v, params("80", map[costing.FuelType]string{costing.FuelRegular: "100"}))
	first := v.Breakdown.CostPerKm
	_ = PriceVehicle(v, params("80", map[costing.FuelType]string{costing.FuelRegular: "150"}))
	if first.Equal(v.Breakdown.CostPerKm) {
		t.Fatalf("expected a new cost after a price change, got %s twice", first)
	}
}

func TestPriceVehicleFlagsIncomplete(t *testing.T) {
	v := &Vehicle{AnnualKm: 0, FuelType: costing.FuelRegular, Efficiency: 10, AnnualRepairs: decimal.NewFromInt(1000)}
	err := PriceVehicle(v, params("80", map[costing.FuelType]string{costing.FuelRegular: "100"}))
	if !errors.Is(err, costing.ErrZeroMileage) {
		t.Fatalf("expected ErrZeroMileage, got %v", err)
	}
	if v.Breakdown != nil || v.Incomplete == "" {
		t.Fatalf("expected flagged vehicle, got %+v", v)
	}

	unknown := &Vehicle{AnnualKm: 1000, FuelType: "kerosene", Efficiency: 10}
	if err := PriceVehicle(unknown, params("80", nil)); !errors.Is(err, costing.ErrUnknownFuel) {
		t.Fatalf("expected ErrUnknownFuel, got %v", err)
	}
}

func TestPriceInstrumentReadsRateEachTime(t *testing.T) {
	i := &Instrument{ID: "i1", ValueUSD: decimal.NewFromInt(1000), UsefulLife: 200}
	if err := PriceInstrument(i, params("85.25", nil)); err != nil {
		t.Fatalf("price: %v", err)
	}
	if !i.Breakdown.ValueARS.Equal(decimal.RequireFromString("85250")) || !i.Breakdown.CostPerWorkday.Equal(decimal.RequireFromString("426.25")) {
		t.Fatalf("unexpected breakdown %+v", i.Breakdown)
	}
	_ = PriceInstrument(i, params("90", nil))
	if !i.Breakdown.ValueARS.Equal(decimal.NewFromInt(90000)) {
		t.Fatalf("expected the new rate to apply, got %s", i.Breakdown.ValueARS)
	}
}

func TestUnsavedInstrumentIsWorthZero(t *testing.T) {
	i := &Instrument{ValueUSD: decimal.NewFromInt(1000), UsefulLife: 200}
	if err := PriceInstrument(i, params("85.25", nil)); err != nil {
		t.Fatalf("price: %v", err)
	}
	if !i.Breakdown.ValueARS.IsZero() {
		t.Fatalf("expected zero value, got %s", i.Breakdown.ValueARS)
	}
}

func TestInputDefaults(t *testing.T) {
	if got := (VehicleInput{}).efficiency(); got != DefaultEfficiency {
		t.Fatalf("expected default efficiency, got %d", got)
	}
	twelve := 12
	if got := (VehicleInput{Efficiency: &twelve}).efficiency(); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	if got := (InstrumentInput{}).usefulLife(); got != costing.DefaultUsefulLife {
		t.Fatalf("expected default useful life, got %d", got)
	}
}

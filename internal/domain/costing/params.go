package costing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Params is a read-once snapshot of the global parameters a calculation needs.
type Params struct {
	DollarRate       decimal.Decimal
	TaxModule        decimal.Decimal
	CadastralModules decimal.Decimal
	FuelPrices       map[FuelType]decimal.Decimal
	JobDefaults      Fees
}

// CadastralModulesPerPartida falls back to the default when the snapshot
// carries no rate.
func (p Params) CadastralModulesPerPartida() decimal.Decimal {
	if p.CadastralModules.IsZero() {
		return DefaultCadastralModules
	}
	return p.CadastralModules
}

func (p Params) FuelPrice(fuel FuelType) (decimal.Decimal, error) {
	price, ok := p.FuelPrices[fuel]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownFuel, fuel)
	}
	return price, nil
}

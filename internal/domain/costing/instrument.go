package costing

import "github.com/shopspring/decimal"

const DefaultUsefulLife = 200

// Instrument is valued in dollars and amortized over its useful life in
// measurement workdays. Saved is false until the row has an identity.
type Instrument struct {
	Saved      bool
	ValueUSD   decimal.Decimal
	UsefulLife int
}

type InstrumentBreakdown struct {
	ValueARS       decimal.Decimal `json:"valueArs"`
	CostPerWorkday decimal.Decimal `json:"costPerWorkday"`
}

// InstrumentCost converts the dollar value at the given rate. The rate is read
// by the caller on every evaluation, so two calls may differ.
func InstrumentCost(i Instrument, dollarRate decimal.Decimal) (InstrumentBreakdown, error) {
	if !i.Saved {
		return InstrumentBreakdown{ValueARS: decimal.Zero, CostPerWorkday: decimal.Zero}, nil
	}
	if i.UsefulLife <= 0 {
		return InstrumentBreakdown{}, ErrZeroUsefulLife
	}
	ars := round2(i.ValueUSD.Mul(dollarRate))
	return InstrumentBreakdown{
		ValueARS:       ars,
		CostPerWorkday: round2(ars.Div(decimal.NewFromInt(int64(i.UsefulLife)))),
	}, nil
}

package params

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"costos/internal/domain/costing"
)

const (
	SectionExchange = "exchange"
	SectionTax      = "tax"
	SectionFuel     = "fuel"
	SectionJob      = "job"
)

const (
	KeyUSDRate          = "exchange.usd_rate"
	KeyTaxModule        = "tax.module"
	KeyCadastralModules = "tax.cadastral_modules_per_partida"

	fuelPrefix       = "fuel."
	jobDefaultPrefix = "job.default."
)

// global_parameters.value is NUMERIC(14,4).
const (
	valuePlaces        = 4
	valueIntegerDigits = 10
)

// Definition describes one editable global parameter.
type Definition struct {
	Key      string          `json:"key"`
	Section  string          `json:"section"`
	Label    string          `json:"label"`
	Default  decimal.Decimal `json:"default"`
	Positive bool            `json:"positive"`
}

// jobDefault binds a job fee to the parameter key that seeds it on new jobs.
type jobDefault struct {
	name  string
	label string
	set   func(*costing.Fees, decimal.Decimal)
	get   func(costing.Fees) decimal.Decimal
}

var jobDefaults = []jobDefault{
	{"filings", "Visados", func(f *costing.Fees, v decimal.Decimal) { f.Filings = v }, func(f costing.Fees) decimal.Decimal { return f.Filings }},
	{"assistant", "Ayudante", func(f *costing.Fees, v decimal.Decimal) { f.Assistant = v }, func(f costing.Fees) decimal.Decimal { return f.Assistant }},
	{"travel", "Viáticos", func(f *costing.Fees, v decimal.Decimal) { f.Travel = v }, func(f costing.Fees) decimal.Decimal { return f.Travel }},
	{"markers", "Mojones", func(f *costing.Fees, v decimal.Decimal) { f.Markers = v }, func(f costing.Fees) decimal.Decimal { return f.Markers }},
	{"instrument_rental", "Alquiler de instrumentos", func(f *costing.Fees, v decimal.Decimal) { f.InstrumentRental = v }, func(f costing.Fees) decimal.Decimal { return f.InstrumentRental }},
	{"special_insurance", "Seguros especiales", func(f *costing.Fees, v decimal.Decimal) { f.SpecialInsurance = v }, func(f costing.Fees) decimal.Decimal { return f.SpecialInsurance }},
	{"draftsman", "Dibujante", func(f *costing.Fees, v decimal.Decimal) { f.Draftsman = v }, func(f costing.Fees) decimal.Decimal { return f.Draftsman }},
	{"printing", "Impresiones", func(f *costing.Fees, v decimal.Decimal) { f.Printing = v }, func(f costing.Fees) decimal.Decimal { return f.Printing }},
	{"agent", "Gestor", func(f *costing.Fees, v decimal.Decimal) { f.Agent = v }, func(f costing.Fees) decimal.Decimal { return f.Agent }},
	{"other", "Otros gastos", func(f *costing.Fees, v decimal.Decimal) { f.Other = v }, func(f costing.Fees) decimal.Decimal { return f.Other }},
}

var registry = buildRegistry()

func buildRegistry() map[string]Definition {
	defs := map[string]Definition{
		KeyUSDRate: {
			Key:      KeyUSDRate,
			Section:  SectionExchange,
			Label:    "Cotización del dólar",
			Default:  decimal.NewFromInt(80),
			Positive: true,
		},
		KeyTaxModule: {
			Key:      KeyTaxModule,
			Section:  SectionTax,
			Label:    "Módulo tributario",
			Default:  decimal.RequireFromString("0.75"),
			Positive: true,
		},
		KeyCadastralModules: {
			Key:      KeyCadastralModules,
			Section:  SectionTax,
			Label:    "Módulos de informe catastral por partida",
			Default:  costing.DefaultCadastralModules,
			Positive: true,
		},
	}
	for _, fuel := range costing.FuelTypes {
		key := FuelKey(fuel)
		defs[key] = Definition{Key: key, Section: SectionFuel, Label: "Precio por litro " + string(fuel), Default: decimal.NewFromInt(1)}
	}
	for _, jd := range jobDefaults {
		key := jobDefaultPrefix + jd.name
		defs[key] = Definition{Key: key, Section: SectionJob, Label: jd.label, Default: decimal.Zero}
	}
	return defs
}

func FuelKey(fuel costing.FuelType) string {
	return fuelPrefix + string(fuel)
}

// Definitions lists every known parameter ordered by key.
func Definitions() []Definition {
	out := make([]Definition, 0, len(registry))
	for _, def := range registry {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func Lookup(key string) (Definition, bool) {
	def, ok := registry[key]
	return def, ok
}

// JobDefaultKeys are the keys a professional may override with a preference.
func JobDefaultKeys() []string {
	keys := make([]string, 0, len(jobDefaults))
	for _, jd := range jobDefaults {
		keys = append(keys, jobDefaultPrefix+jd.name)
	}
	return keys
}

func IsJobDefault(key string) bool {
	def, ok := registry[key]
	return ok && def.Section == SectionJob
}

// Validate checks a value against the definition of key.
func Validate(key string, value decimal.Decimal) error {
	def, ok := registry[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if value.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, key)
	}
	if def.Positive && !value.IsPositive() {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidValue, key)
	}
	if def.Section == SectionJob {
		if !costing.ValidMoney(value) {
			return fmt.Errorf("%w: %s must have at most 2 decimals and 12 integer digits", ErrInvalidValue, key)
		}
		return nil
	}
	// The column rounds extra decimals; only the integer part can overflow.
	if !costing.FitsNumeric(value.Round(valuePlaces), valuePlaces, valueIntegerDigits) {
		return fmt.Errorf("%w: %s must be below 1e%d", ErrInvalidValue, key, valueIntegerDigits)
	}
	return nil
}

// BuildSnapshot resolves stored values over the registry defaults.
func BuildSnapshot(values map[string]decimal.Decimal) costing.Params {
	value := func(key string) decimal.Decimal {
		if v, ok := values[key]; ok {
			return v
		}
		return registry[key].Default
	}

	p := costing.Params{
		DollarRate:       value(KeyUSDRate),
		TaxModule:        value(KeyTaxModule),
		CadastralModules: value(KeyCadastralModules),
		FuelPrices:       make(map[costing.FuelType]decimal.Decimal, len(costing.FuelTypes)),
	}
	for _, fuel := range costing.FuelTypes {
		p.FuelPrices[fuel] = value(FuelKey(fuel))
	}
	for _, jd := range jobDefaults {
		jd.set(&p.JobDefaults, value(jobDefaultPrefix+jd.name))
	}
	return p
}

// MergeJobDefaults overlays a professional's own preferences on the global
// job defaults.
func MergeJobDefaults(global costing.Fees, prefs map[string]decimal.Decimal) costing.Fees {
	out := global
	for _, jd := range jobDefaults {
		if v, ok := prefs[jobDefaultPrefix+jd.name]; ok {
			jd.set(&out, v)
		}
	}
	return out
}

// JobDefaultValues flattens fees into their parameter keys.
func JobDefaultValues(fees costing.Fees) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(jobDefaults))
	for _, jd := range jobDefaults {
		out[jobDefaultPrefix+jd.name] = jd.get(fees)
	}
	return out
}

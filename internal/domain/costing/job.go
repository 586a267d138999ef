package costing

import "github.com/shopspring/decimal"

// Statutory fee schedules, expressed in tax modules.
var (
	stampFixedModules        = decimal.NewFromInt(6 * 2)
	stampFilingModules       = decimal.NewFromInt(300)
	stampPerPartidaModules   = decimal.NewFromInt(300)
	stampPerLoteModules      = decimal.NewFromInt(300)
	stampRegistrationModules = decimal.NewFromInt(500)
)

// DefaultCadastralModules is the cadastral report rate per partida, in tax
// modules, used until the parameter is set.
var DefaultCadastralModules = decimal.NewFromInt(10)

// Default professional association and pension fund contributions per job.
var (
	DefaultContributionCopa = decimal.NewFromInt(2200)
	DefaultContributionCaja = decimal.NewFromInt(2890)
)

// StampFee is the fiscal stamp duty of a survey filing. It only applies when
// the job has both partidas and final lots.
func StampFee(partidas, lotesFinales int, taxModule decimal.Decimal) decimal.Decimal {
	if partidas <= 0 || lotesFinales <= 0 {
		return decimal.Zero
	}
	modules := decimal.Sum(
		stampFixedModules,
		stampFilingModules,
		stampPerPartidaModules.Mul(decimal.NewFromInt(int64(partidas))),
		stampPerLoteModules.Mul(decimal.NewFromInt(int64(lotesFinales))),
		stampRegistrationModules,
	)
	return round2(modules.Mul(taxModule))
}

func CadastralReportFee(partidas int, modulesPerPartida, taxModule decimal.Decimal) decimal.Decimal {
	if partidas <= 0 {
		return decimal.Zero
	}
	return round2(modulesPerPartida.Mul(decimal.NewFromInt(int64(partidas))).Mul(taxModule))
}

// Fees are the fixed per-job expense line items.
type Fees struct {
	Deeds             decimal.Decimal `json:"deeds"`
	Filings           decimal.Decimal `json:"filings"`
	UrgentCertificate decimal.Decimal `json:"urgentCertificate"`
	TitleStudy        decimal.Decimal `json:"titleStudy"`
	Georeferencing    decimal.Decimal `json:"georeferencing"`
	Summons           decimal.Decimal `json:"summons"`
	Travel            decimal.Decimal `json:"travel"`
	Assistant         decimal.Decimal `json:"assistant"`
	Draftsman         decimal.Decimal `json:"draftsman"`
	Printing          decimal.Decimal `json:"printing"`
	Markers           decimal.Decimal `json:"markers"`
	Agent             decimal.Decimal `json:"agent"`
	SpecialInsurance  decimal.Decimal `json:"specialInsurance"`
	InstrumentRental  decimal.Decimal `json:"instrumentRental"`
	Other             decimal.Decimal `json:"other"`
}

func (f Fees) Sum() decimal.Decimal {
	return decimal.Sum(
		f.Deeds,
		f.Filings,
		f.UrgentCertificate,
		f.TitleStudy,
		f.Georeferencing,
		f.Summons,
		f.Travel,
		f.Assistant,
		f.Draftsman,
		f.Printing,
		f.Markers,
		f.Agent,
		f.SpecialInsurance,
		f.InstrumentRental,
		f.Other,
	)
}

type ActuanteCost struct {
	Hours      int
	HourlyRate decimal.Decimal
}

type MobilityCost struct {
	Km        int
	CostPerKm decimal.Decimal
}

type InstrumentalCost struct {
	Workdays       int
	CostPerWorkday decimal.Decimal
}

// JobInput is a job with every related rate already resolved. Company is the
// owning company's overhead; nil means the job has no company yet.
type JobInput struct {
	Company          *CompanyRates
	Actuantes        []ActuanteCost
	Movilidad        []MobilityCost
	Instrumental     []InstrumentalCost
	Partidas         int
	LotesFinales     int
	ContributionCopa decimal.Decimal
	ContributionCaja decimal.Decimal
	Fees             Fees
}

type Breakdown struct {
	Contributions    decimal.Decimal `json:"contributions"`
	SpecificExpenses decimal.Decimal `json:"specificExpenses"`
	Overhead         decimal.Decimal `json:"overhead"`
	Labor            decimal.Decimal `json:"labor"`
	Mobility         decimal.Decimal `json:"mobility"`
	Instrumental     decimal.Decimal `json:"instrumental"`
}

type JobTotals struct {
	TotalHours         int             `json:"totalHours"`
	TotalKm            int             `json:"totalKm"`
	TotalWorkdays      int             `json:"totalWorkdays"`
	StampFee           decimal.Decimal `json:"stampFee"`
	CadastralReportFee decimal.Decimal `json:"cadastralReportFee"`
	Contributions      decimal.Decimal `json:"contributions"`
	SpecificExpenses   decimal.Decimal `json:"specificExpenses"`
	Overhead           decimal.Decimal `json:"overhead"`
	Labor              decimal.Decimal `json:"labor"`
	Mobility           decimal.Decimal `json:"mobility"`
	Instrumental       decimal.Decimal `json:"instrumental"`
	GrandTotal         decimal.Decimal `json:"grandTotal"`
	Percentages        Breakdown       `json:"percentages"`
}

// JobCost aggregates a job. Nothing is cached: callers rebuild the input from
// current rows and parameters on every read.
func JobCost(in JobInput, p Params) (JobTotals, error) {
	if in.Company == nil {
		return JobTotals{}, ErrNoCompany
	}

	var out JobTotals
	labor := decimal.Zero
	for _, a := range in.Actuantes {
		if a.Hours < 0 {
			return JobTotals{}, ErrNegativeQuantity
		}
		out.TotalHours += a.Hours
		labor = labor.Add(decimal.NewFromInt(int64(a.Hours)).Mul(a.HourlyRate))
	}
	mobility := decimal.Zero
	for _, m := range in.Movilidad {
		if m.Km < 0 {
			return JobTotals{}, ErrNegativeQuantity
		}
		out.TotalKm += m.Km
		mobility = mobility.Add(decimal.NewFromInt(int64(m.Km)).Mul(m.CostPerKm))
	}
	instrumental := decimal.Zero
	for _, i := range in.Instrumental {
		if i.Workdays < 0 {
			return JobTotals{}, ErrNegativeQuantity
		}
		out.TotalWorkdays += i.Workdays
		instrumental = instrumental.Add(decimal.NewFromInt(int64(i.Workdays)).Mul(i.CostPerWorkday))
	}

	out.Labor = round2(labor)
	out.Mobility = round2(mobility)
	out.Instrumental = round2(instrumental)
	out.Overhead = round2(decimal.NewFromInt(int64(out.TotalHours)).Mul(in.Company.Hourly))

	out.StampFee = StampFee(in.Partidas, in.LotesFinales, p.TaxModule)
	out.CadastralReportFee = CadastralReportFee(in.Partidas, p.CadastralModulesPerPartida(), p.TaxModule)
	out.SpecificExpenses = round2(in.Fees.Sum().Add(out.StampFee).Add(out.CadastralReportFee))
	out.Contributions = round2(in.ContributionCopa.Add(in.ContributionCaja))

	out.GrandTotal = decimal.Sum(
		out.Contributions,
		out.SpecificExpenses,
		out.Overhead,
		out.Labor,
		out.Mobility,
		out.Instrumental,
	)
	out.Percentages = Breakdown{
		Contributions:    Percent(out.Contributions, out.GrandTotal),
		SpecificExpenses: Percent(out.SpecificExpenses, out.GrandTotal),
		Overhead:         Percent(out.Overhead, out.GrandTotal),
		Labor:            Percent(out.Labor, out.GrandTotal),
		Mobility:         Percent(out.Mobility, out.GrandTotal),
		Instrumental:     Percent(out.Instrumental, out.GrandTotal),
	}
	return out, nil
}

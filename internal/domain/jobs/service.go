package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"costos/internal/domain/company"
	"costos/internal/domain/costing"
	"costos/internal/domain/fleet"
	"costos/internal/domain/professional"
)

// IncompleteError means a cost cannot be derived because a related entity
// is missing data. Callers see it as a distinct error kind, never as a zero.
type IncompleteError struct {
	Entity string
	ID     string
	Err    error
}

func (e *IncompleteError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s is incomplete: %v", e.Entity, e.Err)
	}
	return fmt.Sprintf("%s %s is incomplete: %v", e.Entity, e.ID, e.Err)
}

func (e *IncompleteError) Unwrap() error {
	return e.Err
}

var incompleteCauses = []error{
	costing.ErrNoCompany,
	costing.ErrZeroWorkingHours,
	costing.ErrInvalidPeriod,
	costing.ErrZeroMileage,
	costing.ErrZeroEfficiency,
	costing.ErrZeroUsefulLife,
	costing.ErrUnknownFuel,
	costing.ErrNegativeQuantity,
	company.ErrNotFound,
	professional.ErrNotFound,
	fleet.ErrNotFound,
}

func incomplete(entity, id string, err error) error {
	for _, cause := range incompleteCauses {
		if errors.Is(err, cause) {
			return &IncompleteError{Entity: entity, ID: id, Err: err}
		}
	}
	return err
}

type CompanyRates interface {
	Rates(ctx context.Context, id string) (costing.CompanyRates, error)
}

type HourlyRates interface {
	HourlyRate(ctx context.Context, id string) (decimal.Decimal, error)
}

type FleetReader interface {
	GetVehicle(ctx context.Context, companyID, id string) (*fleet.Vehicle, error)
	GetInstrument(ctx context.Context, companyID, id string) (*fleet.Instrument, error)
}

type ParamsSource interface {
	Snapshot(ctx context.Context) (costing.Params, error)
	JobDefaults(ctx context.Context, userID string) (costing.Fees, error)
}

type Service struct {
	store         *Store
	companies     CompanyRates
	professionals HourlyRates
	fleet         FleetReader
	params        ParamsSource
}

func NewService(store *Store, companies CompanyRates, professionals HourlyRates, fleetReader FleetReader, params ParamsSource) *Service {
	return &Service{
		store:         store,
		companies:     companies,
		professionals: professionals,
		fleet:         fleetReader,
		params:        params,
	}
}

func (s *Service) List(ctx context.Context, companyID string, filter ListFilter) ([]Summary, error) {
	return s.store.List(ctx, companyID, filter)
}

func (s *Service) Get(ctx context.Context, companyID, id string) (*Job, error) {
	return s.store.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, companyID, createdBy string, in Input) (*Job, error) {
	id, err := s.store.Create(ctx, companyID, createdBy, in)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, companyID, id)
}

func (s *Service) Update(ctx context.Context, companyID, id string, in Input) (*Job, error) {
	if err := s.store.Update(ctx, companyID, id, in); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, companyID, id)
}

func (s *Service) Delete(ctx context.Context, companyID, id string) error {
	return s.store.Delete(ctx, companyID, id)
}

// Defaults are the initial fee values of a new job form for the user.
func (s *Service) Defaults(ctx context.Context, userID string) (Input, error) {
	fees, err := s.params.JobDefaults(ctx, userID)
	if err != nil {
		return Input{}, err
	}
	partidas, lotes := 1, 1
	copa, caja := costing.DefaultContributionCopa, costing.DefaultContributionCaja
	return Input{
		Partidas:         &partidas,
		LotesFinales:     &lotes,
		ContributionCopa: &copa,
		ContributionCaja: &caja,
		Fees:             fees,
		Actuantes:        []ActuanteInput{},
		Movilidad:        []MovilidadInput{},
		Instrumental:     []InstrumentalInput{},
	}, nil
}

type ActuanteLine struct {
	Actuante
	HourlyRate decimal.Decimal `json:"hourlyRate"`
	Amount     decimal.Decimal `json:"amount"`
}

type MovilidadLine struct {
	Movilidad
	CostPerKm decimal.Decimal `json:"costPerKm"`
	Amount    decimal.Decimal `json:"amount"`
}

type InstrumentalLine struct {
	Instrumental
	CostPerWorkday decimal.Decimal `json:"costPerWorkday"`
	Amount         decimal.Decimal `json:"amount"`
}

// Costs is a job with every figure recomputed from the current rows and
// parameters.
type Costs struct {
	Job           *Job               `json:"job"`
	CompanyHourly decimal.Decimal    `json:"companyHourly"`
	Actuantes     []ActuanteLine     `json:"actuantes"`
	Movilidad     []MovilidadLine    `json:"movilidad"`
	Instrumental  []InstrumentalLine `json:"instrumental"`
	Totals        costing.JobTotals  `json:"totals"`
}

// Costs fails with an *IncompleteError when any related rate cannot be
// derived.
func (s *Service) Costs(ctx context.Context, companyID, id string) (*Costs, error) {
	j, err := s.store.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.params.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, j, snapshot)
}

// CompanyCosts costs every job of the company against one parameter
// snapshot. Jobs that cannot be costed are reported in the second slice.
func (s *Service) CompanyCosts(ctx context.Context, companyID string) ([]*Costs, []*IncompleteError, error) {
	ids, err := s.store.IDs(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}
	snapshot, err := s.params.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	var out []*Costs
	var skipped []*IncompleteError
	for _, id := range ids {
		j, err := s.store.Get(ctx, companyID, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		c, err := s.assemble(ctx, j, snapshot)
		var inc *IncompleteError
		if errors.As(err, &inc) {
			skipped = append(skipped, &IncompleteError{Entity: "job", ID: j.ID, Err: inc})
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		out = append(out, c)
	}
	return out, skipped, nil
}

func (s *Service) assemble(ctx context.Context, j *Job, snapshot costing.Params) (*Costs, error) {
	rates, err := s.companies.Rates(ctx, j.CompanyID)
	if err != nil {
		return nil, incomplete("company", j.CompanyID, err)
	}

	out := &Costs{Job: j, CompanyHourly: rates.Hourly}
	in := costing.JobInput{
		Company:          &rates,
		Partidas:         j.Partidas,
		LotesFinales:     j.LotesFinales,
		ContributionCopa: j.ContributionCopa,
		ContributionCaja: j.ContributionCaja,
		Fees:             j.Fees,
	}
	for _, a := range j.Actuantes {
		rate, err := s.professionals.HourlyRate(ctx, a.UserID)
		if err != nil {
			return nil, incomplete("professional", a.UserID, err)
		}
		in.Actuantes = append(in.Actuantes, costing.ActuanteCost{Hours: a.Hours, HourlyRate: rate})
		out.Actuantes = append(out.Actuantes, ActuanteLine{Actuante: a, HourlyRate: rate, Amount: lineAmount(a.Hours, rate)})
	}
	for _, m := range j.Movilidad {
		v, err := s.fleet.GetVehicle(ctx, j.CompanyID, m.VehicleID)
		if err != nil {
			return nil, incomplete("vehicle", m.VehicleID, err)
		}
		if err := fleet.PriceVehicle(v, snapshot); err != nil {
			return nil, incomplete("vehicle", m.VehicleID, err)
		}
		perKm := v.Breakdown.CostPerKm
		in.Movilidad = append(in.Movilidad, costing.MobilityCost{Km: m.Km, CostPerKm: perKm})
		out.Movilidad = append(out.Movilidad, MovilidadLine{Movilidad: m, CostPerKm: perKm, Amount: lineAmount(m.Km, perKm)})
	}
	for _, i := range j.Instrumental {
		ins, err := s.fleet.GetInstrument(ctx, j.CompanyID, i.InstrumentID)
		if err != nil {
			return nil, incomplete("instrument", i.InstrumentID, err)
		}
		if err := fleet.PriceInstrument(ins, snapshot); err != nil {
			return nil, incomplete("instrument", i.InstrumentID, err)
		}
		perDay := ins.Breakdown.CostPerWorkday
		in.Instrumental = append(in.Instrumental, costing.InstrumentalCost{Workdays: i.Workdays, CostPerWorkday: perDay})
		out.Instrumental = append(out.Instrumental, InstrumentalLine{Instrumental: i, CostPerWorkday: perDay, Amount: lineAmount(i.Workdays, perDay)})
	}

	totals, err := costing.JobCost(in, snapshot)
	if err != nil {
		return nil, incomplete("job", j.ID, err)
	}
	out.Totals = totals
	return out, nil
}

func lineAmount(qty int, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(qty)).Mul(rate).RoundBank(2)
}

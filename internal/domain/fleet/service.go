package fleet

import (
	"context"

	"costos/internal/domain/costing"
)

// ParamsSource yields the current global parameters. It is read on every
// call so a price or rate change shows up immediately.
type ParamsSource interface {
	Snapshot(ctx context.Context) (costing.Params, error)
}

type Service struct {
	store  *Store
	params ParamsSource
}

func NewService(store *Store, params ParamsSource) *Service {
	return &Service{store: store, params: params}
}

func (s *Service) ListVehicles(ctx context.Context, companyID string) ([]*Vehicle, error) {
	list, err := s.store.ListVehicles(ctx, companyID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.params.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range list {
		_ = PriceVehicle(v, snapshot)
	}
	return list, nil
}

func (s *Service) GetVehicle(ctx context.Context, companyID, id string) (*Vehicle, error) {
	v, err := s.store.GetVehicle(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.params.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	_ = PriceVehicle(v, snapshot)
	return v, nil
}

func (s *Service) CreateVehicle(ctx context.Context, companyID string, in VehicleInput) (*Vehicle, error) {
	id, err := s.store.CreateVehicle(ctx, companyID, in)
	if err != nil {
		return nil, err
	}
	return s.GetVehicle(ctx, companyID, id)
}

func (s *Service) UpdateVehicle(ctx context.Context, companyID, id string, in VehicleInput) (*Vehicle, error) {
	if err := s.store.UpdateVehicle(ctx, companyID, id, in); err != nil {
		return nil, err
	}
	return s.GetVehicle(ctx, companyID, id)
}

func (s *Service) DeleteVehicle(ctx context.Context, companyID, id string) error {
	return s.store.DeleteVehicle(ctx, companyID, id)
}

func (s *Service) ListInstruments(ctx context.Context, companyID string) ([]*Instrument, error) {
	list, err := s.store.ListInstruments(ctx, companyID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.params.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, i := range list {
		_ = PriceInstrument(i, snapshot)
	}
	return list, nil
}

func (s *Service) GetInstrument(ctx context.Context, companyID, id string) (*Instrument, error) {
	i, err := s.store.GetInstrument(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.params.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	_ = PriceInstrument(i, snapshot)
	return i, nil
}

func (s *Service) CreateInstrument(ctx context.Context, companyID string, in InstrumentInput) (*Instrument, error) {
	id, err := s.store.CreateInstrument(ctx, companyID, in)
	if err != nil {
		return nil, err
	}
	return s.GetInstrument(ctx, companyID, id)
}

func (s *Service) UpdateInstrument(ctx context.Context, companyID, id string, in InstrumentInput) (*Instrument, error) {
	if err := s.store.UpdateInstrument(ctx, companyID, id, in); err != nil {
		return nil, err
	}
	return s.GetInstrument(ctx, companyID, id)
}

func (s *Service) DeleteInstrument(ctx context.Context, companyID, id string) error {
	return s.store.DeleteInstrument(ctx, companyID, id)
}

// PriceVehicle attaches the per-km breakdown at the snapshot's fuel price.
// When the cost cannot be derived the vehicle is flagged and the error
// returned; listings ignore it, job costing does not.
func PriceVehicle(v *Vehicle, p costing.Params) error {
	v.Breakdown = nil
	v.Incomplete = ""
	price, err := p.FuelPrice(v.FuelType)
	if err != nil {
		v.Incomplete = err.Error()
		return err
	}
	v.FuelPrice = &price
	breakdown, err := costing.VehicleCost(v.Costing(), price)
	if err != nil {
		v.Incomplete = err.Error()
		return err
	}
	v.Breakdown = &breakdown
	return nil
}

// PriceInstrument converts at the snapshot's dollar rate.
func PriceInstrument(i *Instrument, p costing.Params) error {
	i.Breakdown = nil
	i.Incomplete = ""
	breakdown, err := costing.InstrumentCost(i.Costing(), p.DollarRate)
	if err != nil {
		i.Incomplete = err.Error()
		return err
	}
	i.Breakdown = &breakdown
	return nil
}

package company

import (
	"context"
	"errors"

	"costos/internal/domain/costing"
	"costos/internal/domain/expenses"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, creatorID string, in Input) (*Company, error) {
	id, err := s.store.Create(ctx, creatorID, in)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Get loads the company with its normalized expenses and derived rates. A
// company whose rates cannot be derived is still returned, flagged as
// incomplete.
func (s *Service) Get(ctx context.Context, id string) (*Company, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := withRates(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*Company, error) {
	if err := s.store.Update(ctx, id, in); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Summary, error) {
	return s.store.List(ctx)
}

// Rates is the overhead a job of this company is charged with.
func (s *Service) Rates(ctx context.Context, id string) (costing.CompanyRates, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return costing.CompanyRates{}, err
	}
	return costing.CompanyOverhead(expenses.ToCosting(c.Expenses), c.WeeklyHours)
}

func withRates(c *Company) error {
	if err := expenses.Annotate(c.Expenses); err != nil {
		return err
	}
	rates, err := costing.CompanyOverhead(expenses.ToCosting(c.Expenses), c.WeeklyHours)
	if errors.Is(err, costing.ErrZeroWorkingHours) {
		c.Incomplete = err.Error()
		return nil
	}
	if err != nil {
		return err
	}
	c.Rates = &rates
	return nil
}

func (s *Service) CompanyName(ctx context.Context, id string) (string, error) {
	return s.store.Name(ctx, id)
}

package params

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"costos/internal/domain/costing"
)

type Parameter struct {
	Key       string          `json:"key"`
	Section   string          `json:"section"`
	Label     string          `json:"label"`
	Value     decimal.Decimal `json:"value"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
	UpdatedBy string          `json:"updatedBy,omitempty"`
}

type ExchangeRate struct {
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

type Preference struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Value  decimal.Decimal `json:"value"`
	Custom bool            `json:"custom"`
}

// Service reads through to the store on every call. Nothing is cached so a
// rate or price change is visible to the next calculation.
type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Snapshot(ctx context.Context) (costing.Params, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return costing.Params{}, err
	}
	values := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return BuildSnapshot(values), nil
}

// List returns every known parameter, stored or default.
func (s *Service) List(ctx context.Context) ([]Parameter, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	stored := make(map[string]storedValue, len(rows))
	for _, row := range rows {
		stored[row.Key] = row
	}

	defs := Definitions()
	out := make([]Parameter, 0, len(defs))
	for _, def := range defs {
		p := Parameter{Key: def.Key, Section: def.Section, Label: def.Label, Value: def.Default}
		if row, ok := stored[def.Key]; ok {
			updatedAt := row.UpdatedAt
			p.Value = row.Value
			p.UpdatedAt = &updatedAt
			p.UpdatedBy = row.UpdatedBy
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) Set(ctx context.Context, key string, value decimal.Decimal, actorID string) (Parameter, error) {
	if err := Validate(key, value); err != nil {
		return Parameter{}, err
	}
	def, _ := Lookup(key)
	stored, updatedAt, err := s.store.Upsert(ctx, key, value, actorID)
	if err != nil {
		return Parameter{}, fmt.Errorf("store parameter %s: %w", key, err)
	}
	return Parameter{
		Key:       key,
		Section:   def.Section,
		Label:     def.Label,
		Value:     stored,
		UpdatedAt: &updatedAt,
		UpdatedBy: actorID,
	}, nil
}

func (s *Service) ExchangeRate(ctx context.Context) (ExchangeRate, error) {
	row, found, err := s.store.Get(ctx, KeyUSDRate)
	if err != nil {
		return ExchangeRate{}, err
	}
	if !found {
		def, _ := Lookup(KeyUSDRate)
		return ExchangeRate{Rate: def.Default}, nil
	}
	updatedAt := row.UpdatedAt
	return ExchangeRate{Rate: row.Value, UpdatedAt: &updatedAt}, nil
}

// JobDefaults are the initial fees of a new job for the given professional.
func (s *Service) JobDefaults(ctx context.Context, userID string) (costing.Fees, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return costing.Fees{}, err
	}
	prefs, err := s.store.Preferences(ctx, userID)
	if err != nil {
		return costing.Fees{}, err
	}
	return MergeJobDefaults(snapshot.JobDefaults, prefs), nil
}

func (s *Service) Preferences(ctx context.Context, userID string) ([]Preference, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	prefs, err := s.store.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	global := JobDefaultValues(snapshot.JobDefaults)
	keys := JobDefaultKeys()
	out := make([]Preference, 0, len(keys))
	for _, key := range keys {
		def, _ := Lookup(key)
		pref := Preference{Key: key, Label: def.Label, Value: global[key]}
		if v, ok := prefs[key]; ok {
			pref.Value = v
			pref.Custom = true
		}
		out = append(out, pref)
	}
	return out, nil
}

// SetPreferences replaces the professional's overrides. Keys left out fall
// back to the global default again.
func (s *Service) SetPreferences(ctx context.Context, userID string, values map[string]decimal.Decimal) error {
	for key, value := range values {
		if !IsJobDefault(key) {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		if err := Validate(key, value); err != nil {
			return err
		}
	}
	return s.store.ReplacePreferences(ctx, userID, values)
}

// SeedDefaults stores the registry default of every key not yet written.
func (s *Service) SeedDefaults(ctx context.Context) error {
	for _, def := range Definitions() {
		if err := s.store.InsertDefault(ctx, def.Key, def.Default); err != nil {
			return fmt.Errorf("seed parameter %s: %w", def.Key, err)
		}
	}
	return nil
}

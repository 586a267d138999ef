package fleet

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"costos/internal/domain/costing"
)

// Store scopes every query to the owning company; a row of another
// company is reported as ErrNotFound.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const vehicleColumns = `id, company_id, name, value, annual_km, fuel_type, efficiency, registration_fee,
           insurance, garage, lubricant, wash, tire, service, annual_repairs, roadworthiness,
           created_at, updated_at`

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	var v Vehicle
	var fuel string
	err := row.Scan(&v.ID, &v.CompanyID, &v.Name, &v.Value, &v.AnnualKm, &fuel, &v.Efficiency, &v.RegistrationFee,
		&v.Insurance, &v.Garage, &v.Lubricant, &v.Wash, &v.Tire, &v.Service, &v.AnnualRepairs, &v.Roadworthiness,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.FuelType = costing.FuelType(fuel)
	return &v, nil
}

func (s *Store) ListVehicles(ctx context.Context, companyID string) ([]*Vehicle, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+vehicleColumns+`
    FROM vehicles
    WHERE company_id = $1
    ORDER BY name
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) GetVehicle(ctx context.Context, companyID, id string) (*Vehicle, error) {
	v, err := scanVehicle(s.DB.QueryRow(ctx, `
    SELECT `+vehicleColumns+`
    FROM vehicles
    WHERE company_id = $1 AND id = $2
  `, companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *Store) CreateVehicle(ctx context.Context, companyID string, in VehicleInput) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO vehicles (company_id, name, value, annual_km, fuel_type, efficiency, registration_fee,
                          insurance, garage, lubricant, wash, tire, service, annual_repairs, roadworthiness)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
    RETURNING id
  `, companyID, strings.TrimSpace(in.Name), in.Value, in.AnnualKm, in.FuelType, in.efficiency(), in.RegistrationFee,
		in.Insurance, in.Garage, in.Lubricant, in.Wash, in.Tire, in.Service, in.AnnualRepairs, in.Roadworthiness).Scan(&id)
	return id, err
}

func (s *Store) UpdateVehicle(ctx context.Context, companyID, id string, in VehicleInput) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE vehicles
    SET name = $3, value = $4, annual_km = $5, fuel_type = $6, efficiency = $7, registration_fee = $8,
        insurance = $9, garage = $10, lubricant = $11, wash = $12, tire = $13, service = $14,
        annual_repairs = $15, roadworthiness = $16, updated_at = now()
    WHERE company_id = $1 AND id = $2
  `, companyID, id, strings.TrimSpace(in.Name), in.Value, in.AnnualKm, in.FuelType, in.efficiency(), in.RegistrationFee,
		in.Insurance, in.Garage, in.Lubricant, in.Wash, in.Tire, in.Service, in.AnnualRepairs, in.Roadworthiness)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteVehicle(ctx context.Context, companyID, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM vehicles WHERE company_id = $1 AND id = $2", companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const instrumentColumns = "id, company_id, name, value_usd, useful_life, created_at, updated_at"

func scanInstrument(row pgx.Row) (*Instrument, error) {
	var i Instrument
	if err := row.Scan(&i.ID, &i.CompanyID, &i.Name, &i.ValueUSD, &i.UsefulLife, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *Store) ListInstruments(ctx context.Context, companyID string) ([]*Instrument, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+instrumentColumns+`
    FROM instruments
    WHERE company_id = $1
    ORDER BY name
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Instrument{}
	for rows.Next() {
		i, err := scanInstrument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *Store) GetInstrument(ctx context.Context, companyID, id string) (*Instrument, error) {
	i, err := scanInstrument(s.DB.QueryRow(ctx, `
    SELECT `+instrumentColumns+`
    FROM instruments
    WHERE company_id = $1 AND id = $2
  `, companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return i, err
}

func (s *Store) CreateInstrument(ctx context.Context, companyID string, in InstrumentInput) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO instruments (company_id, name, value_usd, useful_life)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, companyID, strings.TrimSpace(in.Name), in.ValueUSD, in.usefulLife()).Scan(&id)
	return id, err
}

func (s *Store) UpdateInstrument(ctx context.Context, companyID, id string, in InstrumentInput) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE instruments
    SET name = $3, value_usd = $4, useful_life = $5, updated_at = now()
    WHERE company_id = $1 AND id = $2
  `, companyID, id, strings.TrimSpace(in.Name), in.ValueUSD, in.usefulLife())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteInstrument(ctx context.Context, companyID, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM instruments WHERE company_id = $1 AND id = $2", companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

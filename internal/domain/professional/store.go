package professional

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"costos/internal/domain/auth"
	"costos/internal/domain/expenses"
)

type Store struct {
	DB       *pgxpool.Pool
	Expenses *expenses.Store
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db, Expenses: expenses.NewStore(db)}
}

const selectProfessional = `
    SELECT u.id, u.username, u.email, u.first_name, u.last_name, COALESCE(u.license_number, ''),
           u.cuit, u.cuit_enc, u.phone, r.name, COALESCE(u.company_id::text, ''), COALESCE(c.name, ''),
           c.weekly_hours, u.created_at
    FROM users u
    JOIN roles r ON r.id = u.role_id
    LEFT JOIN companies c ON c.id = u.company_id
  `

func scanProfessional(row pgx.Row) (*Professional, error) {
	var p Professional
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.FirstName, &p.LastName, &p.LicenseNumber,
		&p.CUIT, &p.cuitEnc, &p.Phone, &p.RoleName, &p.CompanyID, &p.CompanyName,
		&p.companyWeeklyHours, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Professional, error) {
	p, err := scanProfessional(s.DB.QueryRow(ctx, selectProfessional+" WHERE u.id = $1 AND u.status = $2", id, auth.UserStatusActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	list, err := s.Expenses.List(ctx, nil, expenses.ProfessionalOwner(id))
	if err != nil {
		return nil, err
	}
	p.Expenses = list
	return p, nil
}

// ListByCompany returns the company's active members with their personal
// expenses loaded.
func (s *Store) ListByCompany(ctx context.Context, companyID string) ([]*Professional, error) {
	rows, err := s.DB.Query(ctx, selectProfessional+`
    WHERE u.company_id = $1 AND u.status = $2
    ORDER BY u.last_name, u.first_name, u.username
  `, companyID, auth.UserStatusActive)
	if err != nil {
		return nil, err
	}
	var out []*Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range out {
		list, err := s.Expenses.List(ctx, nil, expenses.ProfessionalOwner(p.ID))
		if err != nil {
			return nil, err
		}
		p.Expenses = list
	}
	return out, nil
}

// UpdateProfile saves the profile and replaces the personal expenses in one
// transaction.
func (s *Store) UpdateProfile(ctx context.Context, id string, in ProfileInput, cuit string, cuitEnc []byte) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
    UPDATE users
    SET email = $1, first_name = $2, last_name = $3, license_number = $4,
        cuit = $5, cuit_enc = $6, phone = $7, updated_at = now()
    WHERE id = $8 AND status = $9
  `, strings.TrimSpace(in.Email), strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName),
		nullIfEmpty(strings.TrimSpace(in.LicenseNumber)), cuit, cuitEnc, strings.TrimSpace(in.Phone),
		id, auth.UserStatusActive)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := s.Expenses.Replace(ctx, tx, expenses.ProfessionalOwner(id), in.Expenses); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateAccount inserts an active user. companyID may be empty.
func (s *Store) CreateAccount(ctx context.Context, in AccountInput, passwordHash, roleID, companyID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (username, email, password_hash, role_id, company_id, first_name, last_name, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING id
  `, strings.TrimSpace(in.Username), strings.TrimSpace(in.Email), passwordHash, roleID, nullIfEmpty(companyID),
		strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), auth.UserStatusActive).Scan(&id)
	if err != nil {
		return "", mapUniqueViolation(err)
	}
	return id, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "license") {
		return ErrLicenseTaken
	}
	return ErrUsernameTaken
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

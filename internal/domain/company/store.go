package company

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"costos/internal/domain/expenses"
)

type Store struct {
	DB       *pgxpool.Pool
	Expenses *expenses.Store
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db, Expenses: expenses.NewStore(db)}
}

// Create inserts the company with its expenses and makes the creator a
// member, all in one transaction.
func (s *Store) Create(ctx context.Context, creatorID string, in Input) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var current *string
	if err := tx.QueryRow(ctx, "SELECT company_id::text FROM users WHERE id = $1 FOR UPDATE", creatorID).Scan(&current); err != nil {
		return "", err
	}
	if current != nil {
		return "", ErrAlreadyMember
	}

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO companies (name, weekly_hours)
    VALUES ($1, $2)
    RETURNING id
  `, strings.TrimSpace(in.Name), in.WeeklyHours).Scan(&id); err != nil {
		return "", err
	}
	if err := s.Expenses.Replace(ctx, tx, expenses.CompanyOwner(id), in.Expenses); err != nil {
		return "", err
	}
	if _, err := tx.Exec(ctx, "UPDATE users SET company_id = $1, updated_at = now() WHERE id = $2", id, creatorID); err != nil {
		return "", err
	}
	return id, tx.Commit(ctx)
}

func (s *Store) Get(ctx context.Context, id string) (*Company, error) {
	var c Company
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, weekly_hours, created_at, updated_at
    FROM companies
    WHERE id = $1
  `, id).Scan(&c.ID, &c.Name, &c.WeeklyHours, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	list, err := s.Expenses.List(ctx, nil, expenses.CompanyOwner(id))
	if err != nil {
		return nil, err
	}
	c.Expenses = list
	return &c, nil
}

// Update rewrites the company and replaces its expenses atomically.
func (s *Store) Update(ctx context.Context, id string, in Input) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(ctx, `
    UPDATE companies
    SET name = $1, weekly_hours = $2, updated_at = now()
    WHERE id = $3
  `, strings.TrimSpace(in.Name), in.WeeklyHours, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := s.Expenses.Replace(ctx, tx, expenses.CompanyOwner(id), in.Expenses); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT c.id, c.name, c.weekly_hours, c.created_at,
           (SELECT COUNT(1) FROM users u WHERE u.company_id = c.id),
           (SELECT COUNT(1) FROM vehicles v WHERE v.company_id = c.id),
           (SELECT COUNT(1) FROM instruments i WHERE i.company_id = c.id)
    FROM companies c
    ORDER BY c.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.WeeklyHours, &sum.CreatedAt, &sum.Professionals, &sum.Vehicles, &sum.Instruments); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *Store) Name(ctx context.Context, id string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, "SELECT name FROM companies WHERE id = $1", id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return name, err
}

package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"costos/internal/domain/costing"
	"costos/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ListTypes(ctx context.Context) ([]Type, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name FROM expense_types ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Type
	for rows.Next() {
		var t Type
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CreateType(ctx context.Context, name string) (Type, error) {
	t := Type{Name: strings.TrimSpace(name)}
	err := s.DB.QueryRow(ctx, "INSERT INTO expense_types (name) VALUES ($1) RETURNING id", t.Name).Scan(&t.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Type{}, ErrTypeExists
		}
		return Type{}, err
	}
	return t, nil
}

// EnsureType is used by the seed; existing names are left alone.
func (s *Store) EnsureType(ctx context.Context, name string) error {
	_, err := s.DB.Exec(ctx, "INSERT INTO expense_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
	return err
}

func ownerColumn(kind OwnerKind) (string, error) {
	switch kind {
	case OwnerCompany:
		return "company_id", nil
	case OwnerProfessional:
		return "user_id", nil
	default:
		return "", fmt.Errorf("unknown expense owner %q", kind)
	}
}

// List returns the owner's expenses, optionally inside a transaction.
func (s *Store) List(ctx context.Context, q querier.Querier, owner Owner) ([]Expense, error) {
	if q == nil {
		q = s.DB
	}
	column, err := ownerColumn(owner.Kind)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `
    SELECT e.id, e.expense_type_id, t.name, e.description, e.amount, e.period
    FROM expenses e
    JOIN expense_types t ON t.id = e.expense_type_id
    WHERE e.owner_kind = $1 AND e.`+column+` = $2
    ORDER BY t.name, e.created_at
  `, string(owner.Kind), owner.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Expense{}
	for rows.Next() {
		var e Expense
		var period int
		if err := rows.Scan(&e.ID, &e.TypeID, &e.TypeName, &e.Description, &e.Amount, &period); err != nil {
			return nil, err
		}
		e.Period = costing.Period(period)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Replace swaps the owner's whole expense set. It must run inside the
// transaction that saves the owner.
func (s *Store) Replace(ctx context.Context, q querier.Querier, owner Owner, items []Input) error {
	column, err := ownerColumn(owner.Kind)
	if err != nil {
		return err
	}
	if _, err := q.Exec(ctx, "DELETE FROM expenses WHERE owner_kind = $1 AND "+column+" = $2", string(owner.Kind), owner.ID); err != nil {
		return err
	}
	for _, item := range items {
		_, err := q.Exec(ctx, `
      INSERT INTO expenses (owner_kind, `+column+`, expense_type_id, description, amount, period)
      VALUES ($1, $2, $3, $4, $5, $6)
    `, string(owner.Kind), owner.ID, item.TypeID, strings.TrimSpace(item.Description), item.Amount, item.Period)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return fmt.Errorf("%w: %s", ErrUnknownType, item.TypeID)
			}
			return err
		}
	}
	return nil
}

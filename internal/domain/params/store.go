package params

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type storedValue struct {
	Key       string
	Value     decimal.Decimal
	UpdatedAt time.Time
	UpdatedBy string
}

func (s *Store) List(ctx context.Context) ([]storedValue, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT key, value, updated_at, COALESCE(updated_by::text, '')
    FROM global_parameters
    ORDER BY key
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storedValue
	for rows.Next() {
		var v storedValue
		if err := rows.Scan(&v.Key, &v.Value, &v.UpdatedAt, &v.UpdatedBy); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Get returns found=false when the key was never written.
func (s *Store) Get(ctx context.Context, key string) (storedValue, bool, error) {
	var v storedValue
	err := s.DB.QueryRow(ctx, `
    SELECT key, value, updated_at, COALESCE(updated_by::text, '')
    FROM global_parameters
    WHERE key = $1
  `, key).Scan(&v.Key, &v.Value, &v.UpdatedAt, &v.UpdatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return storedValue{}, false, nil
	}
	if err != nil {
		return storedValue{}, false, err
	}
	return v, true, nil
}

// Upsert overwrites the stored value and returns it as the column keeps it;
// concurrent writers resolve as last write wins.
func (s *Store) Upsert(ctx context.Context, key string, value decimal.Decimal, actorID string) (decimal.Decimal, time.Time, error) {
	var (
		stored    decimal.Decimal
		updatedAt time.Time
	)
	err := s.DB.QueryRow(ctx, `
    INSERT INTO global_parameters (key, value, updated_at, updated_by)
    VALUES ($1, $2, now(), $3)
    ON CONFLICT (key)
    DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by
    RETURNING value, updated_at
  `, key, value, nullIfEmpty(actorID)).Scan(&stored, &updatedAt)
	return stored, updatedAt, err
}

// InsertDefault writes a value only when the key is absent.
func (s *Store) InsertDefault(ctx context.Context, key string, value decimal.Decimal) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO global_parameters (key, value)
    VALUES ($1, $2)
    ON CONFLICT (key) DO NOTHING
  `, key, value)
	return err
}

func (s *Store) Preferences(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT key, value
    FROM professional_preferences
    WHERE user_id = $1
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var key string
		var value decimal.Decimal
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

func (s *Store) ReplacePreferences(ctx context.Context, userID string, values map[string]decimal.Decimal) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM professional_preferences WHERE user_id = $1", userID); err != nil {
		return err
	}
	for key, value := range values {
		if _, err := tx.Exec(ctx, `
      INSERT INTO professional_preferences (user_id, key, value)
      VALUES ($1, $2, $3)
    `, userID, key, value); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"costos/internal/domain/auth"
	"costos/internal/domain/expenses"
	"costos/internal/domain/params"
	"costos/internal/platform/config"
)

// DefaultExpenseTypes are the categories a fresh installation starts with.
// Admins add more through the API.
var DefaultExpenseTypes = []string{
	"Alquiler",
	"Servicios",
	"Impuestos",
	"Seguros",
	"Sueldos",
	"Honorarios contables",
	"Telefonía e internet",
	"Matrícula profesional",
	"Obra social",
	"Aportes jubilatorios",
}

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensurePermissions(ctx, pool); err != nil {
		return err
	}

	roleIDs, err := ensureRoles(ctx, pool)
	if err != nil {
		return err
	}

	if err := ensureRolePermissions(ctx, pool, roleIDs); err != nil {
		return err
	}

	types := expenses.NewStore(pool)
	for _, name := range DefaultExpenseTypes {
		if err := types.EnsureType(ctx, name); err != nil {
			return err
		}
	}

	if err := params.NewService(params.NewStore(pool)).SeedDefaults(ctx); err != nil {
		return err
	}

	return ensureAdminUser(ctx, pool, roleIDs[auth.RoleAdmin], cfg.SeedAdminUsername, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensurePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, perm := range auth.DefaultPermissions {
		_, err := pool.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range auth.RolePermissions {
		var id string
		err := pool.QueryRow(ctx, `
    INSERT INTO roles (name) VALUES ($1)
    ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
    RETURNING id
  `, roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleIDs map[string]string) error {
	permMap := map[string]string{}
	rows, err := pool.Query(ctx, "SELECT id, key FROM permissions")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			return err
		}
		permMap[key] = id
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for roleName, perms := range auth.RolePermissions {
		roleID := roleIDs[roleName]
		for _, permKey := range perms {
			permID, ok := permMap[permKey]
			if !ok {
				return errors.New("permission not found: " + permKey)
			}
			_, err := pool.Exec(ctx, "INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, permID)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// ensureAdminUser creates the first administrator once. An existing account
// with the same username is left untouched.
func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, roleID, username, email, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", username).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, "INSERT INTO users (username, email, password_hash, role_id) VALUES ($1, $2, $3, $4)", username, strings.TrimSpace(email), hash, roleID)
	return err
}

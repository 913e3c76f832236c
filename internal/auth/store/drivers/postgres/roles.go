package postgres

import (
	"context"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"

	"github.com/jackc/pgx/v5"
)

type rolesRepo struct{ q DBTX }

var _ store.Roles = (*rolesRepo)(nil)

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	var role domain.Role
	err := r.q.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	if err != nil {
		return domain.Role{}, mapError(err)
	}
	return role, nil
}

// CreateRole skips name clashes instead of raising them, so a caller that lost
// a creation race can still read the winner inside the same transaction.
func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	tag, err := r.q.Exec(ctx,
		`INSERT INTO roles (id, name, description, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (name) DO NOTHING`,
		role.ID, role.Name, role.Description, orNow(role.CreatedAt))
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, description, created_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, mapError(err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Role, error) {
		var role domain.Role
		err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
		return role, err
	})
}

package sqlite

import (
	"context"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
)

type rolesRepo struct{ q DBTX }

var _ store.Roles = (*rolesRepo)(nil)

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	var (
		role    domain.Role
		created int64
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM roles WHERE name = ?`, name).
		Scan(&role.ID, &role.Name, &role.Description, &created)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	role.CreatedAt = fromMillis(created)
	return role, nil
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	created := toMillis(role.CreatedAt)
	if role.CreatedAt.IsZero() {
		created = now()
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO roles (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		role.ID, role.Name, role.Description, created)
	return mapConstraint(err)
}

func (r *rolesRepo) ListAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name, description, created_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Role
	for rows.Next() {
		var (
			role    domain.Role
			created int64
		)
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &created); err != nil {
			return nil, err
		}
		role.CreatedAt = fromMillis(created)
		out = append(out, role)
	}
	return out, rows.Err()
}

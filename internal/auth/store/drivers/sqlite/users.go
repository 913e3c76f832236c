package sqlite

import (
	"context"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
)

type usersRepo struct{ q DBTX }

var _ store.Users = (*usersRepo)(nil)

const userColumns = `id, username, email, password_hash, first_name, last_name, active, created_at, updated_at`

func (r *usersRepo) getUser(ctx context.Context, where string, arg any) (domain.User, error) {
	var (
		u                domain.User
		active           int64
		created, updated int64
	)
	err := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = ?`, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &active, &created, &updated)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Active = active != 0
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)

	roles, err := r.roleNames(ctx, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	u.Roles = roles
	return u, nil
}

func (r *usersRepo) roleNames(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT r.name FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ?
		ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getUser(ctx, "id", id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getUser(ctx, "username", username)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getUser(ctx, "email", email)
}

func (r *usersRepo) exists(ctx context.Context, column, value string) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE `+column+` = ?)`, value).Scan(&n)
	return n != 0, err
}

func (r *usersRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *usersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	created := toMillis(u.CreatedAt)
	if u.CreatedAt.IsZero() {
		created = now()
	}
	updated := created
	if !u.UpdatedAt.IsZero() {
		updated = toMillis(u.UpdatedAt)
	}

	_, err := r.q.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, boolToInt(u.Active), created, updated)
	return mapConstraint(err)
}

func (r *usersRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING`, userID, roleID)
	return err
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE users SET active = ?, updated_at = ? WHERE id = ?`, boolToInt(active), now(), userID))
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

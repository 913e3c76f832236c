package sqlite

import (
	"context"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
)

type todosRepo struct{ q DBTX }

var _ store.Todos = (*todosRepo)(nil)

const todoColumns = `id, user_id, title, description, completed, priority, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(s rowScanner) (domain.Todo, error) {
	var (
		t                domain.Todo
		completed        int64
		created, updated int64
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &completed, &t.Priority, &created, &updated); err != nil {
		return domain.Todo{}, err
	}
	t.Completed = completed != 0
	t.CreatedAt = fromMillis(created)
	t.UpdatedAt = fromMillis(updated)
	return t, nil
}

func (r *todosRepo) CreateTodo(ctx context.Context, t domain.Todo) error {
	created := toMillis(t.CreatedAt)
	if t.CreatedAt.IsZero() {
		created = now()
	}
	_, err := r.q.ExecContext(ctx, `INSERT INTO todos (`+todoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.Description, boolToInt(t.Completed), t.Priority, created, created)
	return mapConstraint(err)
}

func (r *todosRepo) GetTodo(ctx context.Context, userID, id string) (domain.Todo, error) {
	t, err := scanTodo(r.q.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = ? AND user_id = ?`, id, userID))
	if err != nil {
		return domain.Todo{}, mapNotFound(err)
	}
	return t, nil
}

func (r *todosRepo) ListTodos(ctx context.Context, userID string, f store.TodoFilter) ([]domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = ?`
	args := []any{userID}
	if f.Completed != nil {
		query += ` AND completed = ?`
		args = append(args, boolToInt(*f.Completed))
	}
	query += ` ORDER BY priority DESC, created_at ASC, id ASC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *todosRepo) UpdateTodo(ctx context.Context, t domain.Todo) error {
	return requireAffected(r.q.ExecContext(ctx, `
		UPDATE todos SET title = ?, description = ?, completed = ?, priority = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, boolToInt(t.Completed), t.Priority, now(), t.ID, t.UserID))
}

func (r *todosRepo) DeleteTodo(ctx context.Context, userID, id string) error {
	return requireAffected(r.q.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID))
}

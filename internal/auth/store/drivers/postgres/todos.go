package postgres

import (
	"context"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"

	"github.com/jackc/pgx/v5"
)

type todosRepo struct{ q DBTX }

var _ store.Todos = (*todosRepo)(nil)

const todoColumns = `id, user_id, title, description, completed, priority, created_at, updated_at`

func scanTodo(row pgx.Row) (domain.Todo, error) {
	var t domain.Todo
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.Priority, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *todosRepo) CreateTodo(ctx context.Context, t domain.Todo) error {
	created := orNow(t.CreatedAt)
	_, err := r.q.Exec(ctx, `INSERT INTO todos (`+todoColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		t.ID, t.UserID, t.Title, t.Description, t.Completed, t.Priority, created)
	return mapError(err)
}

func (r *todosRepo) GetTodo(ctx context.Context, userID, id string) (domain.Todo, error) {
	t, err := scanTodo(r.q.QueryRow(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return domain.Todo{}, mapError(err)
	}
	return t, nil
}

func (r *todosRepo) ListTodos(ctx context.Context, userID string, f store.TodoFilter) ([]domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1`
	args := []any{userID}
	if f.Completed != nil {
		query += ` AND completed = $2`
		args = append(args, *f.Completed)
	}
	query += ` ORDER BY priority DESC, created_at ASC, id ASC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Todo, error) {
		return scanTodo(row)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Todo{}
	}
	return out, nil
}

func (r *todosRepo) UpdateTodo(ctx context.Context, t domain.Todo) error {
	return requireAffected(r.q.Exec(ctx, `
		UPDATE todos SET title = $1, description = $2, completed = $3, priority = $4, updated_at = now()
		WHERE id = $5 AND user_id = $6`,
		t.Title, t.Description, t.Completed, t.Priority, t.ID, t.UserID))
}

func (r *todosRepo) DeleteTodo(ctx context.Context, userID, id string) error {
	return requireAffected(r.q.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID))
}

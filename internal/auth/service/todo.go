package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
	"github.com/aussiebroadwan/taskgate/pkg/idx"
	"github.com/aussiebroadwan/taskgate/pkg/slogx"
)

// MaxTodoTitle is the longest title accepted, in runes.
const MaxTodoTitle = 200

// TodoService manages todos. Every call is scoped to the owning user; a todo
// owned by someone else is reported as not found.
type TodoService struct {
	Store store.Store
	Now   func() time.Time
}

type TodoInput struct {
	Title       string
	Description string
	Completed   bool
	Priority    int
}

func validTodo(t domain.Todo) bool {
	title := strings.TrimSpace(t.Title)
	return title != "" && len([]rune(title)) <= MaxTodoTitle && t.Priority >= 0
}

func (s *TodoService) Create(ctx context.Context, userID string, in TodoInput) (domain.Todo, error) {
	now := nowOrWall(s.Now)
	t := domain.Todo{
		ID:          idx.NewAt(now).String(),
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Completed:   in.Completed,
		Priority:    in.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !validTodo(t) {
		return domain.Todo{}, ErrInvalidTodo
	}
	if err := s.Store.Todos().CreateTodo(ctx, t); err != nil {
		return domain.Todo{}, err
	}
	slogx.FromContext(ctx).Debug("todo created", slog.String("todo_id", t.ID))
	return t, nil
}

func (s *TodoService) Get(ctx context.Context, userID, id string) (domain.Todo, error) {
	t, err := s.Store.Todos().GetTodo(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Todo{}, ErrTodoNotFound
	}
	return t, err
}

// List returns the user's todos, highest priority first. A nil completed
// returns all of them.
func (s *TodoService) List(ctx context.Context, userID string, completed *bool) ([]domain.Todo, error) {
	return s.Store.Todos().ListTodos(ctx, userID, store.TodoFilter{Completed: completed})
}

// Update applies a partial update and returns the stored result.
func (s *TodoService) Update(ctx context.Context, userID, id string, patch domain.TodoPatch) (domain.Todo, error) {
	var out domain.Todo
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := tx.Todos().GetTodo(ctx, userID, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTodoNotFound
			}
			return err
		}

		patch.Apply(&t)
		t.Title = strings.TrimSpace(t.Title)
		if !validTodo(t) {
			return ErrInvalidTodo
		}
		if err := tx.Todos().UpdateTodo(ctx, t); err != nil {
			return err
		}

		out, err = tx.Todos().GetTodo(ctx, userID, id)
		return err
	})
	return out, err
}

func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	err := s.Store.Todos().DeleteTodo(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTodoNotFound
	}
	return err
}

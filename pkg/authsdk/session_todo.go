package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// CreateTodo creates a todo owned by the session's user.
func (s *Session) CreateTodo(ctx context.Context, in CreateTodoRequest) (*Todo, error) {
	var todo Todo
	if err := s.doAuth(ctx, http.MethodPost, "/todos", in, &todo, http.StatusCreated); err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListTodos returns the user's todos, highest priority first.
func (s *Session) ListTodos(ctx context.Context) ([]Todo, error) {
	var todos []Todo
	if err := s.doAuth(ctx, http.MethodGet, "/todos", nil, &todos, http.StatusOK); err != nil {
		return nil, err
	}
	return todos, nil
}

// ListTodosByCompleted filters the user's todos on their completed flag.
func (s *Session) ListTodosByCompleted(ctx context.Context, completed bool) ([]Todo, error) {
	q := url.Values{"completed": {strconv.FormatBool(completed)}}

	var todos []Todo
	if err := s.doAuth(ctx, http.MethodGet, "/todos/filter/completed?"+q.Encode(), nil, &todos, http.StatusOK); err != nil {
		return nil, err
	}
	return todos, nil
}

func (s *Session) GetTodo(ctx context.Context, id string) (*Todo, error) {
	var todo Todo
	if err := s.doAuth(ctx, http.MethodGet, "/todos/"+url.PathEscape(id), nil, &todo, http.StatusOK); err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo applies a partial update.
func (s *Session) UpdateTodo(ctx context.Context, id string, in UpdateTodoRequest) (*Todo, error) {
	var todo Todo
	if err := s.doAuth(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), in, &todo, http.StatusOK); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (s *Session) DeleteTodo(ctx context.Context, id string) error {
	return s.doAuth(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil, http.StatusOK)
}

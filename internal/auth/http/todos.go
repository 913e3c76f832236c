package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/service"
	"github.com/aussiebroadwan/taskgate/pkg/authsdk"
	"github.com/aussiebroadwan/taskgate/pkg/httpx"
)

// TodosHandler serves the owner-scoped todo resource. Every handler is
// mounted behind RequireAuthenticated, so a principal is always present.
type TodosHandler struct {
	Todos *service.TodoService
}

func ownerID(r *http.Request) string {
	return httpx.PrincipalFromContext(r.Context()).UserID
}

// HandleCreate godoc
//
//	@Summary	Create a todo
//	@Tags		Todos
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		authsdk.CreateTodoRequest		true	"Todo"
//	@Success	201		{object}	authsdk.Response[authsdk.Todo]	"Todo created successfully"
//	@Failure	400		{object}	httpx.ErrorResponse				"Validation failed"
//	@Failure	401		{object}	httpx.ErrorResponse				"Invalid or missing access token"
//	@Router		/todos [post].
func (h *TodosHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateTodoRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	todo, err := h.Todos.Create(r.Context(), ownerID(r), service.TodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteSuccess(w, http.StatusCreated, "Todo created successfully", todo)
}

// HandleList godoc
//
//	@Summary		List todos
//	@Description	Highest priority first, then oldest first.
//	@Tags			Todos
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Response[[]authsdk.Todo]	"Todos retrieved successfully"
//	@Failure		401	{object}	httpx.ErrorResponse					"Invalid or missing access token"
//	@Router			/todos [get].
func (h *TodosHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, nil)
}

// HandleListByCompleted godoc
//
//	@Summary	List todos by completion state
//	@Tags		Todos
//	@Security	BearerAuth
//	@Produce	json
//	@Param		completed	query		bool								true	"Completion state"
//	@Success	200			{object}	authsdk.Response[[]authsdk.Todo]	"Todos retrieved successfully"
//	@Failure	400			{object}	httpx.ErrorResponse					"completed is not a boolean"
//	@Failure	401			{object}	httpx.ErrorResponse					"Invalid or missing access token"
//	@Router		/todos/filter/completed [get].
func (h *TodosHandler) HandleListByCompleted(w http.ResponseWriter, r *http.Request) {
	completed, err := strconv.ParseBool(r.URL.Query().Get("completed"))
	if err != nil {
		httpx.WriteValidationError(w, r, map[string]string{"completed": "must be true or false"})
		return
	}
	h.list(w, r, &completed)
}

func (h *TodosHandler) list(w http.ResponseWriter, r *http.Request, completed *bool) {
	todos, err := h.Todos.List(r.Context(), ownerID(r), completed)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Todos retrieved successfully", todos)
}

// HandleGet godoc
//
//	@Summary	Get a todo
//	@Tags		Todos
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string							true	"Todo ID"
//	@Success	200	{object}	authsdk.Response[authsdk.Todo]	"Todo retrieved successfully"
//	@Failure	401	{object}	httpx.ErrorResponse				"Invalid or missing access token"
//	@Failure	404	{object}	httpx.ErrorResponse				"Todo not found"
//	@Router		/todos/{id} [get].
func (h *TodosHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	todo, err := h.Todos.Get(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Todo retrieved successfully", todo)
}

// HandleUpdate godoc
//
//	@Summary		Update a todo
//	@Description	Only the fields present in the body are changed.
//	@Tags			Todos
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Todo ID"
//	@Param			request	body		authsdk.UpdateTodoRequest		true	"Fields to change"
//	@Success		200		{object}	authsdk.Response[authsdk.Todo]	"Todo updated successfully"
//	@Failure		400		{object}	httpx.ErrorResponse				"Validation failed"
//	@Failure		401		{object}	httpx.ErrorResponse				"Invalid or missing access token"
//	@Failure		404		{object}	httpx.ErrorResponse				"Todo not found"
//	@Router			/todos/{id} [put].
func (h *TodosHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateTodoRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	todo, err := h.Todos.Update(r.Context(), ownerID(r), r.PathValue("id"), domain.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Todo updated successfully", todo)
}

// HandleDelete godoc
//
//	@Summary	Delete a todo
//	@Tags		Todos
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string					true	"Todo ID"
//	@Success	200	{object}	httpx.SuccessResponse	"Todo deleted successfully"
//	@Failure	401	{object}	httpx.ErrorResponse		"Invalid or missing access token"
//	@Failure	404	{object}	httpx.ErrorResponse		"Todo not found"
//	@Router		/todos/{id} [delete].
func (h *TodosHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Todos.Delete(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteSuccess(w, http.StatusOK, "Todo deleted successfully", nil)
}

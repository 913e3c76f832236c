package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/taskgate/internal/auth/service"
	"github.com/aussiebroadwan/taskgate/pkg/httpx"
	"github.com/aussiebroadwan/taskgate/pkg/slogx"
)

// MsgUnexpected is the only thing a client learns about an internal failure.
const MsgUnexpected = "An unexpected error occurred"

type errorMapping struct {
	err     error
	status  int
	message string
}

// Specific errors first, then the categories they wrap.
var errorMappings = []errorMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{service.ErrAccountInactive, http.StatusForbidden, "Account is inactive"},
	{service.ErrUsernameTaken, http.StatusConflict, "Username is already taken"},
	{service.ErrEmailTaken, http.StatusConflict, "Email is already in use"},
	{service.ErrPasswordMismatch, http.StatusBadRequest, "Passwords do not match"},
	{service.ErrMissingFields, http.StatusBadRequest, "Username, email and password are required"},
	{service.ErrUsernameLength, http.StatusBadRequest, "Username must be between 3 and 50 characters"},
	{service.ErrInvalidTodo, http.StatusBadRequest, "Title is required and priority must not be negative"},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized, "Invalid refresh token"},
	{service.ErrRefreshTokenExpired, http.StatusUnauthorized, "Refresh token expired or revoked"},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrTodoNotFound, http.StatusNotFound, "Todo not found"},

	{service.ErrValidation, http.StatusBadRequest, "Validation failed"},
	{service.ErrConflict, http.StatusConflict, "Resource already exists"},
	{service.ErrAuth, http.StatusUnauthorized, "Authentication failed"},
	{service.ErrToken, http.StatusUnauthorized, "Invalid token"},
	{service.ErrNotFound, http.StatusNotFound, "Resource not found"},
}

// writeServiceError maps a service error onto the error envelope. Anything
// unrecognised is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			httpx.WriteError(w, r, m.status, m.message)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("request failed", "error", err)
	httpx.WriteError(w, r, http.StatusInternalServerError, MsgUnexpected)
}

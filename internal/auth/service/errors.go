package service

import (
	"errors"
	"fmt"
)

// Username bounds, counted in runes after surrounding whitespace is trimmed.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// Error categories. Handlers map these to status codes with errors.Is; the
// specific errors below wrap exactly one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication failed")
	ErrToken      = errors.New("token rejected")
	ErrNotFound   = errors.New("not found")
)

var (
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrMissingFields    = fmt.Errorf("%w: username, email and password are required", ErrValidation)
	ErrInvalidTodo      = fmt.Errorf("%w: title is required and priority must not be negative", ErrValidation)
	ErrUsernameLength   = fmt.Errorf("%w: username must be between %d and %d characters",
		ErrValidation, MinUsernameLength, MaxUsernameLength)

	ErrUsernameTaken = fmt.Errorf("%w: username is already taken", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email is already in use", ErrConflict)

	// ErrRefreshTokenConflict means a freshly minted refresh token collided
	// with a stored fingerprint.
	ErrRefreshTokenConflict = fmt.Errorf("%w: refresh token already exists", ErrConflict)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuth)
	ErrAccountInactive    = fmt.Errorf("%w: account inactive", ErrAuth)

	ErrInvalidRefreshToken = fmt.Errorf("%w: invalid refresh token", ErrToken)
	ErrRefreshTokenExpired = fmt.Errorf("%w: refresh token expired or revoked", ErrToken)

	ErrUserNotFound = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrTodoNotFound = fmt.Errorf("%w: todo not found", ErrNotFound)
)

func isServiceError(err error) bool {
	for _, cat := range []error{ErrValidation, ErrConflict, ErrAuth, ErrToken, ErrNotFound} {
		if errors.Is(err, cat) {
			return true
		}
	}
	return false
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrNestedTx      = errors.New("store: nested transactions are not supported")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so a Tx can hand out the same repositories bound to the
// transaction.
type Store interface {
	Users() Users
	Roles() Roles
	RefreshTokens() RefreshTokens
	Todos() Todos

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Prefer this over
	// Tx.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user, with role names, by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used by the request authentication gate.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByEmail is used during login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CreateUser inserts a new user (id is provided by app via ULID). Roles
	// are attached separately with AssignRole. Returns ErrAlreadyExists on a
	// username or email clash.
	CreateUser(ctx context.Context, u domain.User) error

	// AssignRole links a role to a user. Assigning twice is a no-op.
	AssignRole(ctx context.Context, userID, roleID string) error

	// SetActive flips the active flag and bumps updated_at.
	SetActive(ctx context.Context, userID string, active bool) error
}

type Roles interface {
	// GetRoleByName matches the name case-sensitively.
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)
	// CreateRole inserts a new role (id is ULID). ErrAlreadyExists on a name clash.
	CreateRole(ctx context.Context, r domain.Role) error
	// ListAll returns all roles ordered by name.
	ListAll(ctx context.Context) ([]domain.Role, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record. Returns
	// ErrAlreadyExists if the token hash is already present.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the row regardless of revoked/expired
	// state; callers decide what a dead row means.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken sets revoked and bumps updated_at. Revoking an
	// already revoked token succeeds; an unknown hash is ErrNotFound.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllUserRefreshTokens revokes every live token of the user and
	// returns how many were revoked.
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) (int64, error)

	// CountLiveUserRefreshTokens counts non-revoked tokens expiring after now.
	CountLiveUserRefreshTokens(ctx context.Context, userID string, now time.Time) (int, error)

	// DeleteExpiredRefreshTokens removes revoked rows and rows expired at or
	// before now. Housekeeping only.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// TodoFilter narrows ListTodos. Nil fields don't filter.
type TodoFilter struct {
	Completed *bool
}

type Todos interface {
	CreateTodo(ctx context.Context, t domain.Todo) error
	// GetTodo only returns todos owned by userID; anything else is ErrNotFound.
	GetTodo(ctx context.Context, userID, id string) (domain.Todo, error)
	// ListTodos returns the user's todos, highest priority first.
	ListTodos(ctx context.Context, userID string, f TodoFilter) ([]domain.Todo, error)
	// UpdateTodo overwrites the mutable fields and bumps updated_at.
	UpdateTodo(ctx context.Context, t domain.Todo) error
	DeleteTodo(ctx context.Context, userID, id string) error
}

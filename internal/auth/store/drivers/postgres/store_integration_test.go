//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
	"github.com/aussiebroadwan/taskgate/pkg/cryptox"
	"github.com/aussiebroadwan/taskgate/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:18-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	s, err := NewStore(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations(), "second run is a no-op")
	return s
}

func TestIntegration_Store(t *testing.T) {
	ctx := context.Background()
	s := setupPostgres(t)

	role := domain.Role{ID: idx.New().String(), Name: domain.DefaultRoleName}
	require.NoError(t, s.Roles().CreateRole(ctx, role))
	require.ErrorIs(t, s.Roles().CreateRole(ctx, domain.Role{ID: idx.New().String(), Name: role.Name}), store.ErrAlreadyExists)

	user := domain.User{
		ID:           idx.New().String(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Active:       true,
	}
	require.NoError(t, s.Users().CreateUser(ctx, user))
	require.NoError(t, s.Users().AssignRole(ctx, user.ID, role.ID))

	t.Run("user lookups aggregate roles", func(t *testing.T) {
		got, err := s.Users().GetUserByEmail(ctx, user.Email)
		require.NoError(t, err)
		require.Equal(t, []string{domain.DefaultRoleName}, got.Roles)

		_, err = s.Users().GetUserByUsername(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("role name clash leaves the transaction usable", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			dup := domain.Role{ID: idx.New().String(), Name: role.Name}
			require.ErrorIs(t, tx.Roles().CreateRole(ctx, dup), store.ErrAlreadyExists)

			got, err := tx.Roles().GetRoleByName(ctx, role.Name)
			require.NoError(t, err)
			require.Equal(t, role.ID, got.ID)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("refresh token rotation in a transaction", func(t *testing.T) {
		first := domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    user.ID,
			TokenHash: cryptox.FingerprintToken("first"),
			ExpiresAt: time.Now().Add(time.Hour),
		}
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, first))

		err := s.WithTx(ctx, func(tx store.Tx) error {
			if _, err := tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, user.ID); err != nil {
				return err
			}
			return tx.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
				ID:        idx.New().String(),
				UserID:    user.ID,
				TokenHash: cryptox.FingerprintToken("second"),
				ExpiresAt: time.Now().Add(time.Hour),
			})
		})
		require.NoError(t, err)

		n, err := s.RefreshTokens().CountLiveUserRefreshTokens(ctx, user.ID, time.Now())
		require.NoError(t, err)
		require.Equal(t, 1, n)

		got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, first.TokenHash)
		require.NoError(t, err)
		require.True(t, got.Revoked)

		deleted, err := s.RefreshTokens().DeleteExpiredRefreshTokens(ctx, time.Now())
		require.NoError(t, err)
		require.EqualValues(t, 1, deleted)
	})

	t.Run("todos are owner scoped", func(t *testing.T) {
		todo := domain.Todo{ID: idx.New().String(), UserID: user.ID, Title: "write tests", Priority: 2}
		require.NoError(t, s.Todos().CreateTodo(ctx, todo))

		list, err := s.Todos().ListTodos(ctx, user.ID, store.TodoFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)

		_, err = s.Todos().GetTodo(ctx, "someone-else", todo.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, s.Todos().DeleteTodo(ctx, user.ID, todo.ID))
	})
}

package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenUsable(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	live := domain.RefreshToken{ExpiresAt: now.Add(time.Minute)}
	require.True(t, live.Usable(now))

	atExpiry := domain.RefreshToken{ExpiresAt: now}
	require.False(t, atExpiry.Usable(now), "now >= expiresAt is unusable")

	revoked := domain.RefreshToken{ExpiresAt: now.Add(time.Hour), Revoked: true}
	require.False(t, revoked.Usable(now))
}

func TestUserInfoHidesHash(t *testing.T) {
	u := domain.User{ID: "1", Username: "alice", PasswordHash: "$argon2id$secret"}
	info := u.Info()

	require.Equal(t, "alice", info.Username)
	require.NotNil(t, info.Roles)
}

func TestTodoPatchApply(t *testing.T) {
	todo := domain.Todo{Title: "old", Priority: 1}
	title := "new"
	done := true

	domain.TodoPatch{Title: &title, Completed: &done}.Apply(&todo)

	require.Equal(t, "new", todo.Title)
	require.True(t, todo.Completed)
	require.Equal(t, 1, todo.Priority, "unset fields stay put")
}

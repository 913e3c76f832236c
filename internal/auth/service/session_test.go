package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRefreshRotatesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "alice", "a@x.com", "longpass1")

	pair, err := env.auth.Login(ctx, "a@x.com", "longpass1")
	require.NoError(t, err)

	env.clock.Advance(time.Second)
	next, err := env.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	require.NotEqual(t, pair.AccessToken, next.AccessToken)
	require.Equal(t, 1, env.liveTokens(t, "a@x.com"))

	_, err = env.sessions.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrToken)
	require.ErrorIs(t, err, ErrRefreshTokenExpired)

	_, err = env.sessions.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err, "the replacement token is live")
}

func TestRefreshWithoutRotation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.sessions.Rotate = false
	env.register(t, "alice", "a@x.com", "longpass1")

	pair, err := env.auth.Login(ctx, "a@x.com", "longpass1")
	require.NoError(t, err)
	before, err := env.store.RefreshTokens().GetRefreshTokenByHash(ctx, fingerprint(pair.RefreshToken))
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	for range 2 {
		next, err := env.sessions.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, pair.RefreshToken, next.RefreshToken)
	}

	after, err := env.store.RefreshTokens().GetRefreshTokenByHash(ctx, fingerprint(pair.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, before.ExpiresAt, after.ExpiresAt, "expiry is not extended")
}

func TestRefreshRejections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "alice", "a@x.com", "longpass1")

	t.Run("unknown token", func(t *testing.T) {
		_, err := env.sessions.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInvalidRefreshToken)

		_, err = env.sessions.Refresh(ctx, "")
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		pair, err := env.auth.Login(ctx, "a@x.com", "longpass1")
		require.NoError(t, err)

		_, err = env.sessions.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("expired token", func(t *testing.T) {
		pair, err := env.auth.Login(ctx, "a@x.com", "longpass1")
		require.NoError(t, err)

		env.clock.Advance(env.codec.RefreshTTL() + time.Second)
		_, err = env.sessions.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrRefreshTokenExpired)
	})

	t.Run("inactive owner", func(t *testing.T) {
		pair, err := env.auth.Login(ctx, "a@x.com", "longpass1")
		require.NoError(t, err)

		u, err := env.store.Users().GetUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.NoError(t, env.store.Users().SetActive(ctx, u.ID, false))
		t.Cleanup(func() { _ = env.store.Users().SetActive(ctx, u.ID, true) })

		_, err = env.sessions.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrAccountInactive)
	})
}

func TestRefreshRereadsRoles(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "alice", "a@x.com", "longpass1")

	pair, err := env.auth.Login(ctx, "a@x.com", "longpass1")
	require.NoError(t, err)

	require.NoError(t, env.users.GrantRole(ctx, "alice", "ADMIN"))

	next, err := env.sessions.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	claims, err := env.codec.VerifyAccess(next.AccessToken)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"ADMIN", "USER"}, claims.Roles)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "alice", "a@x.com", "longpass1")

	pair, err := env.auth.Login(ctx, "a@x.com", "longpass1")
	require.NoError(t, err)

	require.NoError(t, env.sessions.Logout(ctx, pair.RefreshToken))
	require.NoError(t, env.sessions.Logout(ctx, pair.RefreshToken), "logging out twice succeeds")

	_, err = env.sessions.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrToken)

	require.ErrorIs(t, env.sessions.Logout(ctx, "unknown"), ErrInvalidRefreshToken)
	require.Equal(t, 0, env.liveTokens(t, "a@x.com"))
}

func TestDeactivationRevokesSessions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "alice", "a@x.com", "longpass1")

	_, err := env.auth.Login(ctx, "a@x.com", "longpass1")
	require.NoError(t, err)

	require.NoError(t, env.users.SetActive(ctx, "alice", false))
	require.Equal(t, 0, env.liveTokens(t, "a@x.com"))

	require.ErrorIs(t, env.users.SetActive(ctx, "ghost", false), ErrUserNotFound)
}

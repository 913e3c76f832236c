//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/taskgate/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestSessionLifecycle walks register, login, a protected call, logout and a
// refresh with the revoked token.
func TestSessionLifecycle(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	ctx := t.Context()

	email := registerUser(t, client, "alice")

	tokens, err := client.Login(ctx, email, testPassword)
	require.NoError(t, err)
	assertTokenResponse(t, tokens)

	session := client.NewSessionFromTokens(tokens.AccessToken, tokens.RefreshToken, tokens.ExpiresIn)
	info, err := session.GetUserInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", info.Username)
	require.Equal(t, []string{"USER"}, info.Roles)

	anonymous := client.NewSessionFromTokens("", "", 3600)
	_, err = anonymous.GetUserInfo(ctx)
	assertStatus(t, err, http.StatusUnauthorized, "missing bearer token")

	require.NoError(t, client.Logout(ctx, tokens.RefreshToken))

	_, err = client.Refresh(ctx, tokens.RefreshToken)
	assertStatus(t, err, http.StatusUnauthorized, "refresh after logout")
}

// TestRefreshRotation verifies a refresh token is single-use and the new
// token keeps working.
func TestRefreshRotation(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	ctx := t.Context()

	email := registerUser(t, client, "bob")
	first, err := client.Login(ctx, email, testPassword)
	require.NoError(t, err)

	second, err := client.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, second)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken, "Refresh token should be rotated")

	_, err = client.Refresh(ctx, first.RefreshToken)
	assertStatus(t, err, http.StatusUnauthorized, "replayed refresh token")

	third, err := client.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, third)
}

// TestRefreshWithoutRotation keeps the refresh token when rotation is off.
func TestRefreshWithoutRotation(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t, map[string]string{
		"AUTH_ROTATE_REFRESH": "false",
	}))
	ctx := t.Context()

	email := registerUser(t, client, "carol")
	first, err := client.Login(ctx, email, testPassword)
	require.NoError(t, err)

	second, err := client.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, first.RefreshToken, second.RefreshToken)
}

// TestLoginRevokesEarlierSessions verifies a second login invalidates the
// refresh token handed out by the first.
func TestLoginRevokesEarlierSessions(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	ctx := t.Context()

	email := registerUser(t, client, "dave")
	first, err := client.Login(ctx, email, testPassword)
	require.NoError(t, err)
	second, err := client.Login(ctx, email, testPassword)
	require.NoError(t, err)

	_, err = client.Refresh(ctx, first.RefreshToken)
	assertStatus(t, err, http.StatusUnauthorized, "refresh token from an earlier login")

	_, err = client.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

// TestSessionAutoRefresh lets the SDK session refresh an expired access token.
func TestSessionAutoRefresh(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	ctx := t.Context()

	email := registerUser(t, client, "erin")
	tokens, err := client.Login(ctx, email, testPassword)
	require.NoError(t, err)

	// Pretend the access token already expired.
	session := client.NewSessionFromTokens(tokens.AccessToken, tokens.RefreshToken, 0)
	_, err = session.GetUserInfo(ctx)
	require.NoError(t, err)
	require.NotEqual(t, tokens.RefreshToken, session.RefreshToken())
}

//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/taskgate/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestInvalidCredentials verifies wrong password and unknown email are
// indistinguishable to the caller.
func TestInvalidCredentials(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	ctx := t.Context()

	email := registerUser(t, client, "frank")

	_, wrongPassword := client.Login(ctx, email, "wrong-password")
	assertStatus(t, wrongPassword, http.StatusUnauthorized, "wrong password")

	_, unknownEmail := client.Login(ctx, "nobody@example.com", testPassword)
	assertStatus(t, unknownEmail, http.StatusUnauthorized, "unknown email")

	var a, b *authsdk.APIError
	require.ErrorAs(t, wrongPassword, &a)
	require.ErrorAs(t, unknownEmail, &b)
	require.Equal(t, a.Message, b.Message)
}

// TestInvalidAccessToken verifies a garbage or refresh token is not accepted
// as a bearer credential.
func TestInvalidAccessToken(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	ctx := t.Context()

	session := client.NewSessionFromTokens("invalid-token-12345", "", 3600)
	_, err := session.GetUserInfo(ctx)
	assertStatus(t, err, http.StatusUnauthorized, "garbage bearer token")

	email := registerUser(t, client, "gina")
	tokens, err := client.Login(ctx, email, testPassword)
	require.NoError(t, err)

	session = client.NewSessionFromTokens(tokens.RefreshToken, "", 3600)
	_, err = session.GetUserInfo(ctx)
	assertStatus(t, err, http.StatusUnauthorized, "refresh token used as bearer")
}

// TestDuplicateRegistration verifies username and email uniqueness.
func TestDuplicateRegistration(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainer(t))
	ctx := t.Context()

	registerUser(t, client, "hank")

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "hank", Email: "other@example.com", Password: testPassword,
	})
	assertStatus(t, err, http.StatusConflict, "duplicate username")

	_, err = client.Register(ctx, authsdk.RegisterRequest{
		Username: "hank2", Email: "HANK@example.com", Password: testPassword,
	})
	assertStatus(t, err, http.StatusConflict, "duplicate email, different case")
	require.True(t, authsdk.IsConflict(err))
}

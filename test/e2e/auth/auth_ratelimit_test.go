//go:build e2e

package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/taskgate/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLogin verifies the strict limit (5 req/min) on login, keyed by
// address and email.
func TestRateLimitLogin(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainerWithDefaultRateLimits(t))
	ctx := t.Context()

	for i := range 5 {
		_, err := client.Login(ctx, "victim@example.com", "wrong-password")
		require.Error(t, err)
		require.False(t, authsdk.IsTooManyRequests(err), "Should not be rate limited yet (request %d)", i+1)
	}

	_, err := client.Login(ctx, "victim@example.com", "wrong-password")
	require.True(t, authsdk.IsTooManyRequests(err), "Should be rate limited after 5 requests, got %v", err)

	// A different email from the same address has its own bucket.
	_, err = client.Login(ctx, "someone-else@example.com", "wrong-password")
	require.False(t, authsdk.IsTooManyRequests(err))
}

// TestRateLimitRefresh verifies refresh is limited per address.
func TestRateLimitRefresh(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainerWithDefaultRateLimits(t))
	ctx := t.Context()

	var lastErr error
	for range 6 {
		_, lastErr = client.Refresh(ctx, "not-a-token")
	}
	require.True(t, authsdk.IsTooManyRequests(lastErr), "got %v", lastErr)
}

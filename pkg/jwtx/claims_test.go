package jwtx_test

import (
	"testing"

	"github.com/aussiebroadwan/taskgate/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestClaimsHelpers(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
		Roles:            []string{"USER", "ADMIN"},
	}

	t.Run("username is subject", func(t *testing.T) {
		require.Equal(t, "alice", c.Username())
	})

	t.Run("has role", func(t *testing.T) {
		require.True(t, c.HasRole("ADMIN"))
		require.False(t, c.HasRole("admin"), "role names are case-sensitive")
	})
}

func TestNewJTI(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		id := jwtx.NewJTI()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
	"github.com/stretchr/testify/require"
)

// lateStore hides existing roles from the first lookup, which is what a
// concurrent writer committing between lookup and insert looks like.
type lateStore struct {
	store.Store
	roles *lateRoles
}

func (s lateStore) Roles() store.Roles { return s.roles }

type lateRoles struct {
	store.Roles
	missed bool
}

func (r *lateRoles) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	if !r.missed {
		r.missed = true
		return domain.Role{}, store.ErrNotFound
	}
	return r.Roles.GetRoleByName(ctx, name)
}

func TestEnsureRoleCreatesOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := EnsureRole(ctx, s, "AUDITOR")
	require.NoError(t, err)

	second, err := EnsureRole(ctx, s, "AUDITOR")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestEnsureRoleLosingRaceReturnsWinner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	winner, err := EnsureRole(ctx, s, "AUDITOR")
	require.NoError(t, err)

	late := lateStore{Store: s, roles: &lateRoles{Roles: s.Roles()}}
	got, err := EnsureRole(ctx, late, "AUDITOR")
	require.NoError(t, err)
	require.Equal(t, winner.ID, got.ID)

	roles, err := s.Roles().ListAll(ctx)
	require.NoError(t, err)
	n := 0
	for _, r := range roles {
		if r.Name == "AUDITOR" {
			n++
		}
	}
	require.Equal(t, 1, n)
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
	"github.com/aussiebroadwan/taskgate/pkg/idx"
)

type RolesService struct {
	Store store.Store
}

// ListAll returns all roles in the system.
func (s *RolesService) ListAll(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListAll(ctx)
}

// EnsureRole returns the role called name, creating it first if needed. The
// name match is case-sensitive.
func EnsureRole(ctx context.Context, st store.Store, name string) (domain.Role, error) {
	role, err := st.Roles().GetRoleByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, err
	}

	role = domain.Role{
		ID:        idx.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	err = st.Roles().CreateRole(ctx, role)
	if errors.Is(err, store.ErrAlreadyExists) {
		// Another writer created it between the lookup and the insert.
		return st.Roles().GetRoleByName(ctx, name)
	}
	if err != nil {
		return domain.Role{}, err
	}
	return role, nil
}

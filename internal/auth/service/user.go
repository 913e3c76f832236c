package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
	"github.com/aussiebroadwan/taskgate/pkg/httpx"
	"github.com/aussiebroadwan/taskgate/pkg/slogx"
)

type UserService struct {
	Store store.Store
}

var _ httpx.AccountLoader = (*UserService)(nil)

// GetUserInfo returns the sanitized view of a user.
func (s *UserService) GetUserInfo(ctx context.Context, userID string) (domain.UserInfo, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.UserInfo{}, ErrUserNotFound
		}
		return domain.UserInfo{}, err
	}
	return u.Info(), nil
}

// LoadAccount feeds the request authentication gate.
func (s *UserService) LoadAccount(ctx context.Context, username string) (httpx.Account, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httpx.Account{}, ErrUserNotFound
		}
		return httpx.Account{}, err
	}
	return httpx.Account{
		ID:       u.ID,
		Username: u.Username,
		Active:   u.Active,
		Roles:    u.Roles,
	}, nil
}

// SetActive enables or disables a user. Disabling also revokes every live
// refresh token so the account cannot mint new access tokens.
func (s *UserService) SetActive(ctx context.Context, username string, active bool) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := tx.Users().SetActive(ctx, u.ID, active); err != nil {
			return err
		}
		if active {
			return nil
		}

		n, err := tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, u.ID)
		if err != nil {
			return err
		}
		slogx.FromContext(ctx).Info("user deactivated",
			slog.String("user_id", u.ID),
			slog.Int64("revoked_tokens", n),
		)
		return nil
	})
}

// GrantRole attaches roleName to the user, creating the role if needed.
func (s *UserService) GrantRole(ctx context.Context, username, roleName string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		role, err := EnsureRole(ctx, tx, roleName)
		if err != nil {
			return err
		}
		return tx.Users().AssignRole(ctx, u.ID, role.ID)
	})
}

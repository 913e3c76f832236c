package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
	"github.com/aussiebroadwan/taskgate/pkg/cryptox"
	"github.com/aussiebroadwan/taskgate/pkg/jwtx"
	"github.com/aussiebroadwan/taskgate/pkg/slogx"
)

// SessionService exchanges and revokes refresh tokens.
type SessionService struct {
	Store  store.Store
	Codec  *jwtx.Codec
	Locker OwnerLocker

	// Rotate issues a new refresh token on every refresh and revokes the
	// presented one. Without it the presented token is handed back unchanged
	// and keeps its original expiry.
	Rotate bool

	Metrics *Metrics
	Now     func() time.Time
}

// Refresh exchanges a refresh token for a new token pair. Roles are re-read
// from the user record.
func (s *SessionService) Refresh(ctx context.Context, token string) (pair *domain.TokenPair, err error) {
	defer func() { record(ctx, metricsOrNoop(s.Metrics).refreshes, err) }()

	l := slogx.FromContext(ctx)
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidRefreshToken
	}
	hash := cryptox.FingerprintToken(token)

	// The first read only finds the owner to lock on; the row is re-checked
	// under the lock.
	row, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("load refresh token: %w", err)
	}

	unlock, err := lockerOrLocal(s.Locker).Lock(ctx, row.UserID)
	if err != nil {
		return nil, fmt.Errorf("lock owner: %w", err)
	}
	defer unlock()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := nowOrWall(s.Now)

		row, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}
		if !row.Usable(now) {
			l.Info("refresh rejected", slog.String("reason", "dead_token"), slog.String("user_id", row.UserID))
			return ErrRefreshTokenExpired
		}

		claims, err := s.Codec.VerifyRefresh(token)
		if err != nil || claims.UserID != row.UserID {
			l.Debug("refresh token failed verification", slog.Any("error", err))
			return ErrInvalidRefreshToken
		}

		user, err := tx.Users().GetUserByID(ctx, row.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}
		if !user.Active {
			return ErrAccountInactive
		}

		access, err := accessToken(s.Codec, user)
		if err != nil {
			return err
		}

		refresh := token
		if s.Rotate {
			if refresh, err = replaceRefreshToken(ctx, tx, s.Codec, user, now); err != nil {
				return err
			}
		}

		pair = tokenPair(s.Codec, access, refresh)
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Info("refresh succeeded", slog.String("user_id", row.UserID), slog.Bool("rotated", s.Rotate))
	return pair, nil
}

// Logout revokes the refresh token. Logging out twice with the same token
// succeeds.
func (s *SessionService) Logout(ctx context.Context, token string) (err error) {
	defer func() { record(ctx, metricsOrNoop(s.Metrics).logouts, err) }()

	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidRefreshToken
	}

	if err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(token)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidRefreshToken
		}
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	slogx.FromContext(ctx).Info("logout succeeded")
	return nil
}

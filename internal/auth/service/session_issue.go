package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
	"github.com/aussiebroadwan/taskgate/pkg/cryptox"
	"github.com/aussiebroadwan/taskgate/pkg/idx"
	"github.com/aussiebroadwan/taskgate/pkg/jwtx"
)

// accessToken mints an access token from the user's current roles.
func accessToken(codec *jwtx.Codec, user domain.User) (string, error) {
	token, _, err := codec.IssueAccess(user.Username, user.ID, user.Email, user.Roles, nil)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return token, nil
}

// replaceRefreshToken mints a refresh token for user and, inside tx, revokes
// every live token of the owner before saving the new one. Callers hold the
// owner lock.
func replaceRefreshToken(ctx context.Context, tx store.Tx, codec *jwtx.Codec, user domain.User, now time.Time) (string, error) {
	token, expiresAt, err := codec.IssueRefresh(user.Username, user.ID)
	if err != nil {
		return "", fmt.Errorf("issue refresh token: %w", err)
	}

	if _, err := tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, user.ID); err != nil {
		return "", fmt.Errorf("revoke refresh tokens: %w", err)
	}

	err = tx.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.NewAt(now).String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(token),
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return "", ErrRefreshTokenConflict
		}
		return "", fmt.Errorf("save refresh token: %w", err)
	}
	return token, nil
}

func tokenPair(codec *jwtx.Codec, access, refresh string) *domain.TokenPair {
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    domain.TokenTypeBearer,
		ExpiresIn:    codec.AccessTTL(),
	}
}

func lockerOrLocal(l OwnerLocker) OwnerLocker {
	if l == nil {
		return defaultLocker
	}
	return l
}

var defaultLocker = NewLocalLocker()

func nowOrWall(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
)

type refreshTokensRepo struct{ q DBTX }

var _ store.RefreshTokens = (*refreshTokensRepo)(nil)

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	issued := orNow(t.IssuedAt)
	_, err := r.q.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, issued_at, expires_at, revoked, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $4)`,
		t.ID, t.UserID, t.TokenHash, issued, t.ExpiresAt, t.Revoked)
	return mapError(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.q.QueryRow(ctx, `
		SELECT id, user_id, token_hash, issued_at, expires_at, revoked, updated_at
		FROM refresh_tokens WHERE token_hash = $1`, hash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.IssuedAt, &t.ExpiresAt, &t.Revoked, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapError(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	return requireAffected(r.q.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE, updated_at = now() WHERE token_hash = $1`, hash))
}

func (r *refreshTokensRepo) RevokeAllUserRefreshTokens(ctx context.Context, userID string) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE, updated_at = now() WHERE user_id = $1 AND NOT revoked`, userID)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (r *refreshTokensRepo) CountLiveUserRefreshTokens(ctx context.Context, userID string, now time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM refresh_tokens WHERE user_id = $1 AND NOT revoked AND expires_at > $2`,
		userID, now).Scan(&n)
	return n, mapError(err)
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM refresh_tokens WHERE revoked OR expires_at <= $1`, now)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

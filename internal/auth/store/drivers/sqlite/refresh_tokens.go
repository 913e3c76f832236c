package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/taskgate/internal/auth/domain"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
)

type refreshTokensRepo struct{ q DBTX }

var _ store.RefreshTokens = (*refreshTokensRepo)(nil)

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	issued := toMillis(t.IssuedAt)
	if t.IssuedAt.IsZero() {
		issued = now()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, issued_at, expires_at, revoked, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, issued, toMillis(t.ExpiresAt), boolToInt(t.Revoked), issued)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var (
		t                        domain.RefreshToken
		issued, expires, updated int64
		revoked                  int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, issued_at, expires_at, revoked, updated_at
		FROM refresh_tokens WHERE token_hash = ?`, hash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &issued, &expires, &revoked, &updated)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.IssuedAt = fromMillis(issued)
	t.ExpiresAt = fromMillis(expires)
	t.UpdatedAt = fromMillis(updated)
	t.Revoked = revoked != 0
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, updated_at = ? WHERE token_hash = ?`, now(), hash))
}

func (r *refreshTokensRepo) RevokeAllUserRefreshTokens(ctx context.Context, userID string) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, updated_at = ? WHERE user_id = ? AND revoked = 0`, now(), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *refreshTokensRepo) CountLiveUserRefreshTokens(ctx context.Context, userID string, at time.Time) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM refresh_tokens WHERE user_id = ? AND revoked = 0 AND expires_at > ?`,
		userID, toMillis(at)).Scan(&n)
	return n, err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, at time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE revoked = 1 OR expires_at <= ?`, toMillis(at))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

package domain

import "time"

// TokenTypeBearer is the only token type label we hand out.
const TokenTypeBearer = "Bearer"

// TokenPair is what login and refresh return.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    time.Duration
}

// RefreshToken is the persisted ledger row for an issued refresh token. The
// token string itself is never stored, only its fingerprint.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 of the token, unique
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
	UpdatedAt time.Time
}

// Usable reports whether the token can still mint access tokens at now.
func (t RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

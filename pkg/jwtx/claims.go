package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTL constants. Both can be overridden through CodecConfig.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenType is the discriminant stored in the "type" claim. It keeps a
// refresh token from being accepted where an access token is expected and
// the other way around.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the claims carried by every token the Codec issues.
type Claims struct {
	jwt.RegisteredClaims

	// Type is either "access" or "refresh".
	Type TokenType `json:"type"`

	// UserID is the internal id of the principal, Subject holds the username.
	UserID string `json:"uid,omitempty"`

	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`

	// Extra holds custom claims that have no dedicated field.
	Extra map[string]any `json:"ext,omitempty"`
}

// NewJTI returns a random identifier for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// HasRole reports whether the claims carry the given role name.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Username is the subject of the token.
func (c *Claims) Username() string {
	return c.Subject
}

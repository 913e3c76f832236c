package jwtx

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength maps each supported HMAC algorithm to the minimum secret
// size in bytes (the size of the hash output).
var MinSecretLength = map[string]int{
	jwt.SigningMethodHS256.Alg(): 32,
	jwt.SigningMethodHS384.Alg(): 48,
	jwt.SigningMethodHS512.Alg(): 64,
}

// CodecConfig is the immutable configuration handed to NewCodec.
type CodecConfig struct {
	Secret     []byte
	Algorithm  string // HS256 (default), HS384 or HS512
	Issuer     string // Optional: set as "iss" and enforced on verify
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// Codec signs and verifies HMAC bearer tokens. It holds no mutable state and
// is safe for concurrent use.
type Codec struct {
	method     *jwt.SigningMethodHMAC
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

var _ Verifier = (*Codec)(nil)

// NewCodec validates cfg and builds a Codec. A zero TTL selects the default
// lifetime. A secret shorter than the algorithm's minimum, an unknown
// algorithm or a negative TTL yields an error wrapping ErrConfiguration.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = jwt.SigningMethodHS256.Alg()
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = DefaultRefreshTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	minLen, ok := MinSecretLength[cfg.Algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %w %q", ErrConfiguration, ErrUnsupportedAlgorithm, cfg.Algorithm)
	}
	if len(cfg.Secret) < minLen {
		return nil, fmt.Errorf("%w: %w: %s needs %d bytes, got %d",
			ErrConfiguration, ErrSecretTooShort, cfg.Algorithm, minLen, len(cfg.Secret))
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, fmt.Errorf("%w: token ttl must not be negative", ErrConfiguration)
	}

	method, _ := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(cfg.Now),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Codec{
		method:     method,
		secret:     secret,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
		parser:     jwt.NewParser(opts...),
	}, nil
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// Issue signs claims for subject with iat/nbf set to now and exp set to
// now+ttl. The registered fields of claims are overwritten. It returns the
// compact token and its expiry.
func (c *Codec) Issue(subject string, claims Claims, ttl time.Duration) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(ttl)

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        NewJTI(),
	}

	token, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwtx: sign: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// Verify checks signature, algorithm, issuer and expiry. It does not look at
// the token type, use VerifyAccess or VerifyRefresh for that.
func (c *Codec) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		// %v on purpose: the cause is kept for logs but is not matchable.
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueAccess mints an access token carrying the principal's roles.
func (c *Codec) IssueAccess(
	subject, userID, email string,
	roles []string,
	extra map[string]any,
) (string, time.Time, error) {
	return c.Issue(subject, Claims{
		Type:   TokenTypeAccess,
		UserID: userID,
		Email:  email,
		Roles:  roles,
		Extra:  extra,
	}, c.accessTTL)
}

// IssueRefresh mints a refresh token. It carries no roles; those are re-read
// from the user record on refresh.
func (c *Codec) IssueRefresh(subject, userID string) (string, time.Time, error) {
	return c.Issue(subject, Claims{
		Type:   TokenTypeRefresh,
		UserID: userID,
	}, c.refreshTTL)
}

// VerifyAccess verifies token and requires it to be an access token.
func (c *Codec) VerifyAccess(token string) (*Claims, error) {
	return c.verifyType(token, TokenTypeAccess)
}

// VerifyRefresh verifies token and requires it to be a refresh token.
func (c *Codec) VerifyRefresh(token string) (*Claims, error) {
	return c.verifyType(token, TokenTypeRefresh)
}

func (c *Codec) verifyType(token string, want TokenType) (*Claims, error) {
	claims, err := c.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, want)
	}
	return claims, nil
}

package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	// ShortSecretBytes is enough for lock ownership tokens.
	ShortSecretBytes = 16
	// SecretBytes backs peppers and anything that must resist offline guessing.
	SecretBytes = 32
)

var tokenEncoding = base64.RawURLEncoding

// RandomToken reads n bytes from crypto/rand and returns them unpadded
// base64url encoded.
func RandomToken(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("cryptox: random token needs at least one byte, got %d", n)
	}
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return tokenEncoding.EncodeToString(raw), nil
}

// MustRandomToken panics where RandomToken would fail.
func MustRandomToken(n int) string {
	s, err := RandomToken(n)
	if err != nil {
		panic(err)
	}
	return s
}

// FingerprintToken is the SHA-256 of token, base64url encoded. Refresh tokens
// are persisted and looked up only by fingerprint.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return tokenEncoding.EncodeToString(sum[:])
}

package jwtx

import "errors"

// Verifier validates an access token and gives you back the claims if it's
// legit. The request authentication gate depends on this rather than on
// *Codec so tests can swap it out.
type Verifier interface {
	VerifyAccess(token string) (*Claims, error)
}

var (
	// ErrInvalidToken covers every verification failure: bad signature,
	// wrong algorithm, expired, malformed or wrong token type. Callers get
	// no way to tell them apart.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	// ErrConfiguration is returned by NewCodec. It is fatal at startup.
	ErrConfiguration = errors.New("jwtx: invalid configuration")

	ErrSecretTooShort       = errors.New("jwtx: secret too short for algorithm")
	ErrUnsupportedAlgorithm = errors.New("jwtx: unsupported algorithm")
)

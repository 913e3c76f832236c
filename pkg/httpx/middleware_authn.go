package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/taskgate/pkg/jwtx"
	"github.com/aussiebroadwan/taskgate/pkg/slogx"
)

// AuthoritySource selects where granted authorities come from.
type AuthoritySource string

const (
	// AuthoritiesFromStore re-reads roles from the live account on every
	// request, so a role downgrade takes effect immediately.
	AuthoritiesFromStore AuthoritySource = "store"

	// AuthoritiesFromClaims trusts the roles embedded in the access token
	// until it expires.
	AuthoritiesFromClaims AuthoritySource = "claims"
)

// Account is the slice of the user record the gate needs.
type Account struct {
	ID       string
	Username string
	Active   bool
	Roles    []string
}

// AccountLoader looks up an account by username.
type AccountLoader interface {
	LoadAccount(ctx context.Context, username string) (Account, error)
}

type AuthnConfig struct {
	Verifier jwtx.Verifier
	Accounts AccountLoader
	Source   AuthoritySource
}

// Authenticate is the request authentication gate. It never rejects a
// request: a missing, malformed or invalid bearer token, or a principal that
// is gone or inactive, leaves the request unauthenticated. Rejection happens
// downstream in RequireAuthenticated / RequireAnyAuthority.
func Authenticate(cfg AuthnConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := cfg.Verifier.VerifyAccess(raw)
			if err != nil {
				log.Debug("bearer token rejected", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			p := &Principal{
				UserID:      claims.UserID,
				Username:    claims.Subject,
				Authorities: Authorities(claims.Roles),
				Claims:      claims,
			}

			if cfg.Accounts != nil {
				acct, err := cfg.Accounts.LoadAccount(ctx, claims.Subject)
				if err != nil {
					log.Debug("bearer principal lookup failed", "username", claims.Subject, "err", err)
					next.ServeHTTP(w, r)
					return
				}
				if !acct.Active {
					log.Debug("bearer principal inactive", "username", claims.Subject)
					next.ServeHTTP(w, r)
					return
				}

				p.UserID = acct.ID
				if cfg.Source != AuthoritiesFromClaims {
					p.Authorities = Authorities(acct.Roles)
				}
			}

			ctx = WithPrincipal(ctx, p)
			ctx = slogx.With(ctx, "user_id", p.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token following the case-sensitive "Bearer "
// prefix of the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

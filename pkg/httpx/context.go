package httpx

import (
	"context"
	"slices"

	"github.com/aussiebroadwan/taskgate/pkg/jwtx"
)

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// AuthorityPrefix is prepended to every role name to form a granted authority.
const AuthorityPrefix = "ROLE_"

// Principal is the authenticated caller of a single request. It lives in the
// request context and is never shared across requests.
type Principal struct {
	UserID      string
	Username    string
	Authorities []string

	// Claims of the verified access token.
	Claims *jwtx.Claims
}

// HasAuthority reports whether the principal was granted authority
// (e.g. "ROLE_ADMIN").
func (p *Principal) HasAuthority(authority string) bool {
	return slices.Contains(p.Authorities, authority)
}

// Authorities derives granted authorities from role names, keeping order and
// dropping duplicates.
func Authorities(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		a := AuthorityPrefix + r
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext returns the principal established by the
// authentication gate, or nil for unauthenticated requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxKeyPrincipal).(*Principal)
	return p
}

package httpx

import (
	"net/http"
)

// RequireAuthenticated rejects requests the gate left unauthenticated with 401.
func RequireAuthenticated() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PrincipalFromContext(r.Context()) == nil {
				writeUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyAuthority the caller must be authenticated and hold at least one
// of the provided authorities (e.g. "ROLE_ADMIN"), otherwise 401 or 403.
func RequireAnyAuthority(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				writeUnauthorized(w, r)
				return
			}

			for _, a := range required {
				if p.HasAuthority(a) {
					next.ServeHTTP(w, r)
					return
				}
			}

			WriteError(w, r, http.StatusForbidden, "Access denied")
		})
	}
}

// RFC 6750 challenge plus the usual error body.
func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="taskgate"`)
	WriteError(w, r, http.StatusUnauthorized, "Authentication required")
}

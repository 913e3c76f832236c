package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/taskgate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func serveAuthz(t *testing.T, mw httpx.Middleware, p *httpx.Principal) *httptest.ResponseRecorder {
	t.Helper()

	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	if p != nil {
		req = req.WithContext(httpx.WithPrincipal(req.Context(), p))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthenticated(t *testing.T) {
	t.Run("rejects anonymous with 401", func(t *testing.T) {
		rec := serveAuthz(t, httpx.RequireAuthenticated(), nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

		var body httpx.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, http.StatusUnauthorized, body.Code)
		require.Equal(t, httpx.StatusError, body.Status)
		require.Equal(t, "/todos", body.Path)
		require.NotZero(t, body.Timestamp)
	})

	t.Run("allows principal", func(t *testing.T) {
		rec := serveAuthz(t, httpx.RequireAuthenticated(), &httpx.Principal{Username: "alice"})
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAnyAuthority(t *testing.T) {
	mw := httpx.RequireAnyAuthority("ROLE_ADMIN", "ROLE_SUPPORT")

	t.Run("anonymous gets 401", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, serveAuthz(t, mw, nil).Code)
	})

	t.Run("missing authority gets 403", func(t *testing.T) {
		p := &httpx.Principal{Username: "alice", Authorities: []string{"ROLE_USER"}}
		require.Equal(t, http.StatusForbidden, serveAuthz(t, mw, p).Code)
	})

	t.Run("any matching authority passes", func(t *testing.T) {
		p := &httpx.Principal{Username: "alice", Authorities: []string{"ROLE_USER", "ROLE_SUPPORT"}}
		require.Equal(t, http.StatusOK, serveAuthz(t, mw, p).Code)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "handler"}, order)
}

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskgate/pkg/httpx"
	"github.com/aussiebroadwan/taskgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		JWTAlgorithm:         "HS256",
		Issuer:               "taskgate-test",
		AccessTTL:            time.Minute,
		RefreshTTL:           time.Hour,
		RotateRefresh:        true,
		AuthoritySource:      httpx.AuthoritiesFromStore,
		Store:                StoreSQLite,
		DatabaseFile:         filepath.Join(dir, "taskgate.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		Port:                 8080,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
		RateLimits:           httpx.DefaultRateLimits(),
	}
}

func TestNewRejectsWeakSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTSecret = "too-short"

	_, err := New(context.Background(), cfg)
	require.ErrorIs(t, err, jwtx.ErrConfiguration)
}

func TestNewRejectsUnknownAlgorithm(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTAlgorithm = "RS256"

	_, err := New(context.Background(), cfg)
	require.ErrorIs(t, err, jwtx.ErrConfiguration)
}

func TestNewServesRoutes(t *testing.T) {
	cfg := testConfig(t)

	app, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.closeBackends() })

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/todos", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	require.FileExists(t, cfg.PepperFile)
}

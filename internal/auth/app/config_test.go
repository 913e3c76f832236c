package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/taskgate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"AUTH_JWT_SECRET", "AUTH_JWT_ALGORITHM", "AUTH_ISSUER", "AUTH_ACCESS_TTL",
		"AUTH_REFRESH_TTL", "AUTH_ROTATE_REFRESH", "AUTH_AUTHORITY_SOURCE", "AUTH_STORE",
		"AUTH_REDIS_ADDR", "PORT", "HOUSEKEEPING_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	require.Equal(t, "HS256", cfg.JWTAlgorithm)
	require.Equal(t, "taskgate", cfg.Issuer)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	require.True(t, cfg.RotateRefresh)
	require.Equal(t, httpx.AuthoritiesFromStore, cfg.AuthoritySource)
	require.Equal(t, StoreSQLite, cfg.Store)
	require.Equal(t, 8080, cfg.Port)
	require.Empty(t, cfg.RedisAddr)

	require.ErrorContains(t, cfg.Validate(), "AUTH_JWT_SECRET")
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_ACCESS_TTL", "5m")
	t.Setenv("AUTH_REFRESH_TTL", "90") // bare seconds
	t.Setenv("AUTH_ROTATE_REFRESH", "false")
	t.Setenv("AUTH_AUTHORITY_SOURCE", "claims")
	t.Setenv("AUTH_STORE", "Postgres")
	t.Setenv("AUTH_DATABASE_URL", "postgres://localhost/taskgate")
	t.Setenv("PORT", "not-a-port")

	cfg := LoadConfig()

	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 90*time.Second, cfg.RefreshTTL)
	require.False(t, cfg.RotateRefresh)
	require.Equal(t, httpx.AuthoritiesFromClaims, cfg.AuthoritySource)
	require.Equal(t, StorePostgres, cfg.Store)
	require.Equal(t, 8080, cfg.Port, "unparsable values fall back to the default")
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWTSecret:       "s3cret",
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      7 * 24 * time.Hour,
		Store:           StoreSQLite,
		AuthoritySource: httpx.AuthoritiesFromStore,
		Port:            8080,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown store", func(c *Config) { c.Store = "mysql" }, "AUTH_STORE"},
		{"postgres without url", func(c *Config) { c.Store = StorePostgres }, "AUTH_DATABASE_URL"},
		{"unknown authority source", func(c *Config) { c.AuthoritySource = "token" }, "AUTH_AUTHORITY_SOURCE"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }, "AUTH_ACCESS_TTL"},
		{"negative refresh ttl", func(c *Config) { c.RefreshTTL = -time.Second }, "AUTH_REFRESH_TTL"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}

func TestLoadConfigBareIntegersAreSeconds(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TTL", "900")
	t.Setenv("AUTH_REFRESH_TTL", "604800")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")

	cfg := LoadConfig()

	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)

	t.Setenv("AUTH_ACCESS_TTL", "0")
	require.ErrorContains(t, LoadConfig().Validate(), "AUTH_ACCESS_TTL")
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	// Start from a clean slate; godotenv never overrides variables that are
	// already set, even to "". t.Setenv restores the originals afterwards.
	for _, key := range []string{
		"AUTH_DEFAULT_ROLE", "RATELIMIT_STRICT_REQUESTS", "RATELIMIT_STRICT_WINDOW_SEC",
		"RATELIMIT_PUBLIC_BURST", "RATELIMIT_TRUST_PROXY",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"AUTH_DEFAULT_ROLE=MEMBER\n"+
			"RATELIMIT_STRICT_REQUESTS=999\n"+
			"RATELIMIT_STRICT_WINDOW_SEC=30\n"+
			"RATELIMIT_PUBLIC_BURST=7\n"+
			"RATELIMIT_TRUST_PROXY=true\n",
	), 0o600))
	t.Chdir(dir)

	cfg := LoadConfig()

	def := httpx.DefaultRateLimits()
	require.Equal(t, "MEMBER", cfg.DefaultRole)
	require.Equal(t, 999, cfg.RateLimits.Strict.RequestsPerWindow)
	require.Equal(t, 30*time.Second, cfg.RateLimits.Strict.Window)
	require.Equal(t, def.Strict.Burst, cfg.RateLimits.Strict.Burst)
	require.Equal(t, 7, cfg.RateLimits.Public.Burst)
	require.Equal(t, def.Moderate, cfg.RateLimits.Moderate)
	require.True(t, cfg.RateLimits.TrustProxy)
}

func TestValidateStoreIgnoresTokenSettings(t *testing.T) {
	cfg := Config{Store: StoreSQLite}
	require.NoError(t, cfg.ValidateStore())
	require.ErrorContains(t, cfg.Validate(), "AUTH_JWT_SECRET")

	cfg.Store = StorePostgres
	require.ErrorContains(t, cfg.ValidateStore(), "AUTH_DATABASE_URL")
}

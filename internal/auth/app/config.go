package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/taskgate/pkg/httpx"
	"github.com/joho/godotenv"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	JWTSecret    string        // Required: HMAC signing secret, at least as long as the hash output
	JWTAlgorithm string        // Optional: HS256, HS384 or HS512 (default: HS256)
	Issuer       string        // Optional: "iss" claim, enforced on verify (default: taskgate)
	AccessTTL    time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL   time.Duration // Optional: refresh token lifetime (default: 7d)

	RotateRefresh   bool                  // Optional: single-use refresh tokens (default: true)
	AuthoritySource httpx.AuthoritySource // Optional: store or claims (default: store)
	DefaultRole     string                // Optional: role granted on registration (default: USER)

	Store        string // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile string // Optional: path to SQLite database file (default: ./taskgate.db)
	DatabaseURL  string // Required for postgres: connection string
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	RedisAddr    string // Optional: when set, owner locks are shared through Redis

	OTLPEndpoint string // Optional: when set, metrics are pushed over OTLP/gRPC

	RateLimits httpx.RateLimits // Optional: RATELIMIT_* profiles and RATELIMIT_TRUST_PROXY

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		JWTSecret:    os.Getenv("AUTH_JWT_SECRET"),
		JWTAlgorithm: getEnvOrDefault("AUTH_JWT_ALGORITHM", "HS256"),
		Issuer:       getEnvOrDefault("AUTH_ISSUER", "taskgate"),
		AccessTTL:    getEnvDurationOrDefault("AUTH_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:   getEnvDurationOrDefault("AUTH_REFRESH_TTL", 7*24*time.Hour),

		RotateRefresh:   getEnvBoolOrDefault("AUTH_ROTATE_REFRESH", true),
		AuthoritySource: httpx.AuthoritySource(getEnvOrDefault("AUTH_AUTHORITY_SOURCE", string(httpx.AuthoritiesFromStore))),
		DefaultRole:     getEnvOrDefault("AUTH_DEFAULT_ROLE", "USER"),

		Store:        strings.ToLower(getEnvOrDefault("AUTH_STORE", StoreSQLite)),
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "taskgate.db"),
		DatabaseURL:  os.Getenv("AUTH_DATABASE_URL"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		RedisAddr:    os.Getenv("AUTH_REDIS_ADDR"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		RateLimits: httpx.RateLimitsFromEnv(httpx.DefaultRateLimits()),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate reports every problem with the configuration at once. Secret
// length is left to jwtx.NewCodec, which knows the per-algorithm minimum.
func (c Config) Validate() error {
	errs := c.storeErrors()

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}

	switch c.AuthoritySource {
	case httpx.AuthoritiesFromStore, httpx.AuthoritiesFromClaims:
	default:
		errs = append(errs, fmt.Errorf("AUTH_AUTHORITY_SOURCE must be %q or %q, got %q",
			httpx.AuthoritiesFromStore, httpx.AuthoritiesFromClaims, c.AuthoritySource))
	}

	if c.AccessTTL <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_ACCESS_TTL must be positive, got %s", c.AccessTTL))
	}
	if c.RefreshTTL <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_REFRESH_TTL must be positive, got %s", c.RefreshTTL))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}

	return errors.Join(errs...)
}

// ValidateStore checks only the settings OpenStore needs. Commands that never
// sign tokens, such as migrate and prune, use it instead of Validate.
func (c Config) ValidateStore() error {
	return errors.Join(c.storeErrors()...)
}

func (c Config) storeErrors() []error {
	var errs []error
	switch c.Store {
	case StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL is required when AUTH_STORE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_STORE must be %q or %q, got %q", StoreSQLite, StorePostgres, c.Store))
	}
	return errs
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds, so AUTH_ACCESS_TTL=900 is 15m.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

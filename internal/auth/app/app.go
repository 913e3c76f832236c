package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/taskgate/internal/auth/http"
	"github.com/aussiebroadwan/taskgate/internal/auth/service"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
	"github.com/aussiebroadwan/taskgate/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/taskgate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/taskgate/pkg/cryptox"
	"github.com/aussiebroadwan/taskgate/pkg/jwtx"
	"github.com/aussiebroadwan/taskgate/pkg/slogx"
	"github.com/aussiebroadwan/taskgate/pkg/telemetry"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	codec  *jwtx.Codec
	redis  *redis.Client // nil unless AUTH_REDIS_ADDR is set
	locker service.OwnerLocker

	shutdownTelemetry func(context.Context) error

	// Services
	authenticator       *service.Authenticator
	sessionService      *service.SessionService
	userService         *service.UserService
	todoService         *service.TodoService
	housekeepingService *service.HousekeepingService
	stopHousekeeping    func()

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "taskgate",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized.
// A bad signing secret or algorithm yields an error wrapping
// jwtx.ErrConfiguration and nothing is left open.
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{cfg: cfg, logger: NewLogger(cfg)}

	codec, err := jwtx.NewCodec(jwtx.CodecConfig{
		Secret:     []byte(cfg.JWTSecret),
		Algorithm:  cfg.JWTAlgorithm,
		Issuer:     cfg.Issuer,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})
	if err != nil {
		return nil, err
	}
	app.codec = codec

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initLocker(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initTelemetry(ctx)

	if err := app.initServices(); err != nil {
		app.closeBackends()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.stopHousekeeping = app.housekeepingService.Go(context.Background())

	app.logger.Info("taskgate starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.Store,
		"rotate_refresh", app.cfg.RotateRefresh,
		"authority_source", app.cfg.AuthoritySource,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.stopHousekeeping()
			app.closeBackends()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down taskgate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.stopHousekeeping != nil {
		app.stopHousekeeping()
	}

	if err := app.shutdownTelemetry(ctx); err != nil {
		app.logger.Error("error flushing metrics", "error", err)
	}

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("taskgate stopped")
	return nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) closeBackends() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// OpenStore connects to the configured backend and applies migrations.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.Store {
	case StorePostgres:
		db, err = postgres.NewStore(ctx, cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqlite.FileDSN(cfg.DatabaseFile))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenStore(ctx, app.cfg)
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "store", app.cfg.Store)
	return nil
}

// initLocker picks the owner lock implementation. Redis is required for
// more than one replica, otherwise two replicas could each mint a live
// refresh token for the same user.
func (app *Application) initLocker(ctx context.Context) error {
	if app.cfg.RedisAddr == "" {
		app.locker = service.NewLocalLocker()
		app.logger.Info("owner locks are process-local")
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: app.cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to reach redis at %s: %w", app.cfg.RedisAddr, err)
	}

	app.redis = client
	app.locker = service.NewRedisLocker(client, "", 0)
	app.logger.Info("owner locks are shared through redis", "addr", app.cfg.RedisAddr)
	return nil
}

// initTelemetry installs the OTLP meter provider when an endpoint is
// configured. Failing to do so only costs metrics, so it is not fatal.
func (app *Application) initTelemetry(ctx context.Context) {
	app.shutdownTelemetry = func(context.Context) error { return nil }
	if app.cfg.OTLPEndpoint == "" {
		return
	}

	shutdown, err := telemetry.InitMetrics(ctx, "taskgate", BuildVersion)
	if err != nil {
		app.logger.Warn("failed to initialize metrics, continuing without them", "error", err)
		return
	}
	app.shutdownTelemetry = shutdown
	app.logger.Info("metrics export enabled", "endpoint", app.cfg.OTLPEndpoint)
}

func (app *Application) initServices() error {
	metrics, err := service.NewMetrics(nil)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	app.authenticator = &service.Authenticator{
		Store:       app.db,
		Codec:       app.codec,
		Locker:      app.locker,
		DefaultRole: app.cfg.DefaultRole,
		Metrics:     metrics,
	}
	app.sessionService = &service.SessionService{
		Store:   app.db,
		Codec:   app.codec,
		Locker:  app.locker,
		Rotate:  app.cfg.RotateRefresh,
		Metrics: metrics,
	}
	app.userService = &service.UserService{Store: app.db}
	app.todoService = &service.TodoService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		app.cfg.AuthoritySource,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.Authenticator = app.authenticator
	router.Sessions = app.sessionService
	router.UserService = app.userService
	router.RolesService = &service.RolesService{Store: app.db}
	router.RateLimits = app.cfg.RateLimits
	router.TodoService = app.todoService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

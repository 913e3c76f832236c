package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/taskgate/internal/auth/service"
	"github.com/aussiebroadwan/taskgate/internal/auth/store"
	"github.com/aussiebroadwan/taskgate/pkg/httpx"
	"github.com/aussiebroadwan/taskgate/pkg/jwtx"
	"github.com/aussiebroadwan/taskgate/pkg/slogx"

	_ "github.com/aussiebroadwan/taskgate/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier        jwtx.Verifier
	authoritySource httpx.AuthoritySource
	buildVersion    string
	startTime       time.Time
	logger          *slog.Logger

	// RateLimits defaults to httpx.DefaultRateLimits. Set it before
	// ApplyRoutes to use configured profiles.
	RateLimits httpx.RateLimits

	store         store.Store
	Authenticator *service.Authenticator
	Sessions      *service.SessionService
	UserService   *service.UserService
	RolesService  *service.RolesService
	TodoService   *service.TodoService
}

// NewRouter builds a router whose global chain logs every request and then
// runs the authentication gate. Services are assigned by the caller before
// ApplyRoutes.
func NewRouter(
	verifier jwtx.Verifier,
	source httpx.AuthoritySource,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:             http.NewServeMux(),
		verifier:        verifier,
		authoritySource: source,
		buildVersion:    buildVersion,
		startTime:       time.Now(),
		store:           st,
		logger:          logger,
		RateLimits:      httpx.DefaultRateLimits(),
	}
}

func (r *Router) ApplyRoutes() {
	// The gate needs the account loader, which is only known once services
	// are assigned.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Authenticate(httpx.AuthnConfig{
			Verifier: r.verifier,
			Accounts: r.UserService,
			Source:   r.authoritySource,
		}),
	}

	r.registerAuth()
	r.registerUsers()
	r.registerTodos()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Taskgate API
//	@version		0.1.0
//	@description	Credential issuance and session management for the task service, plus the owner-scoped todo resource.
//	@description
//	@description				Access and refresh tokens are HMAC-signed JWTs. Refresh tokens are single-use when rotation is enabled.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/taskgate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Authenticator: r.Authenticator,
		Sessions:      r.Sessions,
	}

	// Credential endpoints are limited by IP + email to slow down guessing
	// against one account from many addresses and many accounts from one.
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			r.RateLimits.ByIPAndJSONField(r.RateLimits.Strict, "email"),
		),
	)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			r.RateLimits.ByIPAndJSONField(r.RateLimits.Strict, "email"),
		),
	)

	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			r.RateLimits.ByIP(r.RateLimits.Strict),
		),
	)
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.RateLimits.ByIP(r.RateLimits.Moderate),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UserInfoHandler{UserService: r.UserService}

	r.Mux.Handle("GET /auth/userinfo", r.secured(h))

	roles := &RolesHandler{Roles: r.RolesService}
	r.Mux.Handle("GET /roles",
		httpx.Chain(roles,
			httpx.RequireAnyAuthority(httpx.AuthorityPrefix+"ADMIN"),
			r.RateLimits.ByUser(r.RateLimits.Moderate),
		),
	)
}

func (r *Router) registerTodos() {
	h := &TodosHandler{Todos: r.TodoService}

	r.Mux.Handle("POST /todos", r.secured(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /todos", r.secured(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /todos/filter/completed", r.secured(http.HandlerFunc(h.HandleListByCompleted)))
	r.Mux.Handle("GET /todos/{id}", r.secured(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PUT /todos/{id}", r.secured(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /todos/{id}", r.secured(http.HandlerFunc(h.HandleDelete)))
}

// secured requires an authenticated principal and applies the per-user
// lenient limit.
func (r *Router) secured(h http.Handler) http.Handler {
	return httpx.Chain(h,
		httpx.RequireAuthenticated(),
		r.RateLimits.ByUser(r.RateLimits.Lenient),
	)
}

func (r *Router) registerSystem() {
	h := &HealthHandler{Started: r.startTime, Version: r.buildVersion, DB: r.store}

	// Monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(http.HandlerFunc(h.HandleLivez),
			r.RateLimits.ByIP(r.RateLimits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(http.HandlerFunc(h.HandleReadyz),
			r.RateLimits.ByIP(r.RateLimits.Public),
		),
	)
}

package v1

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/centum-academy/portal-api/internal/auth"
	"github.com/centum-academy/portal-api/internal/config"
	"github.com/centum-academy/portal-api/internal/rbac"
	"github.com/centum-academy/portal-api/internal/service"
	"github.com/centum-academy/portal-api/internal/utils"
)

type API struct {
	cfg      *config.Config
	router   *chi.Mux
	registry *rbac.Registry
	guard    *auth.Guard
	codec    *auth.CookieCodec
	provider *service.AuthProvider
	pinger   Pinger
	logger   *zap.Logger
	validate *validator.Validate
}

// NewAPI wires the JSON API. Requests must already carry an auth state
// (see auth.SessionMiddleware); codec and provider are used to move a
// session onto a new id at login.
func NewAPI(cfg *config.Config, reg *rbac.Registry, codec *auth.CookieCodec, provider *service.AuthProvider, pinger Pinger, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	api := &API{
		cfg:      cfg,
		router:   chi.NewRouter(),
		registry: reg,
		guard:    auth.NewGuard(reg, logger),
		codec:    codec,
		provider: provider,
		pinger:   pinger,
		logger:   logger,
		validate: validator.New(),
	}
	api.router.Use(middleware.Logger)
	api.routes()
	return api
}

func (a *API) Routes() *chi.Mux {
	return a.router
}

func (a *API) loginLimit() int {
	if a.cfg != nil && a.cfg.LoginRateLimit > 0 {
		return a.cfg.LoginRateLimit
	}
	return 10
}

func (a *API) routes() {
	authH := NewAuthHandler(a.registry, a.validate, a.codec, a.provider, a.logger)
	roleH := NewRoleHandler(a.registry)

	// keyed on the socket address; client-supplied forwarding headers are not trusted
	limiter := httprate.Limit(a.loginLimit(), time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.WriteJSONResponse(w, http.StatusTooManyRequests, false, "too many login attempts, try again later", nil, nil)
		}))

	r := a.router
	r.Route("/auth", func(r chi.Router) {
		r.Options("/*", func(w http.ResponseWriter, r *http.Request) {})
		r.With(limiter).Post("/login", authH.Login)
		r.Post("/signup", authH.Signup)
		r.Post("/logout", authH.Logout)
		r.Post("/change-password", authH.ChangePassword)
		r.Get("/me", authH.Me)
	})

	r.Get("/roles", roleH.ListRoles)
	r.Get("/roles/{role}", roleH.GetRole)
	r.With(auth.RoleMiddleware(a.registry.Roles()...)).Get("/permissions/check", roleH.CheckPermission)

	r.Route("/admin", func(r chi.Router) {
		r.Options("/*", func(w http.ResponseWriter, r *http.Request) {})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePermission(a.registry, rbac.PermManageRoles))
			r.Get("/roles", roleH.AdminRoles)
		})
	})

	r.Route("/health", func(r chi.Router) {
		r.Options("/*", func(w http.ResponseWriter, r *http.Request) {})
		r.Get("/", HealthHandler(a.pinger))
	})
}

// PageRoutes serves the role-gated portal pages: the dashboard redirector,
// one guarded dashboard per role, and the login/unauthorized landing pages.
func (a *API) PageRoutes() *chi.Mux {
	pageH := NewPageHandler(a.registry)
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get(auth.LoginPath, pageH.Login)
	r.Get(auth.UnauthorizedPath, pageH.Unauthorized)
	r.Get("/dashboard", a.guard.DashboardRedirect)
	for _, role := range a.registry.Roles() {
		route := a.registry.DashboardRoute(role)
		r.With(a.guard.ProtectedRoute(dashboardAccess(role)...)).Get(route, pageH.Dashboard(role))
	}
	return r
}

// dashboardAccess lists the roles allowed on role's dashboard. The super
// admin can open every dashboard.
func dashboardAccess(role rbac.Role) []rbac.Role {
	if role == rbac.RoleSuperAdmin {
		return []rbac.Role{rbac.RoleSuperAdmin}
	}
	return []rbac.Role{role, rbac.RoleSuperAdmin}
}

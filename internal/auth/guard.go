package auth

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/centum-academy/portal-api/internal/rbac"
	"github.com/centum-academy/portal-api/internal/service"
	"github.com/centum-academy/portal-api/internal/utils"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

type Decision int

const (
	DecisionRender Decision = iota
	DecisionLoading
	DecisionLogin
	DecisionUnauthorized
)

func (d Decision) String() string {
	switch d {
	case DecisionRender:
		return "render"
	case DecisionLoading:
		return "loading"
	case DecisionLogin:
		return "redirect-login"
	case DecisionUnauthorized:
		return "redirect-unauthorized"
	}
	return "unknown"
}

// Decide is the route guard. A nil allowed list admits any authenticated
// role; a non-nil list admits only its members.
func Decide(status service.Status, role rbac.Role, allowed []rbac.Role) Decision {
	switch status {
	case service.StatusAuthenticated:
	case service.StatusAnonymous:
		return DecisionLogin
	default:
		return DecisionLoading
	}
	if allowed != nil && !rbac.HasRole(role, allowed) {
		return DecisionUnauthorized
	}
	return DecisionRender
}

// Guard turns guard decisions into HTTP responses.
type Guard struct {
	Registry *rbac.Registry
	Logger   *zap.Logger
}

func NewGuard(reg *rbac.Registry, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{Registry: reg, Logger: logger}
}

func stateOf(r *http.Request) (service.Status, rbac.Role) {
	a := GetAuthStateFromCtx(r.Context())
	if a == nil {
		return service.StatusUninitialized, ""
	}
	return a.Status(), a.Role()
}

// ProtectedRoute renders next only for authenticated users whose role is in
// allowed (any role when allowed is empty).
func (g *Guard) ProtectedRoute(allowed ...rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			status, role := stateOf(r)
			switch d := Decide(status, role, allowed); d {
			case DecisionRender:
				next.ServeHTTP(w, r)
			case DecisionLoading:
				writeLoading(w)
			case DecisionLogin:
				redirectToLogin(w, r)
			case DecisionUnauthorized:
				g.Logger.Info("route denied",
					zap.String("path", r.URL.Path),
					zap.String("role", string(role)))
				http.Redirect(w, r, UnauthorizedPath, http.StatusFound)
			}
		})
	}
}

// DashboardRedirect sends the user to their role's landing page.
func (g *Guard) DashboardRedirect(w http.ResponseWriter, r *http.Request) {
	status, role := stateOf(r)
	switch Decide(status, role, nil) {
	case DecisionLoading:
		writeLoading(w)
		return
	case DecisionLogin:
		redirectToLogin(w, r)
		return
	}
	route, err := g.Registry.ResolveDashboard(role)
	if err != nil {
		g.Logger.Error("no dashboard for role", zap.String("role", string(role)), zap.Error(err))
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "no dashboard registered for role", nil, err.Error())
		return
	}
	http.Redirect(w, r, route, http.StatusFound)
}

func writeLoading(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	utils.WriteJSONResponse(w, http.StatusAccepted, false, "loading", map[string]string{"status": service.StatusLoading.String()}, nil)
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, LoginPath+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
}

package v1

import (
	"net/http"

	"github.com/centum-academy/portal-api/internal/auth"
	"github.com/centum-academy/portal-api/internal/rbac"
	"github.com/centum-academy/portal-api/internal/utils"
)

type PageHandler struct {
	registry *rbac.Registry
}

func NewPageHandler(reg *rbac.Registry) *PageHandler {
	return &PageHandler{registry: reg}
}

type dashboardPage struct {
	Dashboard   rbac.Role         `json:"dashboard"`
	Title       string            `json:"title"`
	Route       string            `json:"route"`
	Viewer      rbac.Role         `json:"viewer"`
	Permissions []rbac.Permission `json:"permissions"`
	FirstLogin  bool              `json:"isFirstLogin"`
}

// Dashboard returns the descriptor the frontend renders for role's dashboard.
// It runs behind ProtectedRoute, so the request is always authenticated.
func (h *PageHandler) Dashboard(role rbac.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := auth.GetAuthStateFromCtx(r.Context())
		viewer := a.Role()
		utils.WriteJSONResponse(w, http.StatusOK, true, "", dashboardPage{
			Dashboard:   role,
			Title:       h.registry.DisplayName(role) + " Dashboard",
			Route:       h.registry.DashboardRoute(role),
			Viewer:      viewer,
			Permissions: h.registry.Permissions(viewer),
			FirstLogin:  a.IsFirstLogin(),
		}, nil)
	}
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	page := map[string]interface{}{"page": "login"}
	if next := r.URL.Query().Get("next"); next != "" {
		page["next"] = next
	}
	if a := auth.GetAuthStateFromCtx(r.Context()); a != nil && a.IsAuthenticated() {
		page["dashboard"] = h.registry.DashboardRoute(a.Role())
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "", page, nil)
}

func (h *PageHandler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	page := map[string]interface{}{"page": "unauthorized"}
	if a := auth.GetAuthStateFromCtx(r.Context()); a != nil && a.IsAuthenticated() {
		page["dashboard"] = h.registry.DashboardRoute(a.Role())
	}
	utils.WriteJSONResponse(w, http.StatusForbidden, false, "You do not have access to that page", page, nil)
}

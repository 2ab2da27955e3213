package v1

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/centum-academy/portal-api/internal/auth"
	"github.com/centum-academy/portal-api/internal/rbac"
	"github.com/centum-academy/portal-api/internal/utils"
)

type RoleHandler struct {
	registry *rbac.Registry
}

func NewRoleHandler(reg *rbac.Registry) *RoleHandler {
	return &RoleHandler{registry: reg}
}

type roleSummary struct {
	Role      rbac.Role `json:"role"`
	Name      string    `json:"name"`
	Dashboard string    `json:"dashboard"`
}

// ListRoles returns the public part of the registry: names and landing routes.
func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	entries := h.registry.Entries()
	out := make([]roleSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, roleSummary{Role: e.Role, Name: e.Name, Dashboard: e.Dashboard})
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "", out, nil)
}

// GetRole accepts the role in any spelling ParseRole understands, e.g. "technical-head".
func (h *RoleHandler) GetRole(w http.ResponseWriter, r *http.Request) {
	role, _ := rbac.ParseRole(chi.URLParam(r, "role"))
	if !h.registry.Known(role) {
		utils.WriteJSONResponse(w, http.StatusNotFound, false, "role not found", nil, nil)
		return
	}
	e, _ := h.registry.Entry(role)
	utils.WriteJSONResponse(w, http.StatusOK, true, "", roleSummary{Role: e.Role, Name: e.Name, Dashboard: e.Dashboard}, nil)
}

// CheckPermission answers whether the current user holds ?permission=.
func (h *RoleHandler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	perm := strings.TrimSpace(r.URL.Query().Get("permission"))
	if perm == "" {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "permission query parameter is required", nil, nil)
		return
	}
	u := auth.GetUserFromCtx(r.Context())
	if u == nil {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "unauthorized", nil, nil)
		return
	}
	allowed := h.registry.HasPermission(u.Role, rbac.Permission(perm))
	utils.WriteJSONResponse(w, http.StatusOK, true, "", map[string]interface{}{
		"role":       u.Role,
		"permission": perm,
		"allowed":    allowed,
	}, nil)
}

// AdminRoles returns full registry entries including permission lists.
func (h *RoleHandler) AdminRoles(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, true, "", map[string]interface{}{
		"strict": h.registry.Strict(),
		"roles":  h.registry.Entries(),
	}, nil)
}

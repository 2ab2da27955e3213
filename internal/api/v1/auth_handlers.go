package v1

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/centum-academy/portal-api/internal/auth"
	"github.com/centum-academy/portal-api/internal/models"
	"github.com/centum-academy/portal-api/internal/rbac"
	"github.com/centum-academy/portal-api/internal/service"
	"github.com/centum-academy/portal-api/internal/utils"
)

type AuthHandler struct {
	registry *rbac.Registry
	validate *validator.Validate
	codec    *auth.CookieCodec
	provider *service.AuthProvider
	logger   *zap.Logger
}

func NewAuthHandler(reg *rbac.Registry, v *validator.Validate, codec *auth.CookieCodec, provider *service.AuthProvider, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{registry: reg, validate: v, codec: codec, provider: provider, logger: logger}
}

// failureStatus maps a failed result to rejected (4xx) or 502 when the
// remote API itself failed.
func failureStatus(res service.Result, rejected int) int {
	if res.Upstream {
		return http.StatusBadGateway
	}
	return rejected
}

// sessionView is what the frontend needs to render the shell for a session.
type sessionView struct {
	Status          service.Status    `json:"status"`
	IsAuthenticated bool              `json:"isAuthenticated"`
	IsFirstLogin    bool              `json:"isFirstLogin"`
	User            *models.User      `json:"user,omitempty"`
	Role            rbac.Role         `json:"role,omitempty"`
	RoleName        string            `json:"roleName,omitempty"`
	Dashboard       string            `json:"dashboard,omitempty"`
	Permissions     []rbac.Permission `json:"permissions,omitempty"`
}

func (h *AuthHandler) view(a *service.AuthState) sessionView {
	v := sessionView{
		Status:          a.Status(),
		IsAuthenticated: a.IsAuthenticated(),
		IsFirstLogin:    a.IsFirstLogin(),
	}
	if !v.IsAuthenticated {
		return v
	}
	role := a.Role()
	v.User = a.User()
	v.Role = role
	v.RoleName = h.registry.DisplayName(role)
	v.Dashboard = h.registry.DashboardRoute(role)
	v.Permissions = h.registry.Permissions(role)
	return v
}

func (h *AuthHandler) state(w http.ResponseWriter, r *http.Request) *service.AuthState {
	a := auth.GetAuthStateFromCtx(r.Context())
	if a == nil {
		h.logger.Error("auth state missing from request context", zap.String("path", r.URL.Path))
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "session unavailable", nil, nil)
	}
	return a
}

// Login handler
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	a := h.state(w, r)
	if a == nil {
		return
	}
	var creds models.Credentials
	if !decodeAndValidate(w, r, h.validate, &creds) {
		return
	}
	// the session always moves to a new id so a cookie issued before login
	// never reaches the authenticated namespace
	fresh, res := h.provider.Login(r.Context(), a, auth.NewSessionID(), creds)
	if !res.Success {
		utils.WriteJSONResponse(w, failureStatus(res, http.StatusUnauthorized), false, res.Error, nil, res.Error)
		return
	}
	if err := h.codec.Write(w, fresh.SessionID()); err != nil {
		h.logger.Error("issue session cookie", zap.Error(err))
		_ = fresh.Logout(r.Context())
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "session error", nil, nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "login successful", h.view(fresh), nil)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	a := h.state(w, r)
	if a == nil {
		return
	}
	var req models.SignupRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	res := a.Signup(r.Context(), req)
	if !res.Success {
		utils.WriteJSONResponse(w, failureStatus(res, http.StatusBadRequest), false, res.Error, nil, res.Error)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, true, "signup successful", res.Data, nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	a := h.state(w, r)
	if a == nil {
		return
	}
	if err := a.Logout(r.Context()); err != nil {
		// the holder is anonymous either way; a stale entry expires with its TTL
		h.logger.Warn("logout left storage behind", zap.String("sid", a.SessionID()), zap.Error(err))
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "logged out", h.view(a), nil)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	a := h.state(w, r)
	if a == nil {
		return
	}
	if !a.IsAuthenticated() {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, service.MsgNotAuthenticated, nil, nil)
		return
	}
	var req models.ChangePasswordRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	res := a.ChangePassword(r.Context(), req)
	if !res.Success {
		utils.WriteJSONResponse(w, failureStatus(res, http.StatusBadRequest), false, res.Error, nil, res.Error)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "password changed", h.view(a), nil)
}

// Me reports the session's auth status. Anonymous sessions get 200 with
// isAuthenticated=false so the frontend can tell them from errors.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	a := h.state(w, r)
	if a == nil {
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "", h.view(a), nil)
}

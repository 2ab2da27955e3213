package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/centum-academy/portal-api/internal/models"
	"github.com/centum-academy/portal-api/internal/rbac"
	"github.com/centum-academy/portal-api/internal/service"
	"github.com/centum-academy/portal-api/internal/utils"
)

type ctxKey string

const ctxAuthStateKey ctxKey = "authState"

// WithAuthState stores the request's auth holder in ctx.
func WithAuthState(ctx context.Context, a *service.AuthState) context.Context {
	return context.WithValue(ctx, ctxAuthStateKey, a)
}

func GetAuthStateFromCtx(ctx context.Context) *service.AuthState {
	if a, ok := ctx.Value(ctxAuthStateKey).(*service.AuthState); ok {
		return a
	}
	return nil
}

// GetUserFromCtx returns the authenticated user, nil for anonymous requests.
func GetUserFromCtx(ctx context.Context) *models.User {
	if a := GetAuthStateFromCtx(ctx); a != nil && a.IsAuthenticated() {
		return a.User()
	}
	return nil
}

// SessionMiddleware resolves the browser's session cookie (issuing one when
// missing or invalid), restores its auth state and puts it in the context.
func SessionMiddleware(codec *CookieCodec, provider *service.AuthProvider, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid, err := codec.Read(r)
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					logger.Debug("replacing session cookie", zap.Error(err))
				}
				sid = NewSessionID()
				if err := codec.Write(w, sid); err != nil {
					logger.Error("issue session cookie", zap.Error(err))
					utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "session error", nil, nil)
					return
				}
			}
			state := provider.ForSession(sid)
			state.Restore(r.Context())
			next.ServeHTTP(w, r.WithContext(WithAuthState(r.Context(), state)))
		})
	}
}

// RoleMiddleware allows multiple allowed roles; usage: RoleMiddleware(rbac.RoleAdmin, rbac.RoleSuperAdmin)
func RoleMiddleware(allowedRoles ...rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := GetUserFromCtx(r.Context())
			if u == nil {
				utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "unauthorized", nil, nil)
				return
			}
			if !rbac.HasRole(u.Role, allowedRoles) {
				utils.WriteJSONResponse(w, http.StatusForbidden, false, "forbidden", nil, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission guards API routes by permission rather than role.
func RequirePermission(reg *rbac.Registry, perm rbac.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := GetUserFromCtx(r.Context())
			if u == nil {
				utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "unauthorized", nil, nil)
				return
			}
			if !reg.HasPermission(u.Role, perm) {
				utils.WriteJSONResponse(w, http.StatusForbidden, false, "forbidden", nil, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/centum-academy/portal-api/internal/models"
	"github.com/centum-academy/portal-api/internal/rbac"
	"github.com/centum-academy/portal-api/internal/service"
	"github.com/centum-academy/portal-api/internal/store"
)

type stubRemote struct {
	role rbac.Role
}

func (s stubRemote) Login(ctx context.Context, creds models.Credentials) (json.RawMessage, error) {
	return json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{
			"token": "tok-" + string(s.role),
			"user":  map[string]interface{}{"role": s.role, "name": "Test"},
		},
	})
}

func (stubRemote) Signup(ctx context.Context, req models.SignupRequest) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (stubRemote) ChangePassword(ctx context.Context, token string, req models.ChangePasswordRequest) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

// stateFor returns a resolved holder: anonymous when role is empty,
// otherwise logged in with role.
func stateFor(t *testing.T, role rbac.Role) *service.AuthState {
	t.Helper()
	p := service.NewAuthProvider(store.NewMemoryBackend(), nil, stubRemote{role: role}, nil)
	a := p.ForSession(NewSessionID())
	a.Restore(context.Background())
	if role != "" {
		require.True(t, a.Login(context.Background(), models.Credentials{}).Success)
	}
	return a
}

func withState(r *http.Request, a *service.AuthState) *http.Request {
	return r.WithContext(WithAuthState(r.Context(), a))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("rendered"))
})

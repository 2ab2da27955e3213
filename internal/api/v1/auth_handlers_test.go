package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centum-academy/portal-api/internal/auth"
	"github.com/centum-academy/portal-api/internal/config"
	"github.com/centum-academy/portal-api/internal/rbac"
	"github.com/centum-academy/portal-api/internal/remote"
	"github.com/centum-academy/portal-api/internal/service"
)

func TestMeAnonymous(t *testing.T) {
	env := newEnv(t, &fakeRemote{role: rbac.RoleStudent}, nil, nil)

	resp, body := env.do(t, http.MethodGet, "/api/v1/auth/me", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view sessionView
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.Equal(t, service.StatusAnonymous, view.Status)
	assert.False(t, view.IsAuthenticated)
	assert.Nil(t, view.User)
	assert.Empty(t, view.Dashboard)
}

func TestLoginThenMe(t *testing.T) {
	env := newEnv(t, &fakeRemote{role: rbac.RoleFaculty, firstLogin: true}, nil, nil)

	view := env.login(t)
	assert.True(t, view.IsAuthenticated)
	assert.True(t, view.IsFirstLogin)
	assert.Equal(t, rbac.RoleFaculty, view.Role)
	assert.Equal(t, "Faculty", view.RoleName)
	assert.Equal(t, "/dashboard/faculty", view.Dashboard)
	assert.Contains(t, view.Permissions, rbac.PermManageAttendance)
	require.NotNil(t, view.User)
	assert.Equal(t, "u-1", view.User.ID)

	_, body := env.do(t, http.MethodGet, "/api/v1/auth/me", "")
	var me sessionView
	require.NoError(t, json.Unmarshal(body.Data, &me))
	assert.Equal(t, service.StatusAuthenticated, me.Status)
	assert.Equal(t, rbac.RoleFaculty, me.Role)
}

func TestLoginValidation(t *testing.T) {
	env := newEnv(t, &fakeRemote{role: rbac.RoleStudent}, nil, nil)

	resp, body := env.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginRejectedUsesServerMessage(t *testing.T) {
	fr := &fakeRemote{loginErr: &remote.Error{Status: http.StatusUnauthorized, Message: "Invalid credentials"}}
	env := newEnv(t, fr, nil, nil)

	resp, body := env.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.co","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", body.Message)

	_, body = env.do(t, http.MethodGet, "/api/v1/auth/me", "")
	var me sessionView
	require.NoError(t, json.Unmarshal(body.Data, &me))
	assert.False(t, me.IsAuthenticated)
}

func TestLoginRateLimited(t *testing.T) {
	fr := &fakeRemote{loginErr: &remote.Error{Status: http.StatusUnauthorized, Message: "Invalid credentials"}}
	env := newEnv(t, fr, &config.Config{LoginRateLimit: 2}, nil)

	for i := 0; i < 2; i++ {
		resp, _ := env.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.co","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	resp, _ := env.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.co","password":"wrong"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	env := newEnv(t, &fakeRemote{role: rbac.RoleHR}, nil, nil)
	env.login(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/auth/logout", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view sessionView
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.Equal(t, service.StatusAnonymous, view.Status)

	_, body = env.do(t, http.MethodGet, "/api/v1/auth/me", "")
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.False(t, view.IsAuthenticated)
}

func TestSignup(t *testing.T) {
	env := newEnv(t, &fakeRemote{}, nil, nil)

	resp, body := env.do(t, http.MethodPost, "/api/v1/auth/signup", `{"name":"Ravi","email":"ravi@centum.in","password":"secret1"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, body.Success)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/signup", `{"email":"ravi@centum.in","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSignupRejected(t *testing.T) {
	env := newEnv(t, &fakeRemote{signupErr: &remote.Error{Status: http.StatusConflict, Message: "Email already registered"}}, nil, nil)

	resp, body := env.do(t, http.MethodPost, "/api/v1/auth/signup", `{"name":"Ravi","email":"ravi@centum.in","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", body.Message)
}

func TestSignupUpstreamDown(t *testing.T) {
	env := newEnv(t, &fakeRemote{signupErr: &remote.Error{Status: http.StatusBadGateway}}, nil, nil)

	resp, body := env.do(t, http.MethodPost, "/api/v1/auth/signup", `{"name":"Ravi","email":"ravi@centum.in","password":"secret1"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, service.MsgSignupFailed, body.Message)
}

func TestLoginUpstreamDown(t *testing.T) {
	cases := map[string]error{
		"transport": &remote.Error{Err: context.DeadlineExceeded},
		"5xx":       &remote.Error{Status: http.StatusServiceUnavailable},
	}
	for name, err := range cases {
		env := newEnv(t, &fakeRemote{loginErr: err}, nil, nil)
		resp, body := env.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.co","password":"pw"}`)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode, name)
		assert.False(t, body.Success, name)
	}
}

func TestLoginRotatesSessionCookie(t *testing.T) {
	env := newEnv(t, &fakeRemote{role: rbac.RoleAdmin}, nil, nil)
	env.do(t, http.MethodGet, "/api/v1/auth/me", "")
	before := env.cookie(t)
	require.NotEmpty(t, before)

	env.login(t)
	after := env.cookie(t)
	require.NotEmpty(t, after)
	assert.NotEqual(t, before, after)

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/dashboard/admin", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.DefaultCookieName, Value: before})
	resp, err := noRedirectClient().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fdashboard%2Fadmin", resp.Header.Get("Location"))

	resp, _ = env.do(t, http.MethodGet, "/dashboard/admin", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFailedLoginKeepsSessionCookie(t *testing.T) {
	env := newEnv(t, &fakeRemote{loginErr: &remote.Error{Status: http.StatusUnauthorized, Message: "Invalid credentials"}}, nil, nil)
	env.do(t, http.MethodGet, "/api/v1/auth/me", "")
	before := env.cookie(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.co","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, before, env.cookie(t))
}

func TestChangePassword(t *testing.T) {
	env := newEnv(t, &fakeRemote{role: rbac.RoleStudent, firstLogin: true}, nil, nil)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/auth/change-password", `{"currentPassword":"a1b2c3","newPassword":"d4e5f6"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	require.True(t, env.login(t).IsFirstLogin)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/change-password", `{"currentPassword":"a1b2c3","newPassword":"a1b2c3"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/v1/auth/change-password", `{"currentPassword":"a1b2c3","newPassword":"d4e5f6"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body.Message)
	var view sessionView
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.False(t, view.IsFirstLogin)
	assert.True(t, view.IsAuthenticated)
}

func TestChangePasswordRejected(t *testing.T) {
	fr := &fakeRemote{role: rbac.RoleStudent, changeErr: &remote.Error{Status: http.StatusBadRequest, Message: "Current password is incorrect"}}
	env := newEnv(t, fr, nil, nil)
	env.login(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/auth/change-password", `{"currentPassword":"a1b2c3","newPassword":"d4e5f6"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Current password is incorrect", body.Message)
}

package v1

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centum-academy/portal-api/internal/rbac"
)

func TestDashboardRedirectAnonymous(t *testing.T) {
	env := newEnv(t, &fakeRemote{role: rbac.RoleStudent}, nil, nil)

	resp, _ := env.do(t, http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fdashboard", resp.Header.Get("Location"))
}

func TestDashboardRedirectByRole(t *testing.T) {
	for _, role := range rbac.Default().Roles() {
		env := newEnv(t, &fakeRemote{role: role}, nil, nil)
		env.login(t)

		resp, _ := env.do(t, http.MethodGet, "/dashboard", "")
		assert.Equal(t, http.StatusFound, resp.StatusCode, role)
		assert.Equal(t, "/dashboard/"+role.Slug(), resp.Header.Get("Location"), role)
	}
}

func TestProtectedDashboard(t *testing.T) {
	env := newEnv(t, &fakeRemote{role: rbac.RoleParent}, nil, nil)

	resp, _ := env.do(t, http.MethodGet, "/dashboard/parent", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fdashboard%2Fparent", resp.Header.Get("Location"))

	env.login(t)

	resp, body := env.do(t, http.MethodGet, "/dashboard/parent", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page dashboardPage
	require.NoError(t, json.Unmarshal(body.Data, &page))
	assert.Equal(t, rbac.RoleParent, page.Dashboard)
	assert.Equal(t, "Parent Dashboard", page.Title)
	assert.Contains(t, page.Permissions, rbac.PermViewChildProgress)

	resp, _ = env.do(t, http.MethodGet, "/dashboard/hr", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/unauthorized", resp.Header.Get("Location"))
}

func TestSuperAdminOpensEveryDashboard(t *testing.T) {
	env := newEnv(t, &fakeRemote{role: rbac.RoleSuperAdmin}, nil, nil)
	env.login(t)

	for _, role := range rbac.Default().Roles() {
		resp, _ := env.do(t, http.MethodGet, "/dashboard/"+role.Slug(), "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, role)
	}
}

func TestLoginAndUnauthorizedPages(t *testing.T) {
	env := newEnv(t, &fakeRemote{role: rbac.RoleCoordinator}, nil, nil)

	resp, body := env.do(t, http.MethodGet, "/login?next=%2Fdashboard%2Fhr", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page map[string]string
	require.NoError(t, json.Unmarshal(body.Data, &page))
	assert.Equal(t, "login", page["page"])
	assert.Equal(t, "/dashboard/hr", page["next"])

	env.login(t)
	resp, body = env.do(t, http.MethodGet, "/unauthorized", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &page))
	assert.Equal(t, "/dashboard/coordinator", page["dashboard"])
}

func TestHealth(t *testing.T) {
	env := newEnv(t, &fakeRemote{}, nil, nil)
	resp, body := env.do(t, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)

	down := newEnv(t, &fakeRemote{}, nil, failingPinger{})
	resp, body = down.do(t, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.False(t, body.Success)
}

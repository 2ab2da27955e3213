package v1

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/centum-academy/portal-api/internal/auth"
	"github.com/centum-academy/portal-api/internal/config"
	"github.com/centum-academy/portal-api/internal/models"
	"github.com/centum-academy/portal-api/internal/rbac"
	"github.com/centum-academy/portal-api/internal/service"
	"github.com/centum-academy/portal-api/internal/store"
)

type fakeRemote struct {
	role       rbac.Role
	firstLogin bool
	loginErr   error
	changeErr  error
	signupErr  error
}

func (f *fakeRemote) Login(ctx context.Context, creds models.Credentials) (json.RawMessage, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return json.Marshal(map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"token":        "tok-" + creds.Email,
			"isFirstLogin": f.firstLogin,
			"user": map[string]interface{}{
				"_id":   "u-1",
				"name":  "Asha",
				"email": creds.Email,
				"role":  f.role,
			},
		},
	})
}

func (f *fakeRemote) Signup(ctx context.Context, req models.SignupRequest) (json.RawMessage, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return json.RawMessage(`{"success":true,"message":"registered"}`), nil
}

func (f *fakeRemote) ChangePassword(ctx context.Context, token string, req models.ChangePasswordRequest) (json.RawMessage, error) {
	if f.changeErr != nil {
		return nil, f.changeErr
	}
	return json.RawMessage(`{"success":true}`), nil
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

type testEnv struct {
	srv    *httptest.Server
	client *http.Client
}

func newEnv(t *testing.T, fr *fakeRemote, cfg *config.Config, pinger Pinger) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{LoginRateLimit: 100}
	}
	reg := rbac.Default()
	codec := auth.NewCookieCodec("", "test-secret", time.Hour, false)
	provider := service.NewAuthProvider(store.NewMemoryBackend(), nil, fr, nil)
	api := NewAPI(cfg, reg, codec, provider, pinger, nil)

	r := chi.NewRouter()
	r.Use(auth.SessionMiddleware(codec, provider, nil))
	r.Mount("/api/v1", api.Routes())
	r.Mount("/", api.PageRoutes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := noRedirectClient()
	client.Jar = jar
	return &testEnv{srv: srv, client: client}
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// cookie returns the session cookie value the client currently holds.
func (e *testEnv) cookie(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(e.srv.URL)
	require.NoError(t, err)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == auth.DefaultCookieName {
			return c.Value
		}
	}
	return ""
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (e *testEnv) login(t *testing.T) sessionView {
	t.Helper()
	resp, env := e.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"asha@centum.in","password":"secret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var view sessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	return view
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/centum-academy/portal-api/internal/models"
	"github.com/centum-academy/portal-api/internal/rbac"
	"github.com/centum-academy/portal-api/internal/remote"
	"github.com/centum-academy/portal-api/internal/store"
)

// User-visible failure messages.
const (
	MsgNoToken              = "No authentication token received from server"
	MsgNoUser               = "No user data received from server"
	MsgLoginFailed          = "Login failed. Please try again."
	MsgSignupFailed         = "Signup failed. Please try again."
	MsgChangePasswordFailed = "Failed to change password"
	MsgNotAuthenticated     = "You must be logged in to do that"
)

type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	}
	return "unknown"
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	for _, c := range []Status{StatusUninitialized, StatusLoading, StatusAuthenticated, StatusAnonymous} {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown auth status %q", b)
}

// Result is the outcome of a login, signup or password change. Failures are
// reported here, never as errors.
type Result struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	// Upstream marks failures of the remote API itself rather than a rejection.
	Upstream bool `json:"-"`
}

func failure(msg string) Result { return Result{Success: false, Error: msg} }

func remoteFailure(err error, fallback string) Result {
	return Result{Success: false, Error: remote.Message(err, fallback), Upstream: remote.Unavailable(err)}
}

// Authenticator is the remote authentication API.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (json.RawMessage, error)
	Signup(ctx context.Context, req models.SignupRequest) (json.RawMessage, error)
	ChangePassword(ctx context.Context, token string, req models.ChangePasswordRequest) (json.RawMessage, error)
}

type snapshot struct {
	status     Status
	user       *models.User
	firstLogin bool
}

// AuthState holds who is logged in for one browser session. Reads see a
// snapshot that transitions replace as a whole; transitions are serialised.
type AuthState struct {
	storage *store.SessionStorage
	remote  Authenticator
	logger  *zap.Logger

	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

func NewAuthState(storage *store.SessionStorage, remote Authenticator, logger *zap.Logger) *AuthState {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &AuthState{storage: storage, remote: remote, logger: logger}
	a.snap.Store(&snapshot{status: StatusUninitialized})
	return a
}

func (a *AuthState) load() *snapshot { return a.snap.Load() }

func (a *AuthState) Status() Status { return a.load().status }

func (a *AuthState) IsAuthenticated() bool { return a.load().status == StatusAuthenticated }

func (a *AuthState) IsFirstLogin() bool { return a.load().firstLogin }

// User returns a copy of the current user, nil unless authenticated.
func (a *AuthState) User() *models.User {
	s := a.load()
	if s.user == nil {
		return nil
	}
	u := *s.user
	if s.user.Profile != nil {
		u.Profile = make(map[string]json.RawMessage, len(s.user.Profile))
		for k, v := range s.user.Profile {
			u.Profile[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &u
}

// Role is the current user's role, empty unless authenticated.
func (a *AuthState) Role() rbac.Role {
	if u := a.load().user; u != nil {
		return u.Role
	}
	return ""
}

func (a *AuthState) SessionID() string { return a.storage.ID() }

// Restore reads the persisted session. It only acts on an uninitialised
// holder; missing or unreadable entries resolve to anonymous.
func (a *AuthState) Restore(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.load().status != StatusUninitialized {
		return
	}
	a.snap.Store(&snapshot{status: StatusLoading})

	token, err := a.storage.Token(ctx)
	if err != nil {
		a.restoreFailed(ctx, store.KeyAuthToken, err, false)
		return
	}
	user, err := a.storage.User(ctx)
	if err == nil && token == "" {
		err = fmt.Errorf("%w: empty token", store.ErrCorruptValue)
	}
	if err != nil {
		// a token is present, so whatever else is stored is left over
		a.restoreFailed(ctx, store.KeyUser, err, true)
		return
	}
	first, err := a.storage.FirstLogin(ctx)
	if err != nil {
		a.logger.Warn("read first-login flag", zap.String("sid", a.storage.ID()), zap.Error(err))
	}
	a.snap.Store(&snapshot{status: StatusAuthenticated, user: user, firstLogin: first})
}

// restoreFailed resolves to anonymous. Corrupt entries are always cleared;
// missing ones only when orphaned is set.
func (a *AuthState) restoreFailed(ctx context.Context, key string, err error, orphaned bool) {
	a.snap.Store(&snapshot{status: StatusAnonymous})
	switch {
	case errors.Is(err, store.ErrNotFound) && !orphaned:
		return
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrCorruptValue):
		a.logger.Warn("discarding incomplete session storage",
			zap.String("sid", a.storage.ID()), zap.String("key", key), zap.Error(err))
		if cerr := a.storage.Clear(ctx); cerr != nil {
			a.logger.Error("clear session storage", zap.Error(cerr))
		}
	default:
		a.logger.Error("restore session", zap.String("sid", a.storage.ID()), zap.Error(err))
	}
}

// Login authenticates against the remote API and persists the session.
func (a *AuthState) Login(ctx context.Context, creds models.Credentials) Result {
	body, err := a.remote.Login(ctx, creds)
	if err != nil {
		a.logger.Info("login rejected", zap.String("email", creds.Email), zap.Error(err))
		return remoteFailure(err, MsgLoginFailed)
	}
	payload, err := NormalizeLogin(body)
	switch {
	case errors.Is(err, ErrNoToken):
		return failure(MsgNoToken)
	case errors.Is(err, ErrNoUser):
		return failure(MsgNoUser)
	case err != nil:
		a.logger.Warn("unreadable login response", zap.Error(err))
		return failure(MsgLoginFailed)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.storage.SaveAuth(ctx, payload.Token, payload.User, payload.FirstLogin); err != nil {
		a.logger.Error("persist session", zap.String("sid", a.storage.ID()), zap.Error(err))
		_ = a.storage.Clear(ctx)
		return failure(MsgLoginFailed)
	}
	a.snap.Store(&snapshot{status: StatusAuthenticated, user: payload.User, firstLogin: payload.FirstLogin})
	a.logger.Info("login",
		zap.String("sid", a.storage.ID()),
		zap.String("role", string(payload.User.Role)),
		zap.Bool("first_login", payload.FirstLogin))
	return Result{Success: true}
}

// Logout clears persisted storage and forgets the user. The in-memory state
// is anonymous even when clearing storage fails.
func (a *AuthState) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snap.Store(&snapshot{status: StatusAnonymous})
	return a.storage.Clear(ctx)
}

// Signup registers a user remotely. It does not log anyone in.
func (a *AuthState) Signup(ctx context.Context, req models.SignupRequest) Result {
	body, err := a.remote.Signup(ctx, req)
	if err != nil {
		a.logger.Info("signup rejected", zap.String("email", req.Email), zap.Error(err))
		return remoteFailure(err, MsgSignupFailed)
	}
	return Result{Success: true, Data: body}
}

// ChangePassword changes the current user's password and clears the
// first-login flag.
func (a *AuthState) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) Result {
	if !a.IsAuthenticated() {
		return failure(MsgNotAuthenticated)
	}
	token, err := a.storage.Token(ctx)
	if err != nil {
		a.logger.Warn("change password without token", zap.String("sid", a.storage.ID()), zap.Error(err))
		return failure(MsgNotAuthenticated)
	}
	body, err := a.remote.ChangePassword(ctx, token, req)
	if err != nil {
		return remoteFailure(err, MsgChangePasswordFailed)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.storage.SetFirstLogin(ctx, false); err != nil {
		a.logger.Error("clear first-login flag", zap.Error(err))
	}
	cur := a.load()
	if cur.status == StatusAuthenticated {
		next := *cur
		next.firstLogin = false
		a.snap.Store(&next)
	}
	return Result{Success: true, Data: body}
}

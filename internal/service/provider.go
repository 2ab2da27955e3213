package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/centum-academy/portal-api/internal/models"

	"github.com/centum-academy/portal-api/internal/store"
)

// AuthProvider builds AuthState values bound to one browser session each.
type AuthProvider struct {
	backend store.Backend
	sealer  *store.Sealer
	remote  Authenticator
	logger  *zap.Logger
}

func NewAuthProvider(backend store.Backend, sealer *store.Sealer, remote Authenticator, logger *zap.Logger) *AuthProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthProvider{backend: backend, sealer: sealer, remote: remote, logger: logger}
}

// ForSession returns an uninitialised holder for sid; call Restore on it.
func (p *AuthProvider) ForSession(sid string) *AuthState {
	return NewAuthState(store.NewSessionStorage(p.backend, p.sealer, sid), p.remote, p.logger.With(zap.String("component", "auth_state")))
}

// Login authenticates into a fresh namespace sid and, on success, logs prev
// out so its id can no longer reach the new session. On failure prev is
// returned untouched.
func (p *AuthProvider) Login(ctx context.Context, prev *AuthState, sid string, creds models.Credentials) (*AuthState, Result) {
	fresh := p.ForSession(sid)
	fresh.Restore(ctx)
	res := fresh.Login(ctx, creds)
	if !res.Success {
		return prev, res
	}
	if prev != nil && prev.SessionID() != sid {
		if err := prev.Logout(ctx); err != nil {
			p.logger.Warn("clear pre-login session", zap.String("sid", prev.SessionID()), zap.Error(err))
		}
	}
	return fresh, res
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/centum-academy/portal-api/internal/models"
)

// Well-known storage keys shared with the frontend.
const (
	KeyAuthToken  = "authToken"
	KeyUser       = "user"
	KeyFirstLogin = "isFirstLogin"
)

var (
	// ErrNotFound means the key is absent from the session namespace.
	ErrNotFound = errors.New("storage: key not found")
	// ErrCorruptValue means a stored value could not be decoded.
	ErrCorruptValue = errors.New("storage: corrupt value")
)

// Backend is a key/value store partitioned by session id.
type Backend interface {
	Get(ctx context.Context, sid, key string) (string, error)
	Set(ctx context.Context, sid, key, value string) error
	Delete(ctx context.Context, sid string, keys ...string) error
}

// SessionStorage is the typed view of one browser's storage namespace.
type SessionStorage struct {
	backend Backend
	sealer  *Sealer
	sid     string
}

// NewSessionStorage scopes backend to sid. A nil sealer stores tokens in clear.
func NewSessionStorage(backend Backend, sealer *Sealer, sid string) *SessionStorage {
	return &SessionStorage{backend: backend, sealer: sealer, sid: sid}
}

func (s *SessionStorage) ID() string { return s.sid }

// Token returns the persisted bearer token.
func (s *SessionStorage) Token(ctx context.Context) (string, error) {
	v, err := s.backend.Get(ctx, s.sid, KeyAuthToken)
	if err != nil {
		return "", err
	}
	if s.sealer == nil {
		return v, nil
	}
	plain, err := s.sealer.Open(v)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCorruptValue, KeyAuthToken, err)
	}
	return plain, nil
}

// User decodes the persisted user record.
func (s *SessionStorage) User(ctx context.Context) (*models.User, error) {
	v, err := s.backend.Get(ctx, s.sid, KeyUser)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal([]byte(v), &u); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptValue, KeyUser, err)
	}
	return &u, nil
}

// FirstLogin reads the isFirstLogin flag; absent means false.
func (s *SessionStorage) FirstLogin(ctx context.Context) (bool, error) {
	v, err := s.backend.Get(ctx, s.sid, KeyFirstLogin)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SaveAuth persists the token, the user record and the first-login flag.
func (s *SessionStorage) SaveAuth(ctx context.Context, token string, u *models.User, firstLogin bool) error {
	if u == nil {
		return errors.New("storage: nil user")
	}
	userJSON, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	stored := token
	if s.sealer != nil {
		if stored, err = s.sealer.Seal(token); err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
	}
	if err := s.backend.Set(ctx, s.sid, KeyAuthToken, stored); err != nil {
		return err
	}
	if err := s.backend.Set(ctx, s.sid, KeyUser, string(userJSON)); err != nil {
		return err
	}
	return s.SetFirstLogin(ctx, firstLogin)
}

func (s *SessionStorage) SetFirstLogin(ctx context.Context, first bool) error {
	v := "false"
	if first {
		v = "true"
	}
	return s.backend.Set(ctx, s.sid, KeyFirstLogin, v)
}

// Clear removes every well-known key.
func (s *SessionStorage) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx, s.sid, KeyAuthToken, KeyUser, KeyFirstLogin)
}

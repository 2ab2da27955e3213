package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultCookieName = "centum_sid"
	cookieIssuer      = "centum-portal"
)

type sessionClaims struct {
	jwt.RegisteredClaims
}

// CookieCodec issues and verifies the signed cookie that names a browser's
// storage namespace. The cookie carries only the session id.
type CookieCodec struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewCookieCodec(name, secret string, ttl time.Duration, secure bool) *CookieCodec {
	if name == "" {
		name = DefaultCookieName
	}
	return &CookieCodec{name: name, secret: []byte(secret), ttl: ttl, secure: secure}
}

func (c *CookieCodec) Name() string { return c.name }

// NewSessionID returns a fresh random session id.
func NewSessionID() string { return uuid.NewString() }

func (c *CookieCodec) Encode(sid string) (string, error) {
	now := time.Now()
	claims := sessionClaims{jwt.RegisteredClaims{
		ID:       sid,
		Issuer:   cookieIssuer,
		IssuedAt: jwt.NewNumericDate(now),
	}}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *CookieCodec) Decode(value string) (string, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(cookieIssuer))
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", fmt.Errorf("session id: %w", err)
	}
	return claims.ID, nil
}

// Read returns the session id from r's cookie.
func (c *CookieCodec) Read(r *http.Request) (string, error) {
	ck, err := r.Cookie(c.name)
	if err != nil {
		return "", err
	}
	if ck.Value == "" {
		return "", errors.New("empty session cookie")
	}
	return c.Decode(ck.Value)
}

// Write sets the session cookie for sid.
func (c *CookieCodec) Write(w http.ResponseWriter, sid string) error {
	v, err := c.Encode(sid)
	if err != nil {
		return err
	}
	ck := &http.Cookie{
		Name:     c.name,
		Value:    v,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.ttl > 0 {
		ck.Expires = time.Now().Add(c.ttl)
	}
	http.SetCookie(w, ck)
	return nil
}

// Package remote talks to the Centum authentication API. The API issues
// tokens and owns user records; this package only moves JSON back and forth.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/centum-academy/portal-api/internal/models"
)

const (
	loginPath          = "/auth/login"
	signupPath         = "/auth/signup"
	changePasswordPath = "/auth/change-password"

	maxBodyBytes = 1 << 20
)

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient builds a client for baseURL. timeout bounds every call; zero
// leaves calls bounded only by the caller's context.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: timeout,
		logger:  logger,
	}
}

// Login posts credentials and returns the raw response body.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (json.RawMessage, error) {
	return c.post(ctx, c.http, loginPath, creds)
}

func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (json.RawMessage, error) {
	body := make(map[string]interface{}, len(req.Extra)+5)
	for k, v := range req.Extra {
		body[k] = v
	}
	body["name"] = req.Name
	body["email"] = req.Email
	body["password"] = req.Password
	if req.Phone != "" {
		body["phone"] = req.Phone
	}
	if req.Role != "" {
		body["role"] = req.Role
	}
	return c.post(ctx, c.http, signupPath, body)
}

// ChangePassword calls the API on behalf of the holder of token.
func (c *Client) ChangePassword(ctx context.Context, token string, req models.ChangePasswordRequest) (json.RawMessage, error) {
	base := context.WithValue(ctx, oauth2.HTTPClient, c.http)
	hc := oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	return c.post(ctx, hc, changePasswordPath, req)
}

func (c *Client) post(ctx context.Context, hc *http.Client, path string, payload interface{}) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Warn("remote call failed", zap.String("path", path), zap.Error(err))
		return nil, &Error{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Err: err}
	}
	c.logger.Debug("remote call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Status: resp.StatusCode, Message: serverMessage(body)}
	}
	if failed, msg := applicationFailure(body); failed {
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(body), nil
}

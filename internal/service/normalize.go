package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/centum-academy/portal-api/internal/models"
)

var (
	ErrNoToken = errors.New("login response carries no token")
	ErrNoUser  = errors.New("login response carries no user")
)

// LoginPayload is a login response reduced to what the portal keeps.
type LoginPayload struct {
	Token      string
	User       *models.User
	FirstLogin bool
}

var (
	tokenFields      = []string{"token", "accessToken", "authToken"}
	userFields       = []string{"user", "userData"}
	firstLoginFields = []string{"isFirstLogin", "firstLogin"}
)

// NormalizeLogin accepts both the data-enveloped and the flat response shapes.
//
// Precedence:
//   - payload: the "data" object when present, else the body itself;
//   - token: token, accessToken, authToken; payload before body;
//   - user: user, userData; payload before body;
//   - first login: payload.isFirstLogin, body.isFirstLogin,
//     user.isFirstLogin, user.firstLogin; false when absent.
func NormalizeLogin(body []byte) (*LoginPayload, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if root == nil {
		return nil, ErrNoToken
	}
	layers := []map[string]json.RawMessage{root}
	var data map[string]json.RawMessage
	if raw, ok := root["data"]; ok && json.Unmarshal(raw, &data) == nil && data != nil {
		layers = []map[string]json.RawMessage{data, root}
	}

	out := &LoginPayload{}
	for _, layer := range layers {
		if out.Token = firstString(layer, tokenFields); out.Token != "" {
			break
		}
	}
	if out.Token == "" {
		return nil, ErrNoToken
	}

	var userRaw map[string]json.RawMessage
	for _, layer := range layers {
		for _, f := range userFields {
			raw, ok := layer[f]
			if !ok {
				continue
			}
			var obj map[string]json.RawMessage
			if json.Unmarshal(raw, &obj) != nil || obj == nil {
				continue
			}
			var u models.User
			if err := json.Unmarshal(raw, &u); err != nil {
				return nil, fmt.Errorf("decode user: %w", err)
			}
			out.User, userRaw = &u, obj
			break
		}
		if out.User != nil {
			break
		}
	}
	if out.User == nil {
		return nil, ErrNoUser
	}

	for _, layer := range append(layers, userRaw) {
		if v, ok := firstBool(layer, firstLoginFields[:1]); ok {
			out.FirstLogin = v
			return out, nil
		}
	}
	if v, ok := firstBool(userRaw, firstLoginFields[1:]); ok {
		out.FirstLogin = v
	}
	return out, nil
}

func firstString(m map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstBool accepts true/false and their string spellings.
func firstBool(m map[string]json.RawMessage, keys []string) (bool, bool) {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var b bool
		if json.Unmarshal(raw, &b) == nil {
			return b, true
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true":
				return true, true
			case "false":
				return false, true
			}
		}
	}
	return false, false
}

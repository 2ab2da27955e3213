package models

import (
	"encoding/json"
	"fmt"

	"github.com/centum-academy/portal-api/internal/rbac"
)

// User is the authenticated user as reported by the remote API. Role, name
// and email are typed; every other profile field is carried through as-is.
type User struct {
	ID      string
	Role    rbac.Role
	Name    string
	Email   string
	Profile map[string]json.RawMessage
}

var typedUserKeys = []string{"id", "role", "name", "email"}

func (u *User) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("user: expected object")
	}
	*u = User{}
	if v, ok := raw["id"]; ok {
		u.ID = looseString(v)
	} else if v, ok := raw["_id"]; ok {
		u.ID = looseString(v)
	}
	if v, ok := raw["role"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("user role: %w", err)
		}
		if role, known := rbac.ParseRole(s); known {
			u.Role = role
		} else {
			u.Role = rbac.Role(s)
		}
	}
	if v, ok := raw["name"]; ok {
		_ = json.Unmarshal(v, &u.Name)
	}
	if v, ok := raw["email"]; ok {
		_ = json.Unmarshal(v, &u.Email)
	}
	for _, k := range typedUserKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		u.Profile = raw
	}
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(u.Profile)+4)
	for k, v := range u.Profile {
		out[k] = v
	}
	if u.ID != "" {
		out["id"] = u.ID
	}
	out["role"] = u.Role
	out["name"] = u.Name
	out["email"] = u.Email
	return json.Marshal(out)
}

// Field decodes one passthrough profile field into dst.
func (u *User) Field(key string, dst interface{}) bool {
	raw, ok := u.Profile[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// ids arrive as numbers from some endpoints and strings from others
func looseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

package models

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// Credentials is the login form posted by the browser.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest carries the registration form. Fields beyond the listed ones
// are forwarded to the remote API untouched.
type SignupRequest struct {
	Name     string                 `json:"name" validate:"required"`
	Email    string                 `json:"email" validate:"required,email"`
	Password string                 `json:"password" validate:"required,min=6"`
	Phone    string                 `json:"phone,omitempty"`
	Role     string                 `json:"role,omitempty"`
	Extra    map[string]interface{} `json:"extra,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,nefield=CurrentPassword"`
}

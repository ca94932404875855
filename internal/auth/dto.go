package auth

import "github.com/google/uuid"

// LoginRequest captures the tenant credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	TenantCode string `json:"tenant_code"`
	TenantName string `json:"tenant_name"`
	Token      string `json:"token"`
}

// RegisterRequest creates a tenant with its first credential.
type RegisterRequest struct {
	TenantCode string `json:"tenant_code" validate:"required,max=20"`
	TenantName string `json:"tenant_name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email,max=100"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
}

// RegisterResponse mirrors LoginResponse and echoes the registered email.
type RegisterResponse struct {
	TenantCode string `json:"tenant_code"`
	TenantName string `json:"tenant_name"`
	Email      string `json:"email"`
	Token      string `json:"token"`
}

// ResetPasswordRequest overrides the password of the tenant owning Email.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

// APIKeyResponse carries a tenant's machine credential.
type APIKeyResponse struct {
	APIKey  string `json:"api_key"`
	Message string `json:"message,omitempty"`
}

// Identity is the authenticated tenant attached to a request. It never
// carries secrets.
type Identity struct {
	TenantID uuid.UUID `json:"-"`
	Code     string    `json:"tenant_code"`
	Name     string    `json:"tenant_name"`
	Email    string    `json:"email"`
}

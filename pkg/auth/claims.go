package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the tenant identity embedded in a bearer token.
type AccessTokenPayload struct {
	TenantCode string
	TenantName string
	Email      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	TenantCode string `json:"tenant_code"`
	TenantName string `json:"tenant_name"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

package controllers

import (
	"net/http"

	"github.com/kabisoft/kabipos-backend/api/middleware"
	"github.com/kabisoft/kabipos-backend/internal/auth"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
)

// requireTenant returns the identity attached by the auth middleware. Routes
// mounted without it answer 401.
func requireTenant(r *http.Request) (*auth.Identity, error) {
	identity, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return identity, nil
}

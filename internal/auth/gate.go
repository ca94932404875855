package auth

import (
	"context"
	"fmt"
	"time"

	pkgAuth "github.com/kabisoft/kabipos-backend/pkg/auth"
	"github.com/kabisoft/kabipos-backend/pkg/config"
	"github.com/kabisoft/kabipos-backend/pkg/db"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
)

const (
	missingHeaderMessage = "missing or invalid authorization header"
	invalidTokenMessage  = "invalid or expired token"
	missingAPIKeyMessage = "missing API key"
	invalidAPIKeyMessage = "invalid API key"
)

type tenantLookup interface {
	FindByCode(ctx context.Context, code string) (*models.Tenant, error)
	FindByAPIKey(ctx context.Context, key string) (*models.Tenant, error)
}

// Gate resolves request credentials into a tenant identity. It only reads.
type Gate struct {
	tenants tenantLookup
	jwtCfg  config.JWTConfig
	now     func() time.Time
}

// NewGate builds a Gate. A nil clock defaults to time.Now.
func NewGate(tenants tenantLookup, jwtCfg config.JWTConfig, now func() time.Time) (*Gate, error) {
	if tenants == nil {
		return nil, fmt.Errorf("tenant repository is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Gate{tenants: tenants, jwtCfg: jwtCfg, now: now}, nil
}

// ResolveBearer verifies the token carried by an Authorization header and
// loads the tenant it names.
func (g *Gate) ResolveBearer(ctx context.Context, header string) (*Identity, error) {
	token, ok := pkgAuth.BearerFromHeader(header)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, missingHeaderMessage)
	}
	claims, err := pkgAuth.ParseAccessTokenAt(g.jwtCfg, token, g.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidTokenMessage)
	}

	tenant, err := g.tenants.FindByCode(ctx, claims.TenantCode)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, tenantNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup tenant")
	}
	return identityFor(tenant)
}

// ResolveAPIKey loads the tenant holding key.
func (g *Gate) ResolveAPIKey(ctx context.Context, key string) (*Identity, error) {
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, missingAPIKeyMessage)
	}
	tenant, err := g.tenants.FindByAPIKey(ctx, key)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidAPIKeyMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup api key")
	}
	return identityFor(tenant)
}

func identityFor(tenant *models.Tenant) (*Identity, error) {
	if !tenant.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, tenantInactiveMessage).
			WithDetails(map[string]any{"tenant_code": tenant.Code})
	}
	return &Identity{
		TenantID: tenant.ID,
		Code:     tenant.Code,
		Name:     tenant.Name,
		Email:    tenant.Email,
	}, nil
}

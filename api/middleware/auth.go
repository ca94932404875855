package middleware

import (
	"context"
	"net/http"

	"github.com/kabisoft/kabipos-backend/api/responses"
	"github.com/kabisoft/kabipos-backend/api/validators"
	"github.com/kabisoft/kabipos-backend/internal/auth"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
	"github.com/kabisoft/kabipos-backend/pkg/logger"
	"github.com/kabisoft/kabipos-backend/pkg/metrics"
	"github.com/kabisoft/kabipos-backend/pkg/security"
)

// IdentityResolver turns request credentials into a tenant identity.
type IdentityResolver interface {
	ResolveBearer(ctx context.Context, header string) (*auth.Identity, error)
	ResolveAPIKey(ctx context.Context, key string) (*auth.Identity, error)
}

// Auth validates the bearer token and seeds the request context with the tenant.
func Auth(gate IdentityResolver, logg *logger.Logger, m *metrics.AuthMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := gate.ResolveBearer(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				rejectAuth(r.Context(), logg, m, w, metrics.AuthMethodBearer, "", err)
				return
			}
			m.Attempt(metrics.AuthMethodBearer, metrics.OutcomeSuccess)
			next.ServeHTTP(w, r.WithContext(attachTenant(r.Context(), logg, identity)))
		})
	}
}

// APIKeyAuth validates the x-api-key header and seeds the request context
// with the tenant that owns it.
func APIKeyAuth(gate IdentityResolver, logg *logger.Logger, m *metrics.AuthMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := validators.APIKeyFromRequest(r)
			identity, err := gate.ResolveAPIKey(r.Context(), key)
			if err != nil {
				masked := ""
				if key != "" {
					masked = security.MaskAPIKey(key)
				}
				rejectAuth(r.Context(), logg, m, w, metrics.AuthMethodAPIKey, masked, err)
				return
			}
			m.Attempt(metrics.AuthMethodAPIKey, metrics.OutcomeSuccess)
			next.ServeHTTP(w, r.WithContext(attachTenant(r.Context(), logg, identity)))
		})
	}
}

func attachTenant(ctx context.Context, logg *logger.Logger, identity *auth.Identity) context.Context {
	ctx = WithTenant(ctx, identity)
	if logg != nil {
		ctx = logg.WithTenantCode(ctx, identity.Code)
	}
	return ctx
}

func rejectAuth(ctx context.Context, logg *logger.Logger, m *metrics.AuthMetrics, w http.ResponseWriter, method, maskedKey string, err error) {
	outcome := metrics.OutcomeRejected
	if pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		outcome = metrics.OutcomeDenied
	}
	m.Attempt(method, outcome)

	if logg != nil {
		fields := map[string]any{
			"operation":   "authenticate",
			"auth_method": method,
		}
		if typed := pkgerrors.As(err); typed != nil {
			fields["reason"] = typed.Message()
			if details, ok := typed.Details().(map[string]any); ok {
				if code, ok := details["tenant_code"]; ok {
					fields["tenant_code"] = code
				}
			}
		}
		if maskedKey != "" {
			fields["api_key"] = maskedKey
		}
		logg.Warn(logg.WithFields(ctx, fields), "auth.rejected")
	}

	responses.WriteError(ctx, nil, w, err)
}

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/internal/tenants"
	pkgAuth "github.com/kabisoft/kabipos-backend/pkg/auth"
	"github.com/kabisoft/kabipos-backend/pkg/config"
	"github.com/kabisoft/kabipos-backend/pkg/db"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
	"github.com/kabisoft/kabipos-backend/pkg/logger"
	"github.com/kabisoft/kabipos-backend/pkg/metrics"
	"github.com/kabisoft/kabipos-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	tenantInactiveMessage     = "tenant not active"
	tenantNotFoundMessage     = "tenant not found"

	apiKeyRegeneratedMessage = "API key regenerated; the previous key no longer works"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	APIKey(ctx context.Context, tenantID uuid.UUID) (*APIKeyResponse, error)
	RegenerateAPIKey(ctx context.Context, tenantID uuid.UUID) (*APIKeyResponse, error)
}

type credentialStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	FindByEmail(ctx context.Context, email string) (*models.Tenant, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, plain string) error
	EnsureAPIKey(ctx context.Context, id uuid.UUID, candidate string) (string, error)
	ReplaceAPIKey(ctx context.Context, id uuid.UUID, key string) error
}

type provisioner interface {
	Provision(ctx context.Context, input tenants.ProvisionInput) (*tenants.ProvisionResult, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Tenants     credentialStore
	Provisioner provisioner
	JWTConfig   config.JWTConfig
	Password    config.PasswordConfig
	Logger      *logger.Logger
	Metrics     *metrics.AuthMetrics
	Now         func() time.Time
}

type service struct {
	tenants     credentialStore
	provisioner provisioner
	jwtCfg      config.JWTConfig
	logg        *logger.Logger
	metrics     *metrics.AuthMetrics
	now         func() time.Time
	dummyHash   string
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Tenants == nil {
		return nil, fmt.Errorf("tenant repository is required")
	}
	if params.Provisioner == nil {
		return nil, fmt.Errorf("tenant provisioner is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	// Compared against when the email is unknown so both failure paths pay
	// for one bcrypt comparison.
	dummy, err := security.HashPassword(uuid.NewString(), params.Password)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy digest: %w", err)
	}
	return &service{
		tenants:     params.Tenants,
		provisioner: params.Provisioner,
		jwtCfg:      params.JWTConfig,
		logg:        params.Logger,
		metrics:     params.Metrics,
		now:         now,
		dummyHash:   dummy,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := tenants.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, s.reject(ctx, "", "login", "missing credentials",
			pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage))
	}

	tenant, err := s.tenants.FindByEmail(ctx, email)
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup tenant")
		}
		_, _ = security.VerifyPassword(req.Password, s.dummyHash)
		return nil, s.reject(ctx, "", "login", "unknown email",
			pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage))
	}

	valid, err := security.VerifyPassword(req.Password, tenant.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, s.reject(ctx, tenant.Code, "login", "wrong password",
			pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage))
	}
	if !tenant.IsActive {
		s.metrics.Attempt(metrics.AuthMethodPassword, metrics.OutcomeDenied)
		if s.logg != nil {
			s.logg.Warn(s.auditContext(ctx, tenant.Code, "login", tenantInactiveMessage), "auth.rejected")
		}
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, tenantInactiveMessage)
	}

	token, err := s.mint(tenant.Code, tenant.Name, tenant.Email)
	if err != nil {
		return nil, err
	}

	s.metrics.Attempt(metrics.AuthMethodPassword, metrics.OutcomeSuccess)
	if s.logg != nil {
		logCtx := s.logg.WithOperation(s.logg.WithTenantCode(ctx, tenant.Code), "login")
		s.logg.Info(logCtx, "auth.login.success")
	}

	return &LoginResponse{
		TenantCode: tenant.Code,
		TenantName: tenant.Name,
		Token:      token,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if strings.TrimSpace(req.Password) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	result, err := s.provisioner.Provision(ctx, tenants.ProvisionInput{
		Code:     req.TenantCode,
		Name:     req.TenantName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	created := result.Tenant
	token, err := s.mint(created.Code, created.Name, created.Email)
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithOperation(s.logg.WithTenantCode(ctx, created.Code), "register")
		s.logg.Info(logCtx, "auth.register.success")
	}

	return &RegisterResponse{
		TenantCode: created.Code,
		TenantName: created.Name,
		Email:      created.Email,
		Token:      token,
	}, nil
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.NewPassword == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "new password is required")
	}
	tenant, err := s.tenants.FindByEmail(ctx, tenants.NormalizeEmail(req.Email))
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, tenantNotFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup tenant")
	}
	if err := s.tenants.UpdatePassword(ctx, tenant.ID, req.NewPassword); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	s.audit(ctx, tenant.Code, "reset_password", "password overridden")
	return nil
}

func (s *service) APIKey(ctx context.Context, tenantID uuid.UUID) (*APIKeyResponse, error) {
	tenant, err := s.loadTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant.APIKey != nil && *tenant.APIKey != "" {
		return &APIKeyResponse{APIKey: *tenant.APIKey}, nil
	}

	candidate, err := security.GenerateAPIKey()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate api key")
	}
	key, err := s.tenants.EnsureAPIKey(ctx, tenant.ID, candidate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store api key")
	}
	s.audit(ctx, tenant.Code, "api_key", "issued "+security.MaskAPIKey(key))
	return &APIKeyResponse{APIKey: key}, nil
}

func (s *service) RegenerateAPIKey(ctx context.Context, tenantID uuid.UUID) (*APIKeyResponse, error) {
	tenant, err := s.loadTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	key, err := security.GenerateAPIKey()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate api key")
	}
	if err := s.tenants.ReplaceAPIKey(ctx, tenant.ID, key); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, tenantNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace api key")
	}
	s.audit(ctx, tenant.Code, "api_key_regenerate", "issued "+security.MaskAPIKey(key))
	return &APIKeyResponse{APIKey: key, Message: apiKeyRegeneratedMessage}, nil
}

func (s *service) loadTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, tenantNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load tenant")
	}
	return tenant, nil
}

func (s *service) mint(code, name, email string) (string, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		TenantCode: code,
		TenantName: name,
		Email:      email,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}

func (s *service) reject(ctx context.Context, code, op, reason string, err error) error {
	s.metrics.Attempt(metrics.AuthMethodPassword, metrics.OutcomeRejected)
	if s.logg != nil {
		s.logg.Warn(s.auditContext(ctx, code, op, reason), "auth.rejected")
	}
	return err
}

func (s *service) audit(ctx context.Context, code, op, reason string) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.auditContext(ctx, code, op, reason), "auth.audit")
}

func (s *service) auditContext(ctx context.Context, code, op, reason string) context.Context {
	fields := map[string]any{"operation": op, "reason": reason}
	if code != "" {
		fields["tenant_code"] = code
	}
	return s.logg.WithFields(ctx, fields)
}

package tenants

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/pkg/db"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
	"github.com/kabisoft/kabipos-backend/pkg/security"
)

const tempPasswordLength = 16

type tenantRepository interface {
	Create(ctx context.Context, dto CreateTenantDTO) (*models.Tenant, error)
	FindByCode(ctx context.Context, code string) (*models.Tenant, error)
	FindByEmail(ctx context.Context, email string) (*models.Tenant, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// Service covers tenant administration outside the HTTP surface.
type Service interface {
	Provision(ctx context.Context, input ProvisionInput) (*ProvisionResult, error)
	GetByCode(ctx context.Context, code string) (*TenantDTO, error)
	SetActive(ctx context.Context, code string, active bool) (*TenantDTO, error)
}

// ProvisionInput describes a pre-provisioned tenant. An empty password
// makes the service generate a temporary one.
type ProvisionInput struct {
	Code      string
	Name      string
	Email     string
	Password  string
	Phone     *string
	Address   *string
	TaxOffice *string
	TaxNumber *string
}

// ProvisionResult returns the new tenant and, when one was generated, the
// temporary password. It is shown once and never stored in clear.
type ProvisionResult struct {
	Tenant       *TenantDTO
	TempPassword string
}

type service struct {
	repo tenantRepository
}

// NewService builds the tenant administration service.
func NewService(repo tenantRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tenant repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Provision(ctx context.Context, input ProvisionInput) (*ProvisionResult, error) {
	code := NormalizeCode(input.Code)
	email := NormalizeEmail(input.Email)
	if code == "" || email == "" || strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant code, name and email are required")
	}
	if !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}

	if err := s.ensureAvailable(ctx, code, email); err != nil {
		return nil, err
	}

	password := input.Password
	var temp string
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
		}
		password, temp = generated, generated
	}

	tenant, err := s.repo.Create(ctx, CreateTenantDTO{
		Code:      code,
		Name:      input.Name,
		Email:     email,
		Password:  password,
		Phone:     input.Phone,
		Address:   input.Address,
		TaxOffice: input.TaxOffice,
		TaxNumber: input.TaxNumber,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "tenant already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create tenant")
	}

	return &ProvisionResult{Tenant: FromModel(tenant), TempPassword: temp}, nil
}

func (s *service) ensureAvailable(ctx context.Context, code, email string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup tenant by email")
	}
	if _, err := s.repo.FindByCode(ctx, code); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "tenant code already registered")
	} else if !db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup tenant by code")
	}
	return nil
}

func (s *service) GetByCode(ctx context.Context, code string) (*TenantDTO, error) {
	tenant, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	return FromModel(tenant), nil
}

func (s *service) SetActive(ctx context.Context, code string, active bool) (*TenantDTO, error) {
	tenant, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, tenant.ID, active); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update tenant status")
	}
	tenant.IsActive = active
	return FromModel(tenant), nil
}

func (s *service) load(ctx context.Context, code string) (*models.Tenant, error) {
	tenant, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load tenant")
	}
	return tenant, nil
}

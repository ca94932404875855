package tenants

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubTenantRepo struct {
	byCode    map[string]*models.Tenant
	byEmail   map[string]*models.Tenant
	created   *CreateTenantDTO
	createErr error
	lookupErr error
	activeSet map[uuid.UUID]bool
}

func newStubTenantRepo() *stubTenantRepo {
	return &stubTenantRepo{
		byCode:    map[string]*models.Tenant{},
		byEmail:   map[string]*models.Tenant{},
		activeSet: map[uuid.UUID]bool{},
	}
}

func (s *stubTenantRepo) Create(ctx context.Context, dto CreateTenantDTO) (*models.Tenant, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &dto
	tenant, err := PrepareCredentials(dto, testPasswordCfg)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *stubTenantRepo) FindByCode(ctx context.Context, code string) (*models.Tenant, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if t, ok := s.byCode[code]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTenantRepo) FindByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if t, ok := s.byEmail[email]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTenantRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	s.activeSet[id] = active
	return nil
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil repo")
	}
}

func TestProvisionGeneratesTempPassword(t *testing.T) {
	repo := newStubTenantRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	res, err := svc.Provision(context.Background(), ProvisionInput{Code: "ACME", Name: "Acme", Email: "Owner@Acme.test"})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if len(res.TempPassword) != tempPasswordLength {
		t.Fatalf("expected temp password of length %d, got %q", tempPasswordLength, res.TempPassword)
	}
	if repo.created.Password != res.TempPassword {
		t.Fatal("expected temp password to be used for the credential")
	}
	if res.Tenant.Email != "owner@acme.test" || !res.Tenant.IsActive {
		t.Fatalf("unexpected tenant %+v", res.Tenant)
	}
}

func TestProvisionKeepsSuppliedPassword(t *testing.T) {
	repo := newStubTenantRepo()
	svc, _ := NewService(repo)

	res, err := svc.Provision(context.Background(), ProvisionInput{Code: "ACME", Name: "Acme", Email: "a@acme.test", Password: "pw123"})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if res.TempPassword != "" {
		t.Fatal("expected no temp password when one was supplied")
	}
	if repo.created.Password != "pw123" {
		t.Fatalf("expected supplied password, got %q", repo.created.Password)
	}
}

func TestProvisionConflicts(t *testing.T) {
	repo := newStubTenantRepo()
	repo.byEmail["a@acme.test"] = &models.Tenant{ID: uuid.New()}
	svc, _ := NewService(repo)

	_, err := svc.Provision(context.Background(), ProvisionInput{Code: "ACME", Name: "Acme", Email: "a@acme.test", Password: "pw"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for taken email, got %v", err)
	}

	repo = newStubTenantRepo()
	repo.byCode["ACME"] = &models.Tenant{ID: uuid.New()}
	svc, _ = NewService(repo)
	_, err = svc.Provision(context.Background(), ProvisionInput{Code: "ACME", Name: "Acme", Email: "b@acme.test", Password: "pw"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for taken code, got %v", err)
	}
}

func TestProvisionLateUniqueViolation(t *testing.T) {
	repo := newStubTenantRepo()
	repo.createErr = gorm.ErrDuplicatedKey
	svc, _ := NewService(repo)

	_, err := svc.Provision(context.Background(), ProvisionInput{Code: "ACME", Name: "Acme", Email: "a@acme.test", Password: "pw"})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestProvisionValidation(t *testing.T) {
	svc, _ := NewService(newStubTenantRepo())

	cases := []ProvisionInput{
		{Name: "Acme", Email: "a@acme.test"},
		{Code: "ACME", Email: "a@acme.test"},
		{Code: "ACME", Name: "Acme", Email: "not-an-email"},
	}
	for _, in := range cases {
		if _, err := svc.Provision(context.Background(), in); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestSetActiveByCode(t *testing.T) {
	repo := newStubTenantRepo()
	id := uuid.New()
	repo.byCode["ACME"] = &models.Tenant{ID: id, Code: "ACME", IsActive: true}
	svc, _ := NewService(repo)

	dto, err := svc.SetActive(context.Background(), "ACME", false)
	if err != nil {
		t.Fatalf("set active: %v", err)
	}
	if dto.IsActive {
		t.Fatal("expected returned tenant to be inactive")
	}
	if active, ok := repo.activeSet[id]; !ok || active {
		t.Fatal("expected repository to record deactivation")
	}

	if _, err := svc.SetActive(context.Background(), "NOPE", true); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetByCodeStoreFailure(t *testing.T) {
	repo := newStubTenantRepo()
	repo.lookupErr = errors.New("connection reset")
	svc, _ := NewService(repo)

	_, err := svc.GetByCode(context.Background(), "ACME")
	if !pkgerrors.HasCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

package tenants

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/pkg/config"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	"github.com/kabisoft/kabipos-backend/pkg/security"
	"gorm.io/gorm"
)

// Repository is the credential store. Writes that touch secrets go through
// dedicated methods so hashing and key replacement are always explicit.
type Repository struct {
	db       *gorm.DB
	password config.PasswordConfig
}

// NewRepository binds a GORM DB to tenant operations.
func NewRepository(db *gorm.DB, password config.PasswordConfig) *Repository {
	return &Repository{db: db, password: password}
}

// Create hashes the supplied password and inserts the tenant.
func (r *Repository) Create(ctx context.Context, dto CreateTenantDTO) (*models.Tenant, error) {
	tenant, err := PrepareCredentials(dto, r.password)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// FindByID loads a tenant by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// FindByEmail retrieves the tenant registered with email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	return r.findOne(ctx, "email = ?", NormalizeEmail(email))
}

// FindByCode retrieves the tenant with the given external code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Tenant, error) {
	return r.findOne(ctx, "code = ?", NormalizeCode(code))
}

// FindByAPIKey retrieves the tenant holding key.
func (r *Repository) FindByAPIKey(ctx context.Context, key string) (*models.Tenant, error) {
	if key == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return r.findOne(ctx, "api_key = ?", key)
}

func (r *Repository) findOne(ctx context.Context, query string, arg any) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where(query, arg).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// UpdatePassword hashes plain and stores the new digest.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, plain string) error {
	hash, err := security.HashPassword(plain, r.password)
	if err != nil {
		return err
	}
	return r.updateByID(ctx, id, map[string]any{"password_hash": hash})
}

// EnsureAPIKey stores candidate only when the tenant has no key yet and
// returns whichever key is persisted afterwards.
func (r *Repository) EnsureAPIKey(ctx context.Context, id uuid.UUID, candidate string) (string, error) {
	if candidate == "" {
		return "", fmt.Errorf("api key candidate is required")
	}
	err := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ? AND api_key IS NULL", id).
		Updates(map[string]any{"api_key": candidate}).Error
	if err != nil {
		return "", err
	}

	tenant, err := r.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if tenant.APIKey == nil {
		return "", fmt.Errorf("api key not persisted for tenant %s", id)
	}
	return *tenant.APIKey, nil
}

// ReplaceAPIKey overwrites the stored key in a single statement.
func (r *Repository) ReplaceAPIKey(ctx context.Context, id uuid.UUID, key string) error {
	if key == "" {
		return fmt.Errorf("api key is required")
	}
	return r.updateByID(ctx, id, map[string]any{"api_key": key})
}

// SetActive flips the soft-disable flag. Tenants are never deleted.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.updateByID(ctx, id, map[string]any{"is_active": active})
}

func (r *Repository) updateByID(ctx context.Context, id uuid.UUID, values map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

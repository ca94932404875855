package tenants

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/pkg/config"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	"github.com/kabisoft/kabipos-backend/pkg/security"
)

// CreateTenantDTO carries the plaintext input for a new tenant.
type CreateTenantDTO struct {
	Code      string
	Name      string
	Email     string
	Password  string
	Phone     *string
	Address   *string
	TaxOffice *string
	TaxNumber *string
	Inactive  bool
}

// TenantDTO is the public projection of a tenant. It never carries the
// password digest or the API key.
type TenantDTO struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"tenant_code"`
	Name      string    `json:"tenant_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	TaxOffice *string   `json:"tax_office,omitempty"`
	TaxNumber *string   `json:"tax_number,omitempty"`
	IsActive  bool      `json:"is_active"`
	HasAPIKey bool      `json:"has_api_key"`
	CreatedAt time.Time `json:"created_at"`
}

// FromModel maps a tenant row to its public DTO.
func FromModel(m *models.Tenant) *TenantDTO {
	if m == nil {
		return nil
	}
	return &TenantDTO{
		ID:        m.ID,
		Code:      m.Code,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Address:   m.Address,
		TaxOffice: m.TaxOffice,
		TaxNumber: m.TaxNumber,
		IsActive:  m.IsActive,
		HasAPIKey: m.APIKey != nil && *m.APIKey != "",
		CreatedAt: m.CreatedAt,
	}
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeCode trims surrounding whitespace from a tenant code.
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}

// PrepareCredentials turns the plaintext DTO into a row ready for insert.
// The password is hashed here and nowhere else on the create path.
func PrepareCredentials(dto CreateTenantDTO, cfg config.PasswordConfig) (*models.Tenant, error) {
	code := NormalizeCode(dto.Code)
	email := NormalizeEmail(dto.Email)
	if code == "" || email == "" {
		return nil, fmt.Errorf("tenant code and email are required")
	}

	hash, err := security.HashPassword(dto.Password, cfg)
	if err != nil {
		return nil, err
	}

	return &models.Tenant{
		ID:           uuid.New(),
		Code:         code,
		Name:         strings.TrimSpace(dto.Name),
		Email:        email,
		PasswordHash: hash,
		Phone:        dto.Phone,
		Address:      dto.Address,
		TaxOffice:    dto.TaxOffice,
		TaxNumber:    dto.TaxNumber,
		IsActive:     !dto.Inactive,
	}, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is a company account. It owns products and invoices and carries
// both credentials used by the authentication gate.
type Tenant struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code         string    `gorm:"column:code;size:20;not null;uniqueIndex:uq_tenants_code"`
	Name         string    `gorm:"column:name;size:100;not null"`
	Email        string    `gorm:"column:email;size:100;not null;uniqueIndex:uq_tenants_email"`
	PasswordHash string    `gorm:"column:password_hash;size:100;not null"`
	APIKey       *string   `gorm:"column:api_key;size:64;uniqueIndex:uq_tenants_api_key"`
	Phone        *string   `gorm:"column:phone;size:20"`
	Address      *string   `gorm:"column:address;type:text"`
	TaxOffice    *string   `gorm:"column:tax_office;size:100"`
	TaxNumber    *string   `gorm:"column:tax_number;size:20"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Tenant) TableName() string { return "tenants" }

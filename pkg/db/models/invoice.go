package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice numbers are unique per selling tenant.
type Invoice struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID          uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_invoices_tenant_number,priority:1"`
	InvoiceNo         string          `gorm:"column:invoice_no;size:50;not null;uniqueIndex:uq_invoices_tenant_number,priority:2"`
	CustomerName      string          `gorm:"column:customer_name;size:100;not null"`
	CustomerPhone     *string         `gorm:"column:customer_phone;size:20"`
	CustomerAddress   *string         `gorm:"column:customer_address;type:text"`
	CustomerTaxNumber *string         `gorm:"column:customer_tax_number;size:20"`
	CustomerTaxOffice *string         `gorm:"column:customer_tax_office;size:100"`
	OrderDate         time.Time       `gorm:"column:order_date;type:date;not null"`
	TotalAmount       decimal.Decimal `gorm:"column:total_amount;type:numeric(10,2);not null"`
	VATAmount         decimal.Decimal `gorm:"column:vat_amount;type:numeric(10,2);not null"`
	PaymentType       string          `gorm:"column:payment_type;size:50;not null"`
	Note              *string         `gorm:"column:note;type:text"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Invoice) TableName() string { return "invoices" }

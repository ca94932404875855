package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:uq_products_tenant_barcode,priority:1"`
	Barcode       string          `gorm:"column:barcode;size:50;not null;uniqueIndex:uq_products_tenant_barcode,priority:2"`
	Name          string          `gorm:"column:name;size:100;not null"`
	Description   *string         `gorm:"column:description;type:text"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null"`
	Category      *string         `gorm:"column:category;size:50"`
	Unit          string          `gorm:"column:unit;size:20;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

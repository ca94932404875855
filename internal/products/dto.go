package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// DefaultUnit is applied when a product is created without a unit.
const DefaultUnit = "Adet"

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Barcode       string           `json:"barcode" validate:"required,max=50"`
	Name          string           `json:"name" validate:"required,max=100"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	StockQuantity int              `json:"stock_quantity" validate:"gte=0"`
	Category      *string          `json:"category" validate:"omitempty,max=50"`
	Unit          string           `json:"unit" validate:"omitempty,max=20"`
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Barcode       *string          `json:"barcode" validate:"omitempty,min=1,max=50"`
	Name          *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity" validate:"omitempty,gte=0"`
	Category      *string          `json:"category" validate:"omitempty,max=50"`
	Unit          *string          `json:"unit" validate:"omitempty,min=1,max=20"`
}

// ProductDTO is the public view of a product.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	Barcode       string          `json:"barcode"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Category      *string         `json:"category,omitempty"`
	Unit          string          `json:"unit"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FromModel maps a product row to its DTO. The owning tenant is implied by
// the caller and not echoed.
func FromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	return &ProductDTO{
		ID:            m.ID,
		Barcode:       m.Barcode,
		Name:          m.Name,
		Description:   m.Description,
		Price:         m.Price,
		StockQuantity: m.StockQuantity,
		Category:      m.Category,
		Unit:          m.Unit,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromModels maps a slice of rows, preserving order.
func FromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

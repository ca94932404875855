package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/pkg/db"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	productNotFoundMessage  = "product not found"
	duplicateBarcodeMessage = "a product with this barcode already exists"
)

// Service exposes tenant-scoped product management operations.
type Service interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]ProductDTO, error)
	Get(ctx context.Context, tenantID, productID uuid.UUID) (*ProductDTO, error)
	GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*ProductDTO, error)
	Create(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, tenantID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, tenantID, productID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService constructs a product service instance.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, tenantID, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return FromModel(product), nil
}

func (s *service) GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*ProductDTO, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}
	product, err := s.repo.FindByBarcode(ctx, tenantID, barcode)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return FromModel(product), nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	barcode := strings.TrimSpace(input.Barcode)
	name := strings.TrimSpace(input.Name)
	if barcode == "" || name == "" || input.Price == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode, name and price are required")
	}
	if err := validatePrice(*input.Price); err != nil {
		return nil, err
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
	}

	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = DefaultUnit
	}

	var created *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := ensureBarcodeFree(ctx, txRepo, tenantID, barcode, uuid.Nil); err != nil {
			return err
		}
		product, err := txRepo.Create(ctx, tenantID, &models.Product{
			Barcode:       barcode,
			Name:          name,
			Description:   input.Description,
			Price:         input.Price.Round(2),
			StockQuantity: input.StockQuantity,
			Category:      input.Category,
			Unit:          unit,
		})
		if err != nil {
			return mapWriteError(err, "create product")
		}
		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, tenantID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := txRepo.FindByID(ctx, tenantID, productID)
		if err != nil {
			return mapLookupError(err)
		}

		changes, err := buildChanges(current, input)
		if err != nil {
			return err
		}
		if barcode, ok := changes["barcode"].(string); ok {
			if err := ensureBarcodeFree(ctx, txRepo, tenantID, barcode, productID); err != nil {
				return err
			}
		}
		if err := txRepo.Update(ctx, tenantID, productID, changes); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
			}
			return mapWriteError(err, "update product")
		}

		updated, err = txRepo.FindByID(ctx, tenantID, productID)
		if err != nil {
			return mapLookupError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	if err := s.repo.Delete(ctx, tenantID, productID); err != nil {
		return mapLookupError(err)
	}
	return nil
}

// buildChanges turns the non-nil fields of input into a column map. Only
// columns whose value actually differs are included.
func buildChanges(current *models.Product, input UpdateProductInput) (map[string]any, error) {
	changes := map[string]any{}
	if input.Barcode != nil {
		barcode := strings.TrimSpace(*input.Barcode)
		if barcode == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode cannot be empty")
		}
		if barcode != current.Barcode {
			changes["barcode"] = barcode
		}
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		changes["name"] = name
	}
	if input.Description != nil {
		changes["description"] = *input.Description
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		changes["price"] = input.Price.Round(2)
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
		}
		changes["stock_quantity"] = *input.StockQuantity
	}
	if input.Category != nil {
		changes["category"] = *input.Category
	}
	if input.Unit != nil {
		unit := strings.TrimSpace(*input.Unit)
		if unit == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cannot be empty")
		}
		changes["unit"] = unit
	}
	return changes, nil
}

var maxPrice = decimal.New(1, 8)

// validatePrice keeps the value inside numeric(10,2).
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if price.Round(2).GreaterThanOrEqual(maxPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price is too large")
	}
	return nil
}

func ensureBarcodeFree(ctx context.Context, repo *Repository, tenantID uuid.UUID, barcode string, exclude uuid.UUID) error {
	exists, err := repo.BarcodeExists(ctx, tenantID, barcode, exclude)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check barcode")
	}
	if exists {
		return pkgerrors.New(pkgerrors.CodeConflict, duplicateBarcodeMessage)
	}
	return nil
}

func mapLookupError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
}

func mapWriteError(err error, op string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, duplicateBarcodeMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

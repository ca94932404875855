package product

import (
	"context"

	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository scopes every product query to a single tenant.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("tenant_id = ?", tenantID)
}

// List returns the tenant's products, newest first.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.scoped(ctx, tenantID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a product owned by tenantID.
func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByBarcode loads the tenant's product with the given barcode.
func (r *Repository) FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*models.Product, error) {
	var product models.Product
	if err := r.scoped(ctx, tenantID).Where("barcode = ?", barcode).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// BarcodeExists reports whether the tenant already uses barcode on a product
// other than exclude. Pass uuid.Nil to check every product.
func (r *Repository) BarcodeExists(ctx context.Context, tenantID uuid.UUID, barcode string, exclude uuid.UUID) (bool, error) {
	query := r.scoped(ctx, tenantID).Where("barcode = ?", barcode)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the product under tenantID, overriding whatever tenant the
// row carried.
func (r *Repository) Create(ctx context.Context, tenantID uuid.UUID, product *models.Product) (*models.Product, error) {
	product.TenantID = tenantID
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update applies the changed columns to a product owned by tenantID.
func (r *Repository) Update(ctx context.Context, tenantID, id uuid.UUID, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	res := r.scoped(ctx, tenantID).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a product owned by tenantID.
func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

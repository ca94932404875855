package invoice

import (
	"context"

	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository scopes every invoice query to a single tenant.
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
	return r.db.WithContext(ctx).Model(&models.Invoice{}).Where("tenant_id = ?", tenantID)
}

// ListByDateRange returns invoices dated within [rng.Start, rng.End], most
// recent order date first.
func (r *Repository) ListByDateRange(ctx context.Context, tenantID uuid.UUID, rng DateRange) ([]models.Invoice, error) {
	var rows []models.Invoice
	err := r.scoped(ctx, tenantID).
		Where("order_date >= ? AND order_date < ?", rng.Start, rng.End.AddDate(0, 0, 1)).
		Order("order_date DESC").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads an invoice owned by tenantID.
func (r *Repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber loads the tenant's invoice with the given number.
func (r *Repository) FindByNumber(ctx context.Context, tenantID uuid.UUID, invoiceNo string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.scoped(ctx, tenantID).Where("invoice_no = ?", invoiceNo).First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// NumberExists reports whether the tenant already issued invoiceNo on an
// invoice other than exclude.
func (r *Repository) NumberExists(ctx context.Context, tenantID uuid.UUID, invoiceNo string, exclude uuid.UUID) (bool, error) {
	query := r.scoped(ctx, tenantID).Where("invoice_no = ?", invoiceNo)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the invoice under tenantID.
func (r *Repository) Create(ctx context.Context, tenantID uuid.UUID, invoice *models.Invoice) (*models.Invoice, error) {
	invoice.TenantID = tenantID
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// Update applies the changed columns to an invoice owned by tenantID.
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

// Delete removes an invoice owned by tenantID.
func (r *Repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.Invoice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

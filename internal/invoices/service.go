package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/pkg/db"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	invoiceNotFoundMessage = "invoice not found"
	duplicateNumberMessage = "an invoice with this number already exists"
)

var errEndBeforeStart = errors.New("end_date must not be before start_date")

var maxAmount = decimal.New(1, 8)

// Service exposes tenant-scoped invoice operations.
type Service interface {
	ListByDateRange(ctx context.Context, tenantID uuid.UUID, start, end string) ([]InvoiceDTO, error)
	Get(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceDTO, error)
	GetByNumber(ctx context.Context, tenantID uuid.UUID, invoiceNo string) (*InvoiceDTO, error)
	Create(ctx context.Context, tenantID uuid.UUID, input CreateInvoiceInput) (*InvoiceDTO, error)
	Update(ctx context.Context, tenantID, invoiceID uuid.UUID, input UpdateInvoiceInput) (*InvoiceDTO, error)
	Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	now  func() time.Time
}

// NewService constructs an invoice service. A nil clock defaults to time.Now.
func NewService(repo *Repository, tx txRunner, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("db client required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, tx: tx, now: now}, nil
}

func (s *service) ListByDateRange(ctx context.Context, tenantID uuid.UUID, start, end string) ([]InvoiceDTO, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start_date and end_date are required")
	}
	rng, err := NewDateRange(strings.TrimSpace(start), strings.TrimSpace(end))
	if err != nil {
		if errors.Is(err, errEndBeforeStart) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "dates must use YYYY-MM-DD").
			WithDetails(map[string]any{"start_date": start, "end_date": end})
	}

	rows, err := s.repo.ListByDateRange(ctx, tenantID, rng)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list invoices")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.repo.FindByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return FromModel(invoice), nil
}

func (s *service) GetByNumber(ctx context.Context, tenantID uuid.UUID, invoiceNo string) (*InvoiceDTO, error) {
	invoiceNo = strings.TrimSpace(invoiceNo)
	if invoiceNo == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice number is required")
	}
	invoice, err := s.repo.FindByNumber(ctx, tenantID, invoiceNo)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return FromModel(invoice), nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, input CreateInvoiceInput) (*InvoiceDTO, error) {
	invoiceNo := strings.TrimSpace(input.InvoiceNo)
	customer := strings.TrimSpace(input.CustomerName)
	if invoiceNo == "" || customer == "" || input.TotalAmount == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice_no, customer_name and total_amount are required")
	}

	total, err := validateAmount("total_amount", *input.TotalAmount)
	if err != nil {
		return nil, err
	}
	vat := decimal.Zero
	if input.VATAmount != nil {
		if vat, err = validateAmount("vat_amount", *input.VATAmount); err != nil {
			return nil, err
		}
	}

	orderDate := today(s.now())
	if input.OrderDate != nil && strings.TrimSpace(*input.OrderDate) != "" {
		if orderDate, err = parseOrderDate(*input.OrderDate); err != nil {
			return nil, err
		}
	}

	paymentType := strings.TrimSpace(input.PaymentType)
	if paymentType == "" {
		paymentType = DefaultPaymentType
	}

	var created *models.Invoice
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := ensureNumberFree(ctx, txRepo, tenantID, invoiceNo, uuid.Nil); err != nil {
			return err
		}
		invoice, err := txRepo.Create(ctx, tenantID, &models.Invoice{
			InvoiceNo:         invoiceNo,
			CustomerName:      customer,
			CustomerPhone:     input.CustomerPhone,
			CustomerAddress:   input.CustomerAddress,
			CustomerTaxNumber: input.CustomerTaxNumber,
			CustomerTaxOffice: input.CustomerTaxOffice,
			OrderDate:         orderDate,
			TotalAmount:       total,
			VATAmount:         vat,
			PaymentType:       paymentType,
			Note:              input.Note,
		})
		if err != nil {
			return mapWriteError(err, "create invoice")
		}
		created = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, input UpdateInvoiceInput) (*InvoiceDTO, error) {
	var updated *models.Invoice
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := txRepo.FindByID(ctx, tenantID, invoiceID)
		if err != nil {
			return mapLookupError(err)
		}

		changes, err := buildChanges(current, input)
		if err != nil {
			return err
		}
		if number, ok := changes["invoice_no"].(string); ok {
			if err := ensureNumberFree(ctx, txRepo, tenantID, number, invoiceID); err != nil {
				return err
			}
		}
		if err := txRepo.Update(ctx, tenantID, invoiceID, changes); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, invoiceNotFoundMessage)
			}
			return mapWriteError(err, "update invoice")
		}

		updated, err = txRepo.FindByID(ctx, tenantID, invoiceID)
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

func (s *service) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	if err := s.repo.Delete(ctx, tenantID, invoiceID); err != nil {
		return mapLookupError(err)
	}
	return nil
}

func buildChanges(current *models.Invoice, input UpdateInvoiceInput) (map[string]any, error) {
	changes := map[string]any{}
	if input.InvoiceNo != nil {
		number := strings.TrimSpace(*input.InvoiceNo)
		if number == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice_no cannot be empty")
		}
		if number != current.InvoiceNo {
			changes["invoice_no"] = number
		}
	}
	if input.CustomerName != nil {
		name := strings.TrimSpace(*input.CustomerName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_name cannot be empty")
		}
		changes["customer_name"] = name
	}
	if input.CustomerPhone != nil {
		changes["customer_phone"] = *input.CustomerPhone
	}
	if input.CustomerAddress != nil {
		changes["customer_address"] = *input.CustomerAddress
	}
	if input.CustomerTaxNumber != nil {
		changes["customer_tax_number"] = *input.CustomerTaxNumber
	}
	if input.CustomerTaxOffice != nil {
		changes["customer_tax_office"] = *input.CustomerTaxOffice
	}
	if input.OrderDate != nil {
		date, err := parseOrderDate(*input.OrderDate)
		if err != nil {
			return nil, err
		}
		changes["order_date"] = date
	}
	if input.TotalAmount != nil {
		total, err := validateAmount("total_amount", *input.TotalAmount)
		if err != nil {
			return nil, err
		}
		changes["total_amount"] = total
	}
	if input.VATAmount != nil {
		vat, err := validateAmount("vat_amount", *input.VATAmount)
		if err != nil {
			return nil, err
		}
		changes["vat_amount"] = vat
	}
	if input.PaymentType != nil {
		paymentType := strings.TrimSpace(*input.PaymentType)
		if paymentType == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment_type cannot be empty")
		}
		changes["payment_type"] = paymentType
	}
	if input.Note != nil {
		changes["note"] = *input.Note
	}
	return changes, nil
}

// validateAmount rounds to cents and keeps the value inside numeric(10,2).
func validateAmount(field string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, field+" cannot be negative")
	}
	rounded := amount.Round(2)
	if rounded.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, field+" is too large")
	}
	return rounded, nil
}

func parseOrderDate(value string) (time.Time, error) {
	date, err := ParseDate(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "order_date must use YYYY-MM-DD")
	}
	return date, nil
}

func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ensureNumberFree(ctx context.Context, repo *Repository, tenantID uuid.UUID, invoiceNo string, exclude uuid.UUID) error {
	exists, err := repo.NumberExists(ctx, tenantID, invoiceNo, exclude)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check invoice number")
	}
	if exists {
		return pkgerrors.New(pkgerrors.CodeConflict, duplicateNumberMessage)
	}
	return nil
}

func mapLookupError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, invoiceNotFoundMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load invoice")
}

func mapWriteError(err error, op string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, duplicateNumberMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

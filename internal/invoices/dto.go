package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

const (
	// DefaultPaymentType is applied when an invoice omits its payment type.
	DefaultPaymentType = "Nakit"
	// DateLayout is the calendar date format used on the wire.
	DateLayout = "2006-01-02"
)

// CreateInvoiceInput holds the validated payload to create an invoice.
type CreateInvoiceInput struct {
	InvoiceNo         string           `json:"invoice_no" validate:"required,max=50"`
	CustomerName      string           `json:"customer_name" validate:"required,max=100"`
	CustomerPhone     *string          `json:"customer_phone" validate:"omitempty,max=20"`
	CustomerAddress   *string          `json:"customer_address"`
	CustomerTaxNumber *string          `json:"customer_tax_number" validate:"omitempty,max=20"`
	CustomerTaxOffice *string          `json:"customer_tax_office" validate:"omitempty,max=100"`
	OrderDate         *string          `json:"order_date" validate:"omitempty,datetime=2006-01-02"`
	TotalAmount       *decimal.Decimal `json:"total_amount" validate:"required"`
	VATAmount         *decimal.Decimal `json:"vat_amount"`
	PaymentType       string           `json:"payment_type" validate:"omitempty,max=50"`
	Note              *string          `json:"note"`
}

// UpdateInvoiceInput holds optional mutation values for an invoice.
type UpdateInvoiceInput struct {
	InvoiceNo         *string          `json:"invoice_no" validate:"omitempty,min=1,max=50"`
	CustomerName      *string          `json:"customer_name" validate:"omitempty,min=1,max=100"`
	CustomerPhone     *string          `json:"customer_phone" validate:"omitempty,max=20"`
	CustomerAddress   *string          `json:"customer_address"`
	CustomerTaxNumber *string          `json:"customer_tax_number" validate:"omitempty,max=20"`
	CustomerTaxOffice *string          `json:"customer_tax_office" validate:"omitempty,max=100"`
	OrderDate         *string          `json:"order_date" validate:"omitempty,datetime=2006-01-02"`
	TotalAmount       *decimal.Decimal `json:"total_amount"`
	VATAmount         *decimal.Decimal `json:"vat_amount"`
	PaymentType       *string          `json:"payment_type" validate:"omitempty,min=1,max=50"`
	Note              *string          `json:"note"`
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// InvoiceDTO is the public view of an invoice.
type InvoiceDTO struct {
	ID                uuid.UUID       `json:"id"`
	InvoiceNo         string          `json:"invoice_no"`
	CustomerName      string          `json:"customer_name"`
	CustomerPhone     *string         `json:"customer_phone,omitempty"`
	CustomerAddress   *string         `json:"customer_address,omitempty"`
	CustomerTaxNumber *string         `json:"customer_tax_number,omitempty"`
	CustomerTaxOffice *string         `json:"customer_tax_office,omitempty"`
	OrderDate         string          `json:"order_date"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	VATAmount         decimal.Decimal `json:"vat_amount"`
	PaymentType       string          `json:"payment_type"`
	Note              *string         `json:"note,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// FromModel maps an invoice row to its DTO.
func FromModel(m *models.Invoice) *InvoiceDTO {
	if m == nil {
		return nil
	}
	return &InvoiceDTO{
		ID:                m.ID,
		InvoiceNo:         m.InvoiceNo,
		CustomerName:      m.CustomerName,
		CustomerPhone:     m.CustomerPhone,
		CustomerAddress:   m.CustomerAddress,
		CustomerTaxNumber: m.CustomerTaxNumber,
		CustomerTaxOffice: m.CustomerTaxOffice,
		OrderDate:         m.OrderDate.UTC().Format(DateLayout),
		TotalAmount:       m.TotalAmount,
		VATAmount:         m.VATAmount,
		PaymentType:       m.PaymentType,
		Note:              m.Note,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromModels maps a slice of rows, preserving order.
func FromModels(rows []models.Invoice) []InvoiceDTO {
	out := make([]InvoiceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

// ParseDate parses a YYYY-MM-DD value as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// NewDateRange parses both bounds and rejects an end before the start.
func NewDateRange(start, end string) (DateRange, error) {
	from, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	to, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	if to.Before(from) {
		return DateRange{}, errEndBeforeStart
	}
	return DateRange{Start: from, End: to}, nil
}

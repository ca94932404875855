package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	invoice "github.com/kabisoft/kabipos-backend/internal/invoices"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
)

type stubInvoiceService struct {
	calls      []string
	start, end string
	number     string
	created    invoice.CreateInvoiceInput
	returnErr  error
}

func (s *stubInvoiceService) ListByDateRange(ctx context.Context, tenantID uuid.UUID, start, end string) ([]invoice.InvoiceDTO, error) {
	s.calls = append(s.calls, "ListByDateRange")
	s.start, s.end = start, end
	return []invoice.InvoiceDTO{}, s.returnErr
}

func (s *stubInvoiceService) Get(ctx context.Context, tenantID, invoiceID uuid.UUID) (*invoice.InvoiceDTO, error) {
	s.calls = append(s.calls, "Get")
	return &invoice.InvoiceDTO{ID: invoiceID}, s.returnErr
}

func (s *stubInvoiceService) GetByNumber(ctx context.Context, tenantID uuid.UUID, invoiceNo string) (*invoice.InvoiceDTO, error) {
	s.calls = append(s.calls, "GetByNumber")
	s.number = invoiceNo
	if s.returnErr != nil {
		return nil, s.returnErr
	}
	return &invoice.InvoiceDTO{InvoiceNo: invoiceNo}, nil
}

func (s *stubInvoiceService) Create(ctx context.Context, tenantID uuid.UUID, input invoice.CreateInvoiceInput) (*invoice.InvoiceDTO, error) {
	s.calls = append(s.calls, "Create")
	s.created = input
	if s.returnErr != nil {
		return nil, s.returnErr
	}
	return &invoice.InvoiceDTO{InvoiceNo: input.InvoiceNo, PaymentType: invoice.DefaultPaymentType}, nil
}

func (s *stubInvoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, input invoice.UpdateInvoiceInput) (*invoice.InvoiceDTO, error) {
	s.calls = append(s.calls, "Update")
	return &invoice.InvoiceDTO{ID: invoiceID}, s.returnErr
}

func (s *stubInvoiceService) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	s.calls = append(s.calls, "Delete")
	return s.returnErr
}

func invoiceRouter(svc invoice.Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/invoices", InvoiceList(svc, nil))
	r.Get("/invoices/number/{invoiceNo}", InvoiceGetByNumber(svc, nil))
	r.Get("/invoices/{id}", InvoiceGet(svc, nil))
	r.Post("/invoices", InvoiceCreate(svc, nil))
	r.Put("/invoices/{id}", InvoiceUpdate(svc, nil))
	r.Delete("/invoices/{id}", InvoiceDelete(svc, nil))
	return r
}

func TestInvoiceListRequiresBothDates(t *testing.T) {
	svc := &stubInvoiceService{}
	req := withIdentity(httptest.NewRequest(http.MethodGet, "/invoices?start_date=2026-03-01", nil), uuid.New())
	rec := httptest.NewRecorder()

	invoiceRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error.Details["end_date"] != "is required" {
		t.Fatalf("expected end_date detail, got %v", body.Error.Details)
	}
	if _, ok := body.Error.Details["start_date"]; ok {
		t.Fatalf("start_date was supplied, got %v", body.Error.Details)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service must not be called, got %v", svc.calls)
	}
}

func TestInvoiceListForwardsRange(t *testing.T) {
	svc := &stubInvoiceService{}
	req := withIdentity(httptest.NewRequest(http.MethodGet, "/invoices?start_date=2026-03-01&end_date=2026-03-31", nil), uuid.New())
	rec := httptest.NewRecorder()

	invoiceRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.start != "2026-03-01" || svc.end != "2026-03-31" {
		t.Fatalf("unexpected range %q..%q", svc.start, svc.end)
	}
}

func TestInvoiceCreateValidatesDateFormat(t *testing.T) {
	svc := &stubInvoiceService{}
	payload := `{"invoice_no":"F-1","customer_name":"Ali","total_amount":100,"order_date":"15/03/2026"}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(payload)), uuid.New())
	rec := httptest.NewRecorder()

	invoiceRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if _, ok := decodeError(t, rec).Error.Details["order_date"]; !ok {
		t.Fatalf("expected order_date detail")
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service must not be called, got %v", svc.calls)
	}
}

func TestInvoiceCreateReturnsCreated(t *testing.T) {
	svc := &stubInvoiceService{}
	payload := `{"invoice_no":"F-1","customer_name":"Ali","total_amount":100}`
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(payload)), uuid.New())
	rec := httptest.NewRecorder()

	invoiceRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.created.InvoiceNo != "F-1" {
		t.Fatalf("unexpected input %+v", svc.created)
	}
}

func TestInvoiceGetByNumberNotFound(t *testing.T) {
	svc := &stubInvoiceService{returnErr: pkgerrors.New(pkgerrors.CodeNotFound, invoiceNotFound)}
	req := withIdentity(httptest.NewRequest(http.MethodGet, "/invoices/number/F-404", nil), uuid.New())
	rec := httptest.NewRecorder()

	invoiceRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if svc.number != "F-404" {
		t.Fatalf("unexpected number %q", svc.number)
	}
}

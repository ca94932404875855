package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/api/middleware"
	"github.com/kabisoft/kabipos-backend/internal/auth"
	product "github.com/kabisoft/kabipos-backend/internal/products"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type stubProductService struct {
	calls     []string
	tenantID  uuid.UUID
	lastID    uuid.UUID
	barcode   string
	created   product.CreateProductInput
	updated   product.UpdateProductInput
	returnErr error
}

func (s *stubProductService) record(name string, tenantID uuid.UUID) {
	s.calls = append(s.calls, name)
	s.tenantID = tenantID
}

func (s *stubProductService) List(ctx context.Context, tenantID uuid.UUID) ([]product.ProductDTO, error) {
	s.record("List", tenantID)
	return []product.ProductDTO{{ID: uuid.New(), Barcode: "111", Name: "Tea"}}, s.returnErr
}

func (s *stubProductService) Get(ctx context.Context, tenantID, productID uuid.UUID) (*product.ProductDTO, error) {
	s.record("Get", tenantID)
	s.lastID = productID
	if s.returnErr != nil {
		return nil, s.returnErr
	}
	return &product.ProductDTO{ID: productID}, nil
}

func (s *stubProductService) GetByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*product.ProductDTO, error) {
	s.record("GetByBarcode", tenantID)
	s.barcode = barcode
	if s.returnErr != nil {
		return nil, s.returnErr
	}
	return &product.ProductDTO{Barcode: barcode}, nil
}

func (s *stubProductService) Create(ctx context.Context, tenantID uuid.UUID, input product.CreateProductInput) (*product.ProductDTO, error) {
	s.record("Create", tenantID)
	s.created = input
	if s.returnErr != nil {
		return nil, s.returnErr
	}
	return &product.ProductDTO{ID: uuid.New(), Barcode: input.Barcode, Name: input.Name, Price: *input.Price, Unit: product.DefaultUnit}, nil
}

func (s *stubProductService) Update(ctx context.Context, tenantID, productID uuid.UUID, input product.UpdateProductInput) (*product.ProductDTO, error) {
	s.record("Update", tenantID)
	s.lastID = productID
	s.updated = input
	if s.returnErr != nil {
		return nil, s.returnErr
	}
	return &product.ProductDTO{ID: productID}, nil
}

func (s *stubProductService) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	s.record("Delete", tenantID)
	s.lastID = productID
	return s.returnErr
}

type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func productRouter(svc product.Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/products", ProductList(svc, nil))
	r.Get("/products/barcode/{barcode}", ProductGetByBarcode(svc, nil))
	r.Get("/products/{id}", ProductGet(svc, nil))
	r.Post("/products", ProductCreate(svc, nil))
	r.Put("/products/{id}", ProductUpdate(svc, nil))
	r.Delete("/products/{id}", ProductDelete(svc, nil))
	return r
}

func withIdentity(req *http.Request, tenantID uuid.UUID) *http.Request {
	identity := &auth.Identity{TenantID: tenantID, Code: "ACME", Name: "Acme"}
	return req.WithContext(middleware.WithTenant(req.Context(), identity))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestProductCreateMissingPriceFailsBeforeService(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"barcode":"869","name":"Tea"}`))
	req = withIdentity(req, uuid.New())
	rec := httptest.NewRecorder()

	productRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeError(t, rec)
	if body.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}
	if body.Error.Details["price"] != "is required" {
		t.Fatalf("expected price detail, got %v", body.Error.Details)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service must not be called, got %v", svc.calls)
	}
}

func TestProductCreateScopesToCaller(t *testing.T) {
	svc := &stubProductService{}
	tenantID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"barcode":"869","name":"Tea","price":12.5,"stock_quantity":3}`))
	req = withIdentity(req, tenantID)
	rec := httptest.NewRecorder()

	productRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.tenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, svc.tenantID)
	}
	if !svc.created.Price.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected price %s", svc.created.Price)
	}
}

func TestProductCreateRejectsUnknownFields(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"barcode":"869","name":"Tea","price":1,"tenant_id":"x"}`))
	req = withIdentity(req, uuid.New())
	rec := httptest.NewRecorder()

	productRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service must not be called, got %v", svc.calls)
	}
}

func TestProductRoutesRequireIdentity(t *testing.T) {
	svc := &stubProductService{}
	rec := httptest.NewRecorder()

	productRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service must not be called, got %v", svc.calls)
	}
}

func TestProductGetMalformedIDIsNotFound(t *testing.T) {
	svc := &stubProductService{}
	req := withIdentity(httptest.NewRequest(http.MethodGet, "/products/not-a-uuid", nil), uuid.New())
	rec := httptest.NewRecorder()

	productRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if msg := decodeError(t, rec).Error.Message; msg != productNotFound {
		t.Fatalf("unexpected message %q", msg)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service must not be called, got %v", svc.calls)
	}
}

func TestProductGetByBarcodePassesPathValue(t *testing.T) {
	svc := &stubProductService{}
	req := withIdentity(httptest.NewRequest(http.MethodGet, "/products/barcode/8690001", nil), uuid.New())
	rec := httptest.NewRecorder()

	productRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.barcode != "8690001" {
		t.Fatalf("unexpected barcode %q", svc.barcode)
	}
}

func TestProductServiceErrorsKeepTheirStatus(t *testing.T) {
	svc := &stubProductService{returnErr: pkgerrors.New(pkgerrors.CodeConflict, "a product with this barcode already exists")}
	id := uuid.New()
	req := withIdentity(httptest.NewRequest(http.MethodPut, "/products/"+id.String(), strings.NewReader(`{"barcode":"dup"}`)), uuid.New())
	rec := httptest.NewRecorder()

	productRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	if svc.lastID != id || svc.updated.Barcode == nil || *svc.updated.Barcode != "dup" {
		t.Fatalf("unexpected update call id=%s input=%+v", svc.lastID, svc.updated)
	}
}

func TestProductDeleteWritesMessage(t *testing.T) {
	svc := &stubProductService{}
	id := uuid.New()
	req := withIdentity(httptest.NewRequest(http.MethodDelete, "/products/"+id.String(), nil), uuid.New())
	rec := httptest.NewRecorder()

	productRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var body struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data["message"] != "product deleted" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

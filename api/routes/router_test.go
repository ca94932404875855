package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kabisoft/kabipos-backend/internal/auth"
	product "github.com/kabisoft/kabipos-backend/internal/products"
	"github.com/kabisoft/kabipos-backend/pkg/config"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
	"github.com/kabisoft/kabipos-backend/pkg/metrics"
)

const (
	goodToken = "good-token"
	goodKey   = "good-key"
)

var acme = &auth.Identity{TenantID: uuid.New(), Code: "ACME", Name: "Acme", Email: "a@acme.test"}

type stubGate struct{}

func (stubGate) ResolveBearer(ctx context.Context, header string) (*auth.Identity, error) {
	if header != "Bearer "+goodToken {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired token")
	}
	return acme, nil
}

func (stubGate) ResolveAPIKey(ctx context.Context, key string) (*auth.Identity, error) {
	if key != goodKey {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid API key")
	}
	return acme, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return &auth.RegisterResponse{TenantCode: req.TenantCode}, nil
}

func (stubAuthService) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	return nil
}

func (stubAuthService) APIKey(ctx context.Context, tenantID uuid.UUID) (*auth.APIKeyResponse, error) {
	return &auth.APIKeyResponse{APIKey: goodKey}, nil
}

func (stubAuthService) RegenerateAPIKey(ctx context.Context, tenantID uuid.UUID) (*auth.APIKeyResponse, error) {
	return &auth.APIKeyResponse{APIKey: "fresh"}, nil
}

type stubProducts struct {
	product.Service
	listedFor uuid.UUID
}

func (s *stubProducts) List(ctx context.Context, tenantID uuid.UUID) ([]product.ProductDTO, error) {
	s.listedFor = tenantID
	return []product.ProductDTO{}, nil
}

type countingStore struct {
	counts map[string]int64
}

func (s *countingStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.counts[key]++
	return s.counts[key], nil
}

func (s *countingStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return 42 * time.Second, nil
}

func (s *countingStore) RateLimitKey(parts ...string) string {
	return strings.Join(parts, ":")
}

func testConfig(env string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: env},
		RateLimit: config.RateLimitConfig{
			APIWindow:       time.Minute,
			APILimit:        100,
			LoginWindow:     time.Hour,
			LoginIPLimit:    2,
			LoginEmailLimit: 5,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(t *testing.T, env string) (http.Handler, *stubProducts) {
	t.Helper()
	reg := prometheus.NewRegistry()
	products := &stubProducts{}
	router := NewRouter(testConfig(env), nil, Dependencies{
		RateStore:  &countingStore{counts: map[string]int64{}},
		Gate:       stubGate{},
		Auth:       stubAuthService{},
		Products:   products,
		Gatherer:   reg,
		HTTP:       metrics.NewHTTPMetrics(reg),
		AuthEvents: metrics.NewAuthMetrics(reg),
	})
	return router, products
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetricsAreOpen(t *testing.T) {
	router, _ := newTestRouter(t, "dev")

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		rec := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	router, _ := newTestRouter(t, "dev")

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}
}

func TestBearerRoutesRejectMissingToken(t *testing.T) {
	router, _ := newTestRouter(t, "dev")

	for _, path := range []string{"/api/auth/verify", "/api/products", "/api/invoices?start_date=2026-01-01&end_date=2026-01-31"} {
		rec := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, rec.Code)
		}
	}
}

func TestVerifyEchoesIdentity(t *testing.T) {
	router, _ := newTestRouter(t, "dev")
	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer "+goodToken)

	rec := serve(router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var body struct {
		Data auth.Identity `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Code != "ACME" || body.Data.Email != "a@acme.test" {
		t.Fatalf("unexpected identity %+v", body.Data)
	}
}

func TestProductsByAPIKey(t *testing.T) {
	router, products := newTestRouter(t, "dev")

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/products/api-key", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/products/api-key", nil)
	req.Header.Set("x-api-key", goodKey)
	rec = serve(router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if products.listedFor != acme.TenantID {
		t.Fatalf("expected listing for %s got %s", acme.TenantID, products.listedFor)
	}
}

func TestAdminRoutesHiddenInProd(t *testing.T) {
	payload := `{"tenant_code":"ACME","tenant_name":"Acme","email":"a@acme.test","password":"secret1"}`

	dev, _ := newTestRouter(t, "dev")
	rec := serve(dev, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(payload)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 in dev got %d: %s", rec.Code, rec.Body.String())
	}

	prod, _ := newTestRouter(t, "prod")
	rec = serve(prod, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(payload)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 in prod got %d", rec.Code)
	}
	rec = serve(prod, httptest.NewRequest(http.MethodPost, "/api/auth/reset-password", strings.NewReader(`{}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 in prod got %d", rec.Code)
	}
}

func TestLoginIsRateLimitedPerIP(t *testing.T) {
	router, _ := newTestRouter(t, "dev")

	login := func(email string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"`+email+`","password":"x"}`))
		req.RemoteAddr = "203.0.113.7:5555"
		return serve(router, req)
	}

	for i, email := range []string{"a@acme.test", "b@acme.test"} {
		if rec := login(email); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401 got %d", i+1, rec.Code)
		}
	}

	rec := login("c@acme.test")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "42" {
		t.Fatalf("unexpected Retry-After %q", rec.Header().Get("Retry-After"))
	}
}

package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
)

type sampleBody struct {
	Name  string `json:"name" validate:"required,max=5"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestDecodeJSONBody(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
		field   string
	}{
		{name: "valid", body: `{"name":"ok"}`},
		{name: "missing required", body: `{}`, wantErr: true, field: "name"},
		{name: "too long", body: `{"name":"abcdefgh"}`, wantErr: true, field: "name"},
		{name: "bad email", body: `{"name":"ok","email":"nope"}`, wantErr: true, field: "email"},
		{name: "unknown field", body: `{"name":"ok","tenant_id":"x"}`, wantErr: true},
		{name: "two objects", body: `{"name":"ok"}{"name":"ok"}`, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dest sampleBody
			err := DecodeJSONBody(req, &dest)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if tc.field != "" {
				details, ok := pkgerrors.As(err).Details().(map[string]string)
				if !ok || details[tc.field] == "" {
					t.Fatalf("expected detail for %s, got %v", tc.field, pkgerrors.As(err).Details())
				}
			}
		})
	}
}

func TestRequiredQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start_date=2026-01-01&end_date=%20", nil)
	err := RequiredQuery(req, "start_date", "end_date")
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details := pkgerrors.As(err).Details().(map[string]string)
	if _, ok := details["end_date"]; !ok || len(details) != 1 {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestPathUUID(t *testing.T) {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "not-a-uuid")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	if _, err := PathUUID(req, "id", "product not found"); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAPIKeyFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "  abc  ")
	if got := APIKeyFromRequest(req); got != "abc" {
		t.Fatalf("expected trimmed key, got %q", got)
	}
}

package professionalhandler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"costos/internal/domain/auth"
	"costos/internal/domain/params"
	"costos/internal/transport/http/middleware"
)

type allowAll struct{}

func (allowAll) HasPermission(context.Context, string, string) (bool, error) {
	return true, nil
}

type memoryPrefs struct {
	values map[string]decimal.Decimal
}

func (m *memoryPrefs) Preferences(context.Context, string) ([]params.Preference, error) {
	out := make([]params.Preference, 0, len(m.values))
	for key, value := range m.values {
		out = append(out, params.Preference{Key: key, Value: value, Custom: true})
	}
	return out, nil
}

func (m *memoryPrefs) SetPreferences(_ context.Context, _ string, values map[string]decimal.Decimal) error {
	for key := range values {
		if _, ok := params.Lookup(key); !ok {
			return fmt.Errorf("%w: %s", params.ErrUnknownKey, key)
		}
	}
	m.values = values
	return nil
}

func serve(h *Handler, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "u1", RoleName: auth.RoleProfessional}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestProfessionalRoutes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantBody string
	}{
		{"bad id", http.MethodGet, "/professionals/not-a-uuid", "", http.StatusBadRequest, `"field":"id"`},
		{"invite without company", http.MethodPost, "/professionals", `{"username":"ana","email":"ana@example.com","password":"Secret123"}`, http.StatusConflict, "company_required"},
		{"unknown preference", http.MethodPut, "/professionals/me/preferences", `{"no.such.key":"1"}`, http.StatusBadRequest, `"field":"preferences"`},
		{"malformed preferences", http.MethodPut, "/professionals/me/preferences", `{"x":`, http.StatusBadRequest, "invalid_payload"},
		{"empty preferences", http.MethodGet, "/professionals/me/preferences", "", http.StatusOK, `"data":[]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(nil, &memoryPrefs{}, allowAll{}, nil)
			rec := serve(h, tc.method, tc.path, tc.body)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Fatalf("expected body to contain %s, got %s", tc.wantBody, rec.Body.String())
			}
		})
	}
}

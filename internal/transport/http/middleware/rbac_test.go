package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"costos/internal/domain/auth"
)

type permissionMap map[string]bool

func (p permissionMap) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	if roleID == "broken" {
		return false, errors.New("db down")
	}
	return p[roleID+":"+permission], nil
}

func TestRequirePermission(t *testing.T) {
	perms := permissionMap{"admin:" + auth.PermParamsWrite: true}
	handler := RequirePermission(auth.PermParamsWrite, perms)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		user   *auth.UserContext
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"allowed", &auth.UserContext{UserID: "u1", RoleID: "admin"}, http.StatusNoContent},
		{"denied", &auth.UserContext{UserID: "u2", RoleID: "professional"}, http.StatusForbidden},
		{"store error", &auth.UserContext{UserID: "u3", RoleID: "broken"}, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/v1/params/tax.module", nil)
			if tc.user != nil {
				req = req.WithContext(WithUser(req.Context(), *tc.user))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestRequireCompany(t *testing.T) {
	handler := RequireCompany(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vehicles", nil)
	req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u1"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 without company, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/vehicles", nil)
	req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u1", CompanyID: "c1"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through with company, got %d", rec.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous request, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u1"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through for authenticated request, got %d", rec.Code)
	}
}

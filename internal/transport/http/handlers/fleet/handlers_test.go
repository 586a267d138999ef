package fleethandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"costos/internal/domain/auth"
	"costos/internal/transport/http/middleware"
)

type permissionSet map[string]bool

func (p permissionSet) HasPermission(_ context.Context, _ string, permission string) (bool, error) {
	return p[permission], nil
}

func serve(t *testing.T, perms permissionSet, method, path, body string, user auth.UserContext) (*httptest.ResponseRecorder, string) {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(nil, perms, nil).RegisterRoutes(r)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	code := ""
	if env.Error != nil {
		code = env.Error.Code
	}
	return rec, code
}

func TestFleetRoutes(t *testing.T) {
	full := permissionSet{auth.PermFleetRead: true, auth.PermFleetWrite: true}
	readOnly := permissionSet{auth.PermFleetRead: true}
	member := auth.UserContext{UserID: "u1", RoleID: "r1", CompanyID: "c1"}
	loner := auth.UserContext{UserID: "u2", RoleID: "r1"}

	tests := []struct {
		name   string
		perms  permissionSet
		method string
		path   string
		body   string
		user   auth.UserContext
		status int
		code   string
	}{
		{"vehicles empty without company", full, http.MethodGet, "/vehicles", "", loner, http.StatusOK, ""},
		{"instruments empty without company", full, http.MethodGet, "/instruments", "", loner, http.StatusOK, ""},
		{"write needs permission", readOnly, http.MethodPost, "/vehicles", `{}`, member, http.StatusForbidden, "forbidden"},
		{"write needs company", full, http.MethodPost, "/instruments", `{}`, loner, http.StatusConflict, "company_required"},
		{"unknown fuel", full, http.MethodPost, "/vehicles", `{"name":"Hilux","fuelType":"kerosene"}`, member, http.StatusBadRequest, "validation_error"},
		{"negative value", full, http.MethodPost, "/instruments", `{"name":"GPS","valueUsd":"-5"}`, member, http.StatusBadRequest, "validation_error"},
		{"zero useful life", full, http.MethodPost, "/instruments", `{"name":"GPS","valueUsd":"5","usefulLife":0}`, member, http.StatusBadRequest, "validation_error"},
		{"bad id", full, http.MethodGet, "/vehicles/abc", "", member, http.StatusBadRequest, "validation_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, code := serve(t, tc.perms, tc.method, tc.path, tc.body, tc.user)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, code)
			}
		})
	}
}

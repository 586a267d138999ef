package audithandler

import (
	"net/http/httptest"
	"testing"

	"costos/internal/domain/auth"
)

func TestScopedFilter(t *testing.T) {
	tests := []struct {
		name        string
		user        auth.UserContext
		query       string
		wantVisible bool
		wantCompany string
	}{
		{"admin sees all", auth.UserContext{UserID: "a", RoleName: auth.RoleAdmin}, "", true, ""},
		{"admin may filter by company", auth.UserContext{UserID: "a", RoleName: auth.RoleAdmin}, "?companyId=c9", true, "c9"},
		{"member pinned to company", auth.UserContext{UserID: "u", RoleName: auth.RoleProfessional, CompanyID: "c1"}, "?companyId=c9", true, "c1"},
		{"no company sees nothing", auth.UserContext{UserID: "u", RoleName: auth.RoleProfessional}, "", false, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/audit/events"+tc.query, nil)
			filter, visible := scopedFilter(req, tc.user)
			if visible != tc.wantVisible {
				t.Fatalf("expected visible=%v, got %v", tc.wantVisible, visible)
			}
			if visible && filter.CompanyID != tc.wantCompany {
				t.Fatalf("expected company %q, got %q", tc.wantCompany, filter.CompanyID)
			}
		})
	}
}

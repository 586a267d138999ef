package authhandler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestValidateResetPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid password", password: "Agrimensor24"},
		{name: "too short", password: "Ag1mens", wantErr: true},
		{name: "missing uppercase", password: "agrimensor24", wantErr: true},
		{name: "missing lowercase", password: "AGRIMENSOR24", wantErr: true},
		{name: "missing number", password: "Agrimensores", wantErr: true},
		{name: "accented letters count", password: "Ñandú2024x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateResetPassword(tc.password)
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestBuildResetLink(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		token   string
		want    string
	}{
		{"empty base url uses default", "", "abc", "http://localhost:8080/reset?token=abc"},
		{"custom host", "https://costos.example.com", "t1", "https://costos.example.com/reset?token=t1"},
		{"custom path", "https://costos.example.com/app", "xyz", "https://costos.example.com/app/reset?token=xyz"},
		{"trailing slash", "https://costos.example.com/app/", "xyz", "https://costos.example.com/app/reset?token=xyz"},
		{"relative base falls back", "not a url", "abc", "http://localhost:8080/reset?token=abc"},
		{"token is escaped", "https://costos.example.com", "a+b/c", "https://costos.example.com/reset?token=a%2Bb%2Fc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := buildResetLink(tc.baseURL, tc.token); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestBuildResetEmailMessage(t *testing.T) {
	link := "https://costos.example.com/reset?token=abc"
	msg := buildResetEmailMessage(link, 2*time.Hour)
	if !strings.Contains(msg, link) {
		t.Fatalf("expected email message to include reset link, got %q", msg)
	}
	if !strings.Contains(msg, "expires in 2 hour(s)") {
		t.Fatalf("expected email message to include ttl, got %q", msg)
	}

	short := buildResetEmailMessage(link, 20*time.Minute)
	if !strings.Contains(short, "expires in 1 hour(s)") {
		t.Fatalf("expected sub-hour ttl to round up to one hour, got %q", short)
	}
}

func TestLoginRejectsMalformedPayload(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"login":`)))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid_payload") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

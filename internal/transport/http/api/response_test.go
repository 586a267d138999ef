package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFailWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FailWithDetails(rec, http.StatusBadRequest, "validation_error", "bad", map[string]any{"fields": []string{"name"}}, "req-1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var env struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success || env.Error.Code != "validation_error" || env.RequestID != "req-1" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if _, ok := env.Error.Details["fields"]; !ok {
		t.Fatalf("expected details.fields, got %+v", env.Error.Details)
	}
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	Attachment(rec, "text/csv", "job.csv", []byte("a,b\n"))
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="job.csv"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Body.String() != "a,b\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type lineInput struct {
	RefID string `json:"refId" validate:"required,uuid"`
	Hours int    `json:"hours" validate:"gte=1"`
}

type samplePayload struct {
	Name   string          `json:"name" validate:"required,max=10"`
	Amount decimal.Decimal `json:"amount" validate:"gte=0"`
	Fuel   string          `json:"fuel" validate:"oneof=regular diesel"`
	Lines  []lineInput     `json:"lines" validate:"min=1,dive"`
}

func issueMap(v *Validator) map[string]string {
	out := map[string]string{}
	for _, issue := range v.Issues() {
		out[issue.Field] = issue.Reason
	}
	return out
}

func TestStructReportsJSONPaths(t *testing.T) {
	v := NewValidator()
	v.Struct(samplePayload{
		Name:   "",
		Amount: decimal.RequireFromString("-1.50"),
		Fuel:   "kerosene",
		Lines:  []lineInput{{RefID: "nope", Hours: 0}},
	})

	issues := issueMap(v)
	want := map[string]string{
		"name":           "is required",
		"amount":         "must be 0 or greater",
		"fuel":           "must be one of: regular, diesel",
		"lines[0].refId": "must be a valid id",
		"lines[0].hours": "must be 1 or greater",
	}
	for field, reason := range want {
		if issues[field] != reason {
			t.Fatalf("%s: expected %q, got %q (all: %v)", field, reason, issues[field], issues)
		}
	}
}

func TestStructAcceptsValidPayload(t *testing.T) {
	v := NewValidator()
	v.Struct(samplePayload{
		Name:   "Theodolite",
		Amount: decimal.NewFromInt(10),
		Fuel:   "diesel",
		Lines:  []lineInput{{RefID: "8d3f7a3c-6a0e-4d8e-9c1f-5b2a8e1d9f00", Hours: 4}},
	})
	if v.HasIssues() {
		t.Fatalf("unexpected issues %v", v.Issues())
	}
}

type feePayload struct {
	Amount decimal.Decimal  `json:"amount" validate:"gte=0,money"`
	Extra  *decimal.Decimal `json:"extra" validate:"omitempty,gte=0,money"`
}

func TestStructMoneyFitsColumn(t *testing.T) {
	const reason = "must have at most 2 decimals and 12 integer digits"
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{name: "cents", value: "1234.56", valid: true},
		{name: "zero", value: "0", valid: true},
		{name: "largest", value: "999999999999.99", valid: true},
		{name: "sub cent", value: "0.004"},
		{name: "three decimals", value: "1.005"},
		{name: "too large", value: "1e20"},
		{name: "thirteen digits", value: "1000000000000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := decimal.RequireFromString(tc.value)
			v := NewValidator()
			v.Struct(feePayload{Amount: d, Extra: &d})
			issues := issueMap(v)
			if tc.valid {
				if v.HasIssues() {
					t.Fatalf("unexpected issues %v", issues)
				}
				return
			}
			if issues["amount"] != reason || issues["extra"] != reason {
				t.Fatalf("expected money issues, got %v", issues)
			}
		})
	}
}

func TestStructEmptySlice(t *testing.T) {
	v := NewValidator()
	v.Struct(samplePayload{Name: "x", Fuel: "regular"})
	if got := issueMap(v)["lines"]; got != "must contain at least 1 item(s)" {
		t.Fatalf("unexpected reason %q", got)
	}
}

func TestDecimalHelpers(t *testing.T) {
	v := NewValidator()
	v.NonNegative("value", decimal.NewFromInt(-1))
	v.NonNegative("zero", decimal.Zero)
	v.Positive("rate", decimal.Zero)
	v.UUID("id", "123")
	v.UUID("empty", "")
	issues := issueMap(v)
	if len(issues) != 3 || issues["value"] == "" || issues["rate"] == "" || issues["id"] == "" {
		t.Fatalf("unexpected issues %v", issues)
	}
}

func TestRejectWritesValidationEnvelope(t *testing.T) {
	v := NewValidator()
	v.Required("client", " ", "is required")
	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-9") {
		t.Fatal("expected rejection")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"field":"client"`) {
		t.Fatalf("expected field detail, got %s", rec.Body.String())
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.3"}, "10.0.0.2:1234", "198.51.100.3"},
		{"remote", nil, "192.0.2.10:5555", "192.0.2.10"},
		{"remote without port", nil, "192.0.2.11", "192.0.2.11"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","amount":"1","typo":1}`))
	var dst samplePayload
	if err := DecodeJSON(r, &dst); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2024-05-02", "2024-05-02T00:00:00Z", "02/05/2024"} {
		got, err := ParseDate(raw)
		if err != nil || !got.Equal(want) {
			t.Fatalf("%s: expected %v, got %v (%v)", raw, want, got, err)
		}
	}
	if _, err := ParseDate("mañana"); err == nil {
		t.Fatal("expected error for free text")
	}
}

func TestDateOrder(t *testing.T) {
	v := NewValidator()
	from, _ := v.Date("from", "2024-05-10")
	to, _ := v.Date("to", "2024-05-01")
	v.DateOrder("from", from, "to", to)
	if len(v.Issues()) != 2 {
		t.Fatalf("expected both bounds flagged, got %+v", v.Issues())
	}
}

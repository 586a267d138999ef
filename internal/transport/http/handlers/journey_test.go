package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"costos/internal/app/server"
	"costos/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newJourneyServer(t *testing.T) *httptest.Server {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.Config{
		DatabaseURL:         dbURL,
		JWTSecret:           "test-secret",
		DataEncryptionKey:   "0123456789abcdef0123456789abcdef",
		Environment:         "test",
		MigrationsDir:       "../../../../migrations",
		SeedAdminUsername:   "admin",
		SeedAdminEmail:      "admin@test.local",
		SeedAdminPassword:   "ChangeMe123!",
		AllowSelfSignup:     true,
		EmailFrom:           "no-reply@test.local",
		RunMigrations:       true,
		RunSeed:             true,
		MaxBodyBytes:        1048576,
		RateLimitPerMinute:  1000,
		PasswordResetTTL:    2 * time.Hour,
		ExchangeRateURL:     "http://127.0.0.1:0/",
		ExchangeRateTimeout: time.Second,
	}

	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	ts := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		ts.Close()
		app.Close()
	})
	return ts
}

func call(t *testing.T, client *http.Client, method, url, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode, env
}

func mustID(t *testing.T, status int, env envelope, want int) string {
	t.Helper()
	if status != want {
		t.Fatalf("expected %d, got %d (%+v)", want, status, env.Error)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil || out.ID == "" {
		t.Fatalf("expected id in %s", env.Data)
	}
	return out.ID
}

// signup registers a fresh professional and returns its id and a token.
func signup(t *testing.T, client *http.Client, base, prefix string) (string, string) {
	t.Helper()
	username := fmt.Sprintf("%s%d", prefix, time.Now().UnixNano())
	password := "Survey123!"
	status, env := call(t, client, http.MethodPost, base+"/api/v1/auth/signup", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	})
	userID := mustID(t, status, env, http.StatusCreated)

	status, env = call(t, client, http.MethodPost, base+"/api/v1/auth/login", "", map[string]any{
		"login":    username,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("login failed with %d", status)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &login); err != nil || login.Token == "" {
		t.Fatalf("expected token in %s", env.Data)
	}
	return userID, login.Token
}

func TestSurveyJobCostingJourney(t *testing.T) {
	ts := newJourneyServer(t)
	client := ts.Client()
	base := ts.URL
	userID, token := signup(t, client, base, "agrim")

	status, env := call(t, client, http.MethodPost, base+"/api/v1/jobs", token, map[string]any{"date": "2024-05-02", "client": "x"})
	if status != http.StatusConflict || env.Error == nil || env.Error.Code != "company_required" {
		t.Fatalf("expected company_required before joining a company, got %d", status)
	}

	status, env = call(t, client, http.MethodPost, base+"/api/v1/companies", token, map[string]any{
		"name":        "Agrimensura Journey",
		"weeklyHours": 40,
	})
	mustID(t, status, env, http.StatusCreated)

	status, env = call(t, client, http.MethodPut, base+"/api/v1/professionals/"+userID, token, map[string]any{
		"firstName": "Ana",
		"lastName":  "Paz",
	})
	if status != http.StatusOK {
		t.Fatalf("profile update failed with %d (%+v)", status, env.Error)
	}

	status, env = call(t, client, http.MethodPost, base+"/api/v1/vehicles", token, map[string]any{
		"name":     "Hilux",
		"value":    "30000000",
		"annualKm": 20000,
		"fuelType": "diesel",
	})
	vehicleID := mustID(t, status, env, http.StatusCreated)

	status, env = call(t, client, http.MethodPost, base+"/api/v1/instruments", token, map[string]any{
		"name":     "GNSS RTK",
		"valueUsd": "12000",
	})
	instrumentID := mustID(t, status, env, http.StatusCreated)

	status, env = call(t, client, http.MethodPost, base+"/api/v1/jobs", token, map[string]any{
		"date":         "2024-05-02",
		"client":       "Estancia La Loma",
		"fileNumber":   "EXP-17",
		"actuantes":    []map[string]any{{"userId": userID, "hours": 6}},
		"movilidad":    []map[string]any{{"vehicleId": vehicleID, "km": 120}},
		"instrumental": []map[string]any{{"instrumentId": instrumentID, "workdays": 2}},
	})
	jobID := mustID(t, status, env, http.StatusCreated)

	status, env = call(t, client, http.MethodGet, base+"/api/v1/jobs/"+jobID+"/costs", token, nil)
	if status != http.StatusOK {
		t.Fatalf("costs failed with %d (%+v)", status, env.Error)
	}
	var costs struct {
		Totals struct {
			TotalHours    int `json:"totalHours"`
			TotalKm       int `json:"totalKm"`
			TotalWorkdays int `json:"totalWorkdays"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(env.Data, &costs); err != nil {
		t.Fatalf("decode costs: %v", err)
	}
	if costs.Totals.TotalHours != 6 || costs.Totals.TotalKm != 120 || costs.Totals.TotalWorkdays != 2 {
		t.Fatalf("unexpected totals %+v", costs.Totals)
	}

	status, env = call(t, client, http.MethodGet, base+"/api/v1/jobs?client=loma&from=2024-05-01&to=2024-05-31", token, nil)
	var listed []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &listed); err != nil || status != http.StatusOK {
		t.Fatalf("filtered list failed with %d: %v", status, err)
	}
	if len(listed) != 1 || listed[0].ID != jobID {
		t.Fatalf("expected only the new job, got %+v", listed)
	}

	req, _ := http.NewRequest(http.MethodGet, base+"/api/v1/jobs/"+jobID+"/export.csv", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("csv export: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected csv export %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	_, outsider := signup(t, client, base, "ajeno")
	status, _ = call(t, client, http.MethodGet, base+"/api/v1/jobs/"+jobID, outsider, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected outsider to get 404, got %d", status)
	}
	status, env = call(t, client, http.MethodGet, base+"/api/v1/jobs", outsider, nil)
	if status != http.StatusOK || string(env.Data) != "[]" {
		t.Fatalf("expected empty job list for outsider, got %d %s", status, env.Data)
	}
}

func TestDeletingAssignedVehicleKeepsJobReadable(t *testing.T) {
	ts := newJourneyServer(t)
	client := ts.Client()
	base := ts.URL
	userID, token := signup(t, client, base, "flota")

	status, env := call(t, client, http.MethodPost, base+"/api/v1/companies", token, map[string]any{"name": "Flota SRL", "weeklyHours": 45})
	mustID(t, status, env, http.StatusCreated)
	status, env = call(t, client, http.MethodPost, base+"/api/v1/vehicles", token, map[string]any{
		"name":     "Amarok",
		"value":    "25000000",
		"annualKm": 15000,
		"fuelType": "regular",
	})
	vehicleID := mustID(t, status, env, http.StatusCreated)
	status, env = call(t, client, http.MethodPost, base+"/api/v1/jobs", token, map[string]any{
		"date":      "2024-06-10",
		"client":    "Municipio",
		"actuantes": []map[string]any{{"userId": userID, "hours": 3}},
		"movilidad": []map[string]any{{"vehicleId": vehicleID, "km": 40}},
	})
	jobID := mustID(t, status, env, http.StatusCreated)

	status, _ = call(t, client, http.MethodDelete, base+"/api/v1/vehicles/"+vehicleID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete vehicle failed with %d", status)
	}
	status, env = call(t, client, http.MethodGet, base+"/api/v1/jobs/"+jobID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected job to stay readable, got %d", status)
	}
	var job struct {
		Movilidad []json.RawMessage `json:"movilidad"`
	}
	if err := json.Unmarshal(env.Data, &job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if len(job.Movilidad) != 0 {
		t.Fatalf("expected deleted vehicle to drop out of the job, got %d entries", len(job.Movilidad))
	}
}

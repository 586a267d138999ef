package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBNAFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(bnaPage))
	}))
	defer srv.Close()

	rate, err := NewBNAFetcher(srv.URL, time.Second).FetchUSDRate(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("1085.5")) {
		t.Fatalf("unexpected rate %s", rate)
	}
}

func TestBNAFetcherStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewBNAFetcher(srv.URL, time.Second).FetchUSDRate(context.Background())
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestBNAFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(bnaPage))
	}))
	defer srv.Close()

	if _, err := NewBNAFetcher(srv.URL, 20*time.Millisecond).FetchUSDRate(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}

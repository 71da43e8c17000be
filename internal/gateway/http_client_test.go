package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kasszapont/backend/internal/domain"
)

func TestClientChargeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("authorization header = %q", got)
		}
		var req chargeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.AmountCents != 25400 || req.Currency != "HUF" || req.Reference != "ELADAS-2026-0001" {
			t.Fatalf("charge request = %+v", req)
		}
		_ = json.NewEncoder(w).Encode(ChargeResult{
			Success: true, TransactionID: "gw-1", CardLastFour: "4242", CardBrand: "VISA",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	result, err := c.Charge(context.Background(), 25400, "ELADAS-2026-0001")
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	if !result.Success || result.TransactionID != "gw-1" {
		t.Fatalf("result = %+v", result)
	}
}

func TestClientDeclineIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(ChargeResult{Success: false, ErrorMessage: "card declined"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	result, err := c.Charge(context.Background(), 1000, "ref")
	if err != nil {
		t.Fatalf("decline must not be a transport error: %v", err)
	}
	if result.Success || result.ErrorMessage != "card declined" {
		t.Fatalf("result = %+v", result)
	}
}

func TestClientMapsOutagesToExternalServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 2*time.Second)
	if _, err := c.Charge(context.Background(), 1000, "ref"); !errors.Is(err, domain.ErrExternalService) {
		t.Fatalf("5xx: want external-service error, got %v", err)
	}

	srv.Close()
	if _, err := c.Refund(context.Background(), "gw-1"); !errors.Is(err, domain.ErrExternalService) {
		t.Fatalf("unreachable: want external-service error, got %v", err)
	}
}

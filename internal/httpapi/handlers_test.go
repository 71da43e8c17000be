package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kasszapont/backend/internal/domain"
	"kasszapont/backend/internal/gateway"
	"kasszapont/backend/internal/inventory"
	"kasszapont/backend/internal/sequence"
	"kasszapont/backend/internal/service"
	"kasszapont/backend/internal/store/memory"
)

func newTestAPI(t *testing.T) http.Handler {
	t.Helper()
	t.Setenv("SEED_ADMIN_PASSWORD", "admin-secret")
	t.Setenv("SEED_CASHIER_PASSWORD", "cashier-secret")

	repo := memory.NewSeeded("tenant-demo")
	svc := service.New(repo, sequence.NewCounter(repo, "ELADAS"), gateway.NewMock(), inventory.New(repo))
	auth := NewAuthManager("unit-test-secret-0123456789abcdef", time.Hour, svc)
	return New(svc, auth, "*").Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func loginAs(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", domain.LoginRequest{Username: username, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body = %s", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func TestTransactionsRequireAuth(t *testing.T) {
	h := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/transactions", "", domain.CreateTransactionRequest{SessionID: "session-open"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuditLogsNeedAdminRole(t *testing.T) {
	h := newTestAPI(t)
	cashier := loginAs(t, h, "cashier", "cashier-secret")

	rec := doJSON(t, h, http.MethodGet, "/api/v1/audit-logs", cashier, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cashier reading audit logs: status = %d, want 403", rec.Code)
	}

	admin := loginAs(t, h, "admin", "admin-secret")
	rec = doJSON(t, h, http.MethodGet, "/api/v1/audit-logs", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin reading audit logs: status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestFullCashSaleOverHTTP(t *testing.T) {
	h := newTestAPI(t)
	token := loginAs(t, h, "cashier", "cashier-secret")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/transactions", token, domain.CreateTransactionRequest{SessionID: "session-open"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}
	var tx domain.SaleTransaction
	if err := json.Unmarshal(rec.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	if tx.TransactionNumber == "" || tx.Status != domain.TxStatusInProgress {
		t.Fatalf("created transaction = %+v", tx)
	}

	base := "/api/v1/transactions/" + tx.ID
	rec = doJSON(t, h, http.MethodPost, base+"/items", token, domain.SaleItemRequest{
		ProductID: "prod-espresso", ProductName: "Espresso", Quantity: 2,
		UnitPriceCents: 10000, TaxRatePercent: 27,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, base+"/complete", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, base+"/payments/cash", token, domain.CashPaymentRequest{ReceivedCents: 30000})
	if rec.Code != http.StatusCreated {
		t.Fatalf("cash payment status = %d body = %s", rec.Code, rec.Body.String())
	}
	var payResp struct {
		Transaction domain.SaleTransaction `json:"transaction"`
		Payment     domain.SalePayment     `json:"payment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payResp); err != nil {
		t.Fatalf("decode payment response: %v", err)
	}
	if payResp.Transaction.Status != domain.TxStatusCompleted || payResp.Transaction.ChangeCents != 4600 {
		t.Fatalf("after payment = %+v", payResp.Transaction)
	}
	if payResp.Payment.AmountCents != 25400 {
		t.Fatalf("payment amount = %d, want 25400", payResp.Payment.AmountCents)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	h := newTestAPI(t)
	token := loginAs(t, h, "cashier", "cashier-secret")

	// Unknown transaction: 404.
	rec := doJSON(t, h, http.MethodGet, "/api/v1/transactions/tx-missing", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing transaction status = %d, want 404", rec.Code)
	}

	// Closed session: 409.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/transactions", token, domain.CreateTransactionRequest{SessionID: "session-closed"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("closed session status = %d, want 409", rec.Code)
	}

	// Empty transaction cannot be completed: 400.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/transactions", token, domain.CreateTransactionRequest{SessionID: "session-open"})
	var tx domain.SaleTransaction
	if err := json.Unmarshal(rec.Body.Bytes(), &tx); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	rec = doJSON(t, h, http.MethodPost, "/api/v1/transactions/"+tx.ID+"/complete", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty complete status = %d, want 400", rec.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	h := newTestAPI(t)

	var last int
	for i := 0; i < 7; i++ {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", domain.LoginRequest{
			Username: "cashier", Password: fmt.Sprintf("wrong-%d", i),
		})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("status after repeated failures = %d, want 429", last)
	}
}

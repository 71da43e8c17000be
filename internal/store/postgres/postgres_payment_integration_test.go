package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"kasszapont/backend/internal/domain"
)

func TestPaymentLifecycleAgainstPostgres(t *testing.T) {
	databaseURL := os.Getenv("KASSZAPONT_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set KASSZAPONT_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	tenantID := fmt.Sprintf("tenant-it-%d", stamp)
	sessionID := fmt.Sprintf("session-it-%d", stamp)
	txID := fmt.Sprintf("tx-it-%d", stamp)
	itemID := fmt.Sprintf("item-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_payments WHERE transaction_id = $1`, txID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_items WHERE transaction_id = $1`, txID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_transactions WHERE id = $1`, txID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM cash_register_sessions WHERE id = $1`, sessionID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM transaction_sequences WHERE tenant_id = $1`, tenantID)
	})

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO cash_register_sessions (id, tenant_id, status, created_at)
		VALUES ($1, $2, 'OPEN', now())
	`, sessionID, tenantID); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	seq, err := s.IncrementSequence(ctx, tenantID, "2026")
	if err != nil {
		t.Fatalf("increment sequence: %v", err)
	}
	if seq != 1 {
		t.Fatalf("first sequence value = %d, want 1", seq)
	}

	tx := &domain.SaleTransaction{
		ID:                txID,
		TenantID:          tenantID,
		SessionID:         sessionID,
		TransactionNumber: fmt.Sprintf("ELADAS-2026-%04d", seq),
		PaymentStatus:     domain.PaymentStatusPending,
		Status:            domain.TxStatusInProgress,
		CreatedBy:         "it-test",
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	updated, err := s.AddItem(ctx, tenantID, txID, domain.SaleItem{
		ID:             itemID,
		ProductID:      "prod-it",
		ProductName:    "Integration espresso",
		Quantity:       2,
		UnitPriceCents: 10000,
		TaxRatePercent: 27,
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if updated.TotalCents != 25400 {
		t.Fatalf("total = %d, want 25400", updated.TotalCents)
	}

	if _, err := s.CompleteTransaction(ctx, tenantID, txID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	paid, payment, err := s.ApplyCashPayment(ctx, tenantID, txID, fmt.Sprintf("pay-it-%d", stamp), 30000)
	if err != nil {
		t.Fatalf("cash payment: %v", err)
	}
	if payment.AmountCents != 25400 || paid.ChangeCents != 4600 {
		t.Fatalf("payment = %d change = %d, want 25400/4600", payment.AmountCents, paid.ChangeCents)
	}
	if paid.Status != domain.TxStatusCompleted || paid.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("state = %s/%s, want COMPLETED/PAID", paid.Status, paid.PaymentStatus)
	}

	payments, err := s.ListPayments(ctx, tenantID, txID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(payments))
	}
}

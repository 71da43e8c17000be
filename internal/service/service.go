package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"kasszapont/backend/internal/domain"
	"kasszapont/backend/internal/gateway"
	"kasszapont/backend/internal/inventory"
	"kasszapont/backend/internal/sequence"
	"kasszapont/backend/internal/store"
	"kasszapont/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo store.Repository
	seq  sequence.Sequencer
	gw   gateway.CardGateway
	inv  inventory.Deducter
}

func New(repo store.Repository, seq sequence.Sequencer, gw gateway.CardGateway, inv inventory.Deducter) *Service {
	return &Service{repo: repo, seq: seq, gw: gw, inv: inv}
}

// CreateTransaction opens a sale against an open register session and
// reserves its transaction number.
func (s *Service) CreateTransaction(ctx context.Context, tenantID string, req domain.CreateTransactionRequest) (domain.SaleTransaction, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return domain.SaleTransaction{}, fmt.Errorf("%w: session id is required", domain.ErrValidation)
	}

	session, err := s.repo.GetSession(ctx, tenantID, req.SessionID)
	if err != nil {
		return domain.SaleTransaction{}, err
	}
	if session.Status != domain.SessionStatusOpen {
		return domain.SaleTransaction{}, fmt.Errorf("%w: cash register session is not open", domain.ErrInvalidState)
	}

	number, err := s.seq.Next(ctx, tenantID, sequence.CurrentYear())
	if err != nil {
		return domain.SaleTransaction{}, err
	}

	actor, _ := ActorFromContext(ctx)
	tx := &domain.SaleTransaction{
		ID:                xid.New("tx"),
		TenantID:          tenantID,
		SessionID:         session.ID,
		TransactionNumber: number,
		PaymentStatus:     domain.PaymentStatusPending,
		Status:            domain.TxStatusInProgress,
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerTaxNumber: strings.TrimSpace(req.CustomerTaxNumber),
		CustomerEmail:     strings.TrimSpace(req.CustomerEmail),
		CreatedBy:         actor.Username,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return domain.SaleTransaction{}, err
	}

	s.logAudit(ctx, tenantID, "transaction_created", "transaction", tx.ID, fmt.Sprintf("number=%s,session=%s", tx.TransactionNumber, tx.SessionID))
	return *tx, nil
}

func (s *Service) GetTransaction(ctx context.Context, tenantID, id string) (domain.SaleTransaction, error) {
	tx, err := s.repo.GetTransaction(ctx, tenantID, id)
	if err != nil {
		return domain.SaleTransaction{}, err
	}
	return *tx, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, tenantID, id string, fields domain.CustomerFields) (domain.SaleTransaction, error) {
	tx, err := s.repo.UpdateCustomer(ctx, tenantID, id, fields)
	if err != nil {
		return domain.SaleTransaction{}, err
	}
	return *tx, nil
}

func (s *Service) AddItem(ctx context.Context, tenantID, txID string, req domain.SaleItemRequest) (domain.SaleTransaction, error) {
	if err := domain.ValidateItemRequest(req); err != nil {
		return domain.SaleTransaction{}, err
	}

	item := domain.SaleItem{
		ID:              xid.New("item"),
		ProductID:       strings.TrimSpace(req.ProductID),
		ProductCode:     strings.TrimSpace(req.ProductCode),
		ProductName:     strings.TrimSpace(req.ProductName),
		Quantity:        req.Quantity,
		UnitPriceCents:  req.UnitPriceCents,
		TaxRatePercent:  req.TaxRatePercent,
		DiscountPercent: req.DiscountPercent,
		WarehouseID:     strings.TrimSpace(req.WarehouseID),
	}
	tx, err := s.repo.AddItem(ctx, tenantID, txID, item)
	if err != nil {
		return domain.SaleTransaction{}, err
	}
	return *tx, nil
}

func (s *Service) UpdateItem(ctx context.Context, tenantID, txID, itemID string, patch domain.SaleItemPatch) (domain.SaleTransaction, error) {
	if err := domain.ValidateItemPatch(patch); err != nil {
		return domain.SaleTransaction{}, err
	}
	tx, err := s.repo.UpdateItem(ctx, tenantID, txID, itemID, patch)
	if err != nil {
		return domain.SaleTransaction{}, err
	}
	return *tx, nil
}

func (s *Service) RemoveItem(ctx context.Context, tenantID, txID, itemID string) (domain.SaleTransaction, error) {
	tx, err := s.repo.RemoveItem(ctx, tenantID, txID, itemID)
	if err != nil {
		return domain.SaleTransaction{}, err
	}
	return *tx, nil
}

// CompleteTransaction closes item entry and opens the payment phase.
func (s *Service) CompleteTransaction(ctx context.Context, tenantID, id string) (domain.SaleTransaction, error) {
	tx, err := s.repo.CompleteTransaction(ctx, tenantID, id)
	if err != nil {
		return domain.SaleTransaction{}, err
	}
	return *tx, nil
}

func (s *Service) VoidTransaction(ctx context.Context, tenantID, id, reason string) (domain.SaleTransaction, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.SaleTransaction{}, fmt.Errorf("%w: void reason is required", domain.ErrValidation)
	}

	actor, _ := ActorFromContext(ctx)
	tx, err := s.repo.VoidTransaction(ctx, tenantID, id, reason, actor.Username)
	if err != nil {
		return domain.SaleTransaction{}, err
	}

	s.logAudit(ctx, tenantID, "transaction_voided", "transaction", tx.ID, fmt.Sprintf("number=%s,reason=%s", tx.TransactionNumber, reason))
	return *tx, nil
}

// ProcessCashPayment settles the whole remaining balance from the cash
// the customer handed over and returns the change.
func (s *Service) ProcessCashPayment(ctx context.Context, tenantID, txID string, receivedCents int64) (domain.SaleTransaction, domain.SalePayment, error) {
	tx, payment, err := s.repo.ApplyCashPayment(ctx, tenantID, txID, xid.New("pay"), receivedCents)
	if err != nil {
		return domain.SaleTransaction{}, domain.SalePayment{}, err
	}

	s.logAudit(ctx, tenantID, "payment_recorded", "transaction", tx.ID, fmt.Sprintf("method=CASH,amount=%d,change=%d", payment.AmountCents, tx.ChangeCents))
	return *tx, *payment, nil
}

// AddPartialPayment applies an exact amount toward the balance. Split
// tenders use this once per tender; paying the balance to zero
// completes the transaction.
func (s *Service) AddPartialPayment(ctx context.Context, tenantID, txID string, req domain.PartialPaymentRequest) (domain.SaleTransaction, domain.SalePayment, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method != domain.PaymentMethodCash && method != domain.PaymentMethodCard {
		return domain.SaleTransaction{}, domain.SalePayment{}, fmt.Errorf("%w: unsupported payment method %q", domain.ErrValidation, req.Method)
	}

	payment := domain.SalePayment{
		ID:                xid.New("pay"),
		Method:            method,
		AmountCents:       req.AmountCents,
		CardTransactionID: strings.TrimSpace(req.CardTransactionID),
		CardLastFour:      strings.TrimSpace(req.CardLastFour),
		CardBrand:         strings.TrimSpace(req.CardBrand),
	}
	tx, applied, err := s.repo.ApplyExactPayment(ctx, tenantID, txID, payment)
	if err != nil {
		return domain.SaleTransaction{}, domain.SalePayment{}, err
	}

	s.logAudit(ctx, tenantID, "payment_recorded", "transaction", tx.ID, fmt.Sprintf("method=%s,amount=%d,paid=%d", method, applied.AmountCents, tx.PaidCents))
	return *tx, *applied, nil
}

// ProcessCardPayment charges the remaining balance through the card
// gateway and records the captured payment.
func (s *Service) ProcessCardPayment(ctx context.Context, tenantID, txID string) (domain.SaleTransaction, domain.SalePayment, error) {
	tx, err := s.repo.GetTransaction(ctx, tenantID, txID)
	if err != nil {
		return domain.SaleTransaction{}, domain.SalePayment{}, err
	}
	if tx.PaymentStatus == domain.PaymentStatusPaid {
		return domain.SaleTransaction{}, domain.SalePayment{}, fmt.Errorf("%w: transaction is already fully paid", domain.ErrAlreadyPaid)
	}
	if tx.Status != domain.TxStatusPendingPayment {
		return domain.SaleTransaction{}, domain.SalePayment{}, fmt.Errorf("%w: transaction is not awaiting payment", domain.ErrInvalidState)
	}

	remaining := tx.TotalCents - tx.PaidCents
	if remaining <= 0 {
		return domain.SaleTransaction{}, domain.SalePayment{}, fmt.Errorf("%w: no outstanding balance to pay", domain.ErrValidation)
	}
	charge, err := s.gw.Charge(ctx, remaining, tx.TransactionNumber)
	if err != nil {
		return domain.SaleTransaction{}, domain.SalePayment{}, fmt.Errorf("Card payment failed: %w", err)
	}
	if !charge.Success {
		return domain.SaleTransaction{}, domain.SalePayment{}, fmt.Errorf("%w: Card payment failed: %s", domain.ErrExternalService, charge.ErrorMessage)
	}

	payment := domain.SalePayment{
		ID:                xid.New("pay"),
		Method:            domain.PaymentMethodCard,
		AmountCents:       remaining,
		CardTransactionID: charge.TransactionID,
		CardLastFour:      charge.CardLastFour,
		CardBrand:         charge.CardBrand,
	}
	updated, applied, err := s.repo.ApplyExactPayment(ctx, tenantID, txID, payment)
	if err != nil {
		// The card was captured but a concurrent payment changed the
		// balance first. Reverse the capture so the customer is not
		// charged twice; the reversal itself is best effort.
		if refund, rerr := s.gw.Refund(ctx, charge.TransactionID); rerr != nil || !refund.Success {
			log.Printf("[service] WARN: could not reverse orphaned card capture %s on transaction %s: %v %s", charge.TransactionID, txID, rerr, refund.ErrorMessage)
		}
		return domain.SaleTransaction{}, domain.SalePayment{}, err
	}

	s.logAudit(ctx, tenantID, "payment_recorded", "transaction", updated.ID, fmt.Sprintf("method=CARD,amount=%d,card_tx=%s", applied.AmountCents, charge.TransactionID))
	return *updated, *applied, nil
}

func (s *Service) ListPayments(ctx context.Context, tenantID, txID string) ([]domain.SalePayment, error) {
	return s.repo.ListPayments(ctx, tenantID, txID)
}

// CompletePayment reconciles inventory for a fully paid transaction.
// Each line is deducted at most once; failures are reported per item
// and never undo the sale.
func (s *Service) CompletePayment(ctx context.Context, tenantID, txID string) (domain.SaleTransaction, []domain.DeductionResult, error) {
	tx, err := s.repo.GetTransaction(ctx, tenantID, txID)
	if err != nil {
		return domain.SaleTransaction{}, nil, err
	}
	if tx.PaymentStatus != domain.PaymentStatusPaid {
		return domain.SaleTransaction{}, nil, fmt.Errorf("%w: Transaction is not fully paid", domain.ErrInvalidState)
	}

	results := make([]domain.DeductionResult, 0, len(tx.Items))
	for _, item := range tx.Items {
		if item.InventoryDeducted {
			continue
		}
		result := s.inv.DeductStock(ctx, tenantID, item)
		if !result.Success {
			log.Printf("[service] WARN: stock deduction failed transaction=%s item=%s product=%s: %s", txID, item.ID, item.ProductID, result.ErrorMessage)
		}
		// The attempt is recorded either way so a retry of the whole
		// reconciliation never deducts the same line twice.
		if err := s.repo.MarkItemDeducted(ctx, tenantID, txID, item.ID); err != nil {
			log.Printf("[service] WARN: failed to mark item %s as deducted: %v", item.ID, err)
		}
		results = append(results, result)
	}

	updated, err := s.repo.GetTransaction(ctx, tenantID, txID)
	if err != nil {
		return domain.SaleTransaction{}, nil, err
	}
	s.logAudit(ctx, tenantID, "inventory_reconciled", "transaction", txID, fmt.Sprintf("items=%d", len(results)))
	return *updated, results, nil
}

// RefundPayments reverses the card captures of a voided transaction and
// clears its payment records. A gateway refusal is logged and reported
// but does not stop the remaining refunds or the cleanup.
func (s *Service) RefundPayments(ctx context.Context, tenantID, txID string) (domain.RefundPaymentsResponse, error) {
	tx, err := s.repo.GetTransaction(ctx, tenantID, txID)
	if err != nil {
		return domain.RefundPaymentsResponse{}, err
	}
	if tx.Status != domain.TxStatusVoided {
		return domain.RefundPaymentsResponse{}, fmt.Errorf("%w: Can only refund voided transactions", domain.ErrInvalidState)
	}

	payments, err := s.repo.ListPayments(ctx, tenantID, txID)
	if err != nil {
		return domain.RefundPaymentsResponse{}, err
	}

	var failed []string
	for _, p := range payments {
		if p.Method != domain.PaymentMethodCard || p.CardTransactionID == "" {
			continue
		}
		refund, err := s.gw.Refund(ctx, p.CardTransactionID)
		if err != nil || !refund.Success {
			failed = append(failed, p.CardTransactionID)
			log.Printf("[service] WARN: card refund failed transaction=%s card_tx=%s: %v %s", txID, p.CardTransactionID, err, refund.ErrorMessage)
		}
	}

	deleted, err := s.repo.DeletePayments(ctx, tenantID, txID)
	if err != nil {
		return domain.RefundPaymentsResponse{}, err
	}

	s.logAudit(ctx, tenantID, "payments_refunded", "transaction", txID, fmt.Sprintf("payments=%d,failed=%d", deleted, len(failed)))
	return domain.RefundPaymentsResponse{
		TransactionID:    txID,
		RefundedPayments: deleted,
		FailedRefunds:    failed,
	}, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, tenantID string, limit int) ([]domain.AuditLog, error) {
	return s.repo.ListAuditLogs(ctx, tenantID, limit)
}

// Authenticate verifies credentials against the user store.
func (s *Service) Authenticate(ctx context.Context, username string) (*domain.UserAccount, error) {
	user, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, username)
	}
	return user, nil
}

func (s *Service) logAudit(ctx context.Context, tenantID string, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		TenantID:      tenantID,
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

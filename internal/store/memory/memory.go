package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"kasszapont/backend/internal/domain"
)

// Store is an in-memory Repository used for dev mode and tests. All
// state lives behind one mutex; every compound mutation (state check
// plus write) runs under the write lock, which gives the same
// atomicity the postgres store gets from row locks.
type Store struct {
	mu               sync.RWMutex
	sessionsByID     map[string]domain.CashRegisterSession
	transactionsByID map[string]*domain.SaleTransaction
	paymentsByTx     map[string][]domain.SalePayment
	stock            map[string]int
	sequences        map[string]int64
	auditLogs        []domain.AuditLog
	usersByUsername  map[string]domain.UserAccount
}

func New() *Store {
	return &Store{
		sessionsByID:     make(map[string]domain.CashRegisterSession),
		transactionsByID: make(map[string]*domain.SaleTransaction),
		paymentsByTx:     make(map[string][]domain.SalePayment),
		stock:            make(map[string]int),
		sequences:        make(map[string]int64),
		auditLogs:        make([]domain.AuditLog, 0, 128),
		usersByUsername:  make(map[string]domain.UserAccount),
	}
}

// NewSeeded returns a store preloaded with an open register session,
// stock levels and dev user accounts so the server is usable without a
// database.
func NewSeeded(tenantID string) *Store {
	s := New()
	s.sessionsByID["session-open"] = domain.CashRegisterSession{
		ID: "session-open", TenantID: tenantID, Status: domain.SessionStatusOpen,
	}
	s.sessionsByID["session-closed"] = domain.CashRegisterSession{
		ID: "session-closed", TenantID: tenantID, Status: "CLOSED",
	}

	for _, st := range []struct {
		productID   string
		warehouseID string
		qty         int
	}{
		{"prod-espresso", "wh-main", 500},
		{"prod-croissant", "wh-main", 80},
		{"prod-mineral-water", "wh-main", 240},
		{"prod-sandwich", "wh-main", 35},
		{"prod-gift-card", "wh-main", 60},
	} {
		s.stock[stockKey(tenantID, st.productID, st.warehouseID)] = st.qty
	}

	s.usersByUsername = seedUsers(tenantID)
	return s
}

// seedUsers builds the dev/demo user accounts. Passwords come from
// SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD; hardcoded defaults are
// used with a warning when unset. Production deployments run against
// postgres and never see these.
func seedUsers(tenantID string) map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cashier", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			TenantID:  tenantID,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SeedSession registers a register session, used by tests.
func (s *Store) SeedSession(sess domain.CashRegisterSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionsByID[sess.ID] = sess
}

// SeedStock sets an absolute on-hand quantity, used by tests.
func (s *Store) SeedStock(tenantID, productID, warehouseID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[stockKey(tenantID, productID, warehouseID)] = qty
}

func (s *Store) GetSession(_ context.Context, tenantID, sessionID string) (*domain.CashRegisterSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessionsByID[sessionID]
	if !ok || sess.TenantID != tenantID {
		// Tenant mismatch is reported the same as a missing row so the
		// response never reveals sessions of other tenants.
		return nil, fmt.Errorf("%w: cash register session %s", domain.ErrNotFound, sessionID)
	}
	out := sess
	return &out, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx *domain.SaleTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := cloneTransaction(tx)
	s.transactionsByID[tx.ID] = clone
	s.paymentsByTx[tx.ID] = nil
	return nil
}

func (s *Store) GetTransaction(_ context.Context, tenantID, id string) (*domain.SaleTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, err := s.lookup(tenantID, id)
	if err != nil {
		return nil, err
	}
	return cloneTransaction(tx), nil
}

// lookup resolves a transaction for the tenant. Callers hold the lock.
func (s *Store) lookup(tenantID, id string) (*domain.SaleTransaction, error) {
	tx, ok := s.transactionsByID[id]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, id)
	}
	if tx.TenantID != tenantID {
		return nil, fmt.Errorf("%w: transaction %s", domain.ErrAccessDenied, id)
	}
	return tx, nil
}

func (s *Store) UpdateCustomer(_ context.Context, tenantID, id string, fields domain.CustomerFields) (*domain.SaleTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.lookup(tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := domain.EnsureEditable(tx); err != nil {
		return nil, err
	}
	if fields.Name != nil {
		tx.CustomerName = *fields.Name
	}
	if fields.TaxNumber != nil {
		tx.CustomerTaxNumber = *fields.TaxNumber
	}
	if fields.Email != nil {
		tx.CustomerEmail = *fields.Email
	}
	return cloneTransaction(tx), nil
}

func (s *Store) AddItem(_ context.Context, tenantID, txID string, item domain.SaleItem) (*domain.SaleTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.lookup(tenantID, txID)
	if err != nil {
		return nil, err
	}
	if err := domain.EnsureEditable(tx); err != nil {
		return nil, err
	}
	item.TransactionID = txID
	domain.RecalculateItem(&item)
	tx.Items = append(tx.Items, item)
	domain.RecalculateTotals(tx)
	return cloneTransaction(tx), nil
}

func (s *Store) UpdateItem(_ context.Context, tenantID, txID, itemID string, patch domain.SaleItemPatch) (*domain.SaleTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.lookup(tenantID, txID)
	if err != nil {
		return nil, err
	}
	if err := domain.EnsureEditable(tx); err != nil {
		return nil, err
	}
	idx := findItem(tx, itemID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
	}
	next := cloneTransaction(tx)
	domain.ApplyItemPatch(&next.Items[idx], patch)
	domain.RecalculateItem(&next.Items[idx])
	domain.RecalculateTotals(next)
	if err := domain.EnsureCoversPaid(next); err != nil {
		return nil, err
	}
	s.transactionsByID[txID] = next
	return cloneTransaction(next), nil
}

func (s *Store) RemoveItem(_ context.Context, tenantID, txID, itemID string) (*domain.SaleTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.lookup(tenantID, txID)
	if err != nil {
		return nil, err
	}
	if err := domain.EnsureEditable(tx); err != nil {
		return nil, err
	}
	idx := findItem(tx, itemID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
	}
	next := cloneTransaction(tx)
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	domain.RecalculateTotals(next)
	if err := domain.EnsureCoversPaid(next); err != nil {
		return nil, err
	}
	s.transactionsByID[txID] = next
	return cloneTransaction(next), nil
}

func (s *Store) MarkItemDeducted(_ context.Context, tenantID, txID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.lookup(tenantID, txID)
	if err != nil {
		return err
	}
	idx := findItem(tx, itemID)
	if idx < 0 {
		return fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
	}
	tx.Items[idx].InventoryDeducted = true
	return nil
}

func (s *Store) CompleteTransaction(_ context.Context, tenantID, id string) (*domain.SaleTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.lookup(tenantID, id)
	if err != nil {
		return nil, err
	}
	if tx.Status != domain.TxStatusInProgress {
		return nil, fmt.Errorf("%w: only an in-progress transaction can be closed for payment", domain.ErrInvalidState)
	}
	if len(tx.Items) == 0 {
		return nil, fmt.Errorf("%w: Cannot complete transaction with no items", domain.ErrValidation)
	}
	tx.Status = domain.TxStatusPendingPayment
	return cloneTransaction(tx), nil
}

func (s *Store) VoidTransaction(_ context.Context, tenantID, id, reason, voidedBy string) (*domain.SaleTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.lookup(tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := domain.EnsureVoidable(tx); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	tx.Status = domain.TxStatusVoided
	tx.VoidReason = reason
	tx.VoidedBy = voidedBy
	tx.VoidedAt = &now
	return cloneTransaction(tx), nil
}

func (s *Store) ApplyCashPayment(_ context.Context, tenantID, txID, paymentID string, receivedCents int64) (*domain.SaleTransaction, *domain.SalePayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.lookup(tenantID, txID)
	if err != nil {
		return nil, nil, err
	}
	plan, err := domain.PlanCashPayment(tx, receivedCents)
	if err != nil {
		return nil, nil, err
	}
	payment := domain.SalePayment{
		ID:            paymentID,
		TransactionID: txID,
		Method:        domain.PaymentMethodCash,
		AmountCents:   plan.AmountCents,
		ReceivedAt:    time.Now().UTC(),
	}
	s.applyPlan(tx, plan, payment)
	return cloneTransaction(tx), &payment, nil
}

func (s *Store) ApplyExactPayment(_ context.Context, tenantID, txID string, payment domain.SalePayment) (*domain.SaleTransaction, *domain.SalePayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.lookup(tenantID, txID)
	if err != nil {
		return nil, nil, err
	}
	plan, err := domain.PlanPartialPayment(tx, payment.AmountCents)
	if err != nil {
		return nil, nil, err
	}
	payment.TransactionID = txID
	if payment.ReceivedAt.IsZero() {
		payment.ReceivedAt = time.Now().UTC()
	}
	s.applyPlan(tx, plan, payment)
	return cloneTransaction(tx), &payment, nil
}

// applyPlan records the payment row and moves the transaction ledger to
// the planned state. Callers hold the write lock.
func (s *Store) applyPlan(tx *domain.SaleTransaction, plan domain.PaymentPlan, payment domain.SalePayment) {
	s.paymentsByTx[tx.ID] = append(s.paymentsByTx[tx.ID], payment)
	tx.PaidCents = plan.PaidCents
	tx.ChangeCents += plan.ChangeCents
	tx.PaymentStatus = plan.PaymentStatus
	if plan.Completed {
		tx.Status = domain.TxStatusCompleted
	}
}

func (s *Store) ListPayments(_ context.Context, tenantID, txID string) ([]domain.SalePayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.lookup(tenantID, txID); err != nil {
		return nil, err
	}
	out := make([]domain.SalePayment, len(s.paymentsByTx[txID]))
	copy(out, s.paymentsByTx[txID])
	return out, nil
}

func (s *Store) DeletePayments(_ context.Context, tenantID, txID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.lookup(tenantID, txID)
	if err != nil {
		return 0, err
	}
	n := len(s.paymentsByTx[txID])
	s.paymentsByTx[txID] = nil
	tx.PaidCents = 0
	tx.ChangeCents = 0
	return n, nil
}

func (s *Store) DeductStock(_ context.Context, tenantID, productID, warehouseID string, qty int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := stockKey(tenantID, productID, warehouseID)
	current, ok := s.stock[key]
	if !ok {
		return 0, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
	}
	if current < qty {
		return 0, fmt.Errorf("%w: product %s has %d on hand, need %d", domain.ErrInsufficientStock, productID, current, qty)
	}
	s.stock[key] = current - qty
	return current - qty, nil
}

func (s *Store) IncrementSequence(_ context.Context, tenantID, period string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tenantID + "|" + period
	s.sequences[key]++
	return s.sequences[key], nil
}

func (s *Store) GetUser(_ context.Context, username string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByUsername[username]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, username)
	}
	out := u
	return &out, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, tenantID string, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AuditLog, 0, limit)
	for _, e := range s.auditLogs {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func stockKey(tenantID, productID, warehouseID string) string {
	if warehouseID == "" {
		warehouseID = "-"
	}
	return tenantID + "|" + warehouseID + "|" + productID
}

func findItem(tx *domain.SaleTransaction, itemID string) int {
	for i := range tx.Items {
		if tx.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func cloneTransaction(tx *domain.SaleTransaction) *domain.SaleTransaction {
	out := *tx
	out.Items = make([]domain.SaleItem, len(tx.Items))
	copy(out.Items, tx.Items)
	if tx.VoidedAt != nil {
		t := *tx.VoidedAt
		out.VoidedAt = &t
	}
	return &out
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"kasszapont/backend/internal/domain"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) GetSession(ctx context.Context, tenantID, sessionID string) (*domain.CashRegisterSession, error) {
	var sess domain.CashRegisterSession
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, status
		FROM cash_register_sessions
		WHERE id = $1
	`, sessionID).Scan(&sess.ID, &sess.TenantID, &sess.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: cash register session %s", domain.ErrNotFound, sessionID)
		}
		return nil, err
	}
	// Foreign sessions look exactly like missing ones.
	if sess.TenantID != tenantID {
		return nil, fmt.Errorf("%w: cash register session %s", domain.ErrNotFound, sessionID)
	}
	return &sess, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *domain.SaleTransaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sale_transactions (
			id, tenant_id, session_id, transaction_number,
			subtotal_cents, tax_cents, discount_cents, total_cents,
			payment_status, paid_cents, change_cents, status,
			customer_name, customer_tax_number, customer_email,
			created_by, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, tx.ID, tx.TenantID, tx.SessionID, tx.TransactionNumber,
		tx.SubtotalCents, tx.TaxCents, tx.DiscountCents, tx.TotalCents,
		tx.PaymentStatus, tx.PaidCents, tx.ChangeCents, tx.Status,
		tx.CustomerName, tx.CustomerTaxNumber, tx.CustomerEmail,
		tx.CreatedBy, tx.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate transaction %s", domain.ErrValidation, tx.ID)
		}
		return err
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, tenantID, id string) (*domain.SaleTransaction, error) {
	tx, err := loadTransaction(ctx, s.db, tenantID, id, false)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// loadTransaction reads the header and its items. With forUpdate the
// header row is locked for the remainder of the surrounding database
// transaction, serializing concurrent payments and edits.
func loadTransaction(ctx context.Context, q querier, tenantID, id string, forUpdate bool) (*domain.SaleTransaction, error) {
	query := `
		SELECT id, tenant_id, session_id, transaction_number,
		       subtotal_cents, tax_cents, discount_cents, total_cents,
		       payment_status, paid_cents, change_cents, status,
		       customer_name, customer_tax_number, customer_email,
		       void_reason, voided_by, voided_at, created_by, created_at
		FROM sale_transactions
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var tx domain.SaleTransaction
	var voidedAt sql.NullTime
	err := q.QueryRowContext(ctx, query, id).Scan(
		&tx.ID, &tx.TenantID, &tx.SessionID, &tx.TransactionNumber,
		&tx.SubtotalCents, &tx.TaxCents, &tx.DiscountCents, &tx.TotalCents,
		&tx.PaymentStatus, &tx.PaidCents, &tx.ChangeCents, &tx.Status,
		&tx.CustomerName, &tx.CustomerTaxNumber, &tx.CustomerEmail,
		&tx.VoidReason, &tx.VoidedBy, &voidedAt, &tx.CreatedBy, &tx.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	if tx.TenantID != tenantID {
		return nil, fmt.Errorf("%w: transaction %s", domain.ErrAccessDenied, id)
	}
	if voidedAt.Valid {
		t := voidedAt.Time.UTC()
		tx.VoidedAt = &t
	}
	tx.CreatedAt = tx.CreatedAt.UTC()

	rows, err := q.QueryContext(ctx, `
		SELECT id, transaction_id, product_id, product_code, product_name,
		       quantity, unit_price_cents, tax_rate_percent, discount_percent,
		       line_subtotal_cents, line_tax_cents, line_total_cents,
		       inventory_deducted, warehouse_id
		FROM sale_items
		WHERE transaction_id = $1
		ORDER BY created_at, id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.SaleItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ProductID, &it.ProductCode, &it.ProductName,
			&it.Quantity, &it.UnitPriceCents, &it.TaxRatePercent, &it.DiscountPercent,
			&it.LineSubtotalCents, &it.LineTaxCents, &it.LineTotalCents,
			&it.InventoryDeducted, &it.WarehouseID); err != nil {
			return nil, err
		}
		tx.Items = append(tx.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, tenantID, id string, fields domain.CustomerFields) (*domain.SaleTransaction, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	tx, err := loadTransaction(ctx, pgTx, tenantID, id, true)
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

	_, err = pgTx.ExecContext(ctx, `
		UPDATE sale_transactions
		SET customer_name = $2, customer_tax_number = $3, customer_email = $4, updated_at = now()
		WHERE id = $1
	`, id, tx.CustomerName, tx.CustomerTaxNumber, tx.CustomerEmail)
	if err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Store) AddItem(ctx context.Context, tenantID, txID string, item domain.SaleItem) (*domain.SaleTransaction, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	tx, err := loadTransaction(ctx, pgTx, tenantID, txID, true)
	if err != nil {
		return nil, err
	}
	if err := domain.EnsureEditable(tx); err != nil {
		return nil, err
	}

	item.TransactionID = txID
	domain.RecalculateItem(&item)
	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO sale_items (
			id, transaction_id, product_id, product_code, product_name,
			quantity, unit_price_cents, tax_rate_percent, discount_percent,
			line_subtotal_cents, line_tax_cents, line_total_cents,
			inventory_deducted, warehouse_id, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now())
	`, item.ID, item.TransactionID, item.ProductID, item.ProductCode, item.ProductName,
		item.Quantity, item.UnitPriceCents, item.TaxRatePercent, item.DiscountPercent,
		item.LineSubtotalCents, item.LineTaxCents, item.LineTotalCents,
		item.InventoryDeducted, item.WarehouseID)
	if err != nil {
		return nil, err
	}

	tx.Items = append(tx.Items, item)
	if err := updateTotals(ctx, pgTx, tx); err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Store) UpdateItem(ctx context.Context, tenantID, txID, itemID string, patch domain.SaleItemPatch) (*domain.SaleTransaction, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	tx, err := loadTransaction(ctx, pgTx, tenantID, txID, true)
	if err != nil {
		return nil, err
	}
	if err := domain.EnsureEditable(tx); err != nil {
		return nil, err
	}
	idx := itemIndex(tx, itemID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
	}

	it := &tx.Items[idx]
	domain.ApplyItemPatch(it, patch)
	domain.RecalculateItem(it)
	_, err = pgTx.ExecContext(ctx, `
		UPDATE sale_items
		SET quantity = $2, unit_price_cents = $3, tax_rate_percent = $4, discount_percent = $5,
		    line_subtotal_cents = $6, line_tax_cents = $7, line_total_cents = $8, warehouse_id = $9
		WHERE id = $1
	`, itemID, it.Quantity, it.UnitPriceCents, it.TaxRatePercent, it.DiscountPercent,
		it.LineSubtotalCents, it.LineTaxCents, it.LineTotalCents, it.WarehouseID)
	if err != nil {
		return nil, err
	}

	if err := updateTotals(ctx, pgTx, tx); err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Store) RemoveItem(ctx context.Context, tenantID, txID, itemID string) (*domain.SaleTransaction, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	tx, err := loadTransaction(ctx, pgTx, tenantID, txID, true)
	if err != nil {
		return nil, err
	}
	if err := domain.EnsureEditable(tx); err != nil {
		return nil, err
	}
	idx := itemIndex(tx, itemID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
	}

	if _, err := pgTx.ExecContext(ctx, `DELETE FROM sale_items WHERE id = $1`, itemID); err != nil {
		return nil, err
	}
	tx.Items = append(tx.Items[:idx], tx.Items[idx+1:]...)
	if err := updateTotals(ctx, pgTx, tx); err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return tx, nil
}

// updateTotals recomputes the header aggregates from the in-memory
// items and writes them back. A total pushed below the collected
// amount fails the mutation and rolls the transaction back.
func updateTotals(ctx context.Context, pgTx *sql.Tx, tx *domain.SaleTransaction) error {
	domain.RecalculateTotals(tx)
	if err := domain.EnsureCoversPaid(tx); err != nil {
		return err
	}
	_, err := pgTx.ExecContext(ctx, `
		UPDATE sale_transactions
		SET subtotal_cents = $2, tax_cents = $3, total_cents = $4, updated_at = now()
		WHERE id = $1
	`, tx.ID, tx.SubtotalCents, tx.TaxCents, tx.TotalCents)
	return err
}

func (s *Store) MarkItemDeducted(ctx context.Context, tenantID, txID, itemID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sale_items
		SET inventory_deducted = true
		WHERE id = $1
		  AND transaction_id IN (SELECT id FROM sale_transactions WHERE id = $2 AND tenant_id = $3)
	`, itemID, txID, tenantID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: item %s", domain.ErrNotFound, itemID)
	}
	return nil
}

func (s *Store) CompleteTransaction(ctx context.Context, tenantID, id string) (*domain.SaleTransaction, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	tx, err := loadTransaction(ctx, pgTx, tenantID, id, true)
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
	_, err = pgTx.ExecContext(ctx, `
		UPDATE sale_transactions SET status = $2, updated_at = now() WHERE id = $1
	`, id, tx.Status)
	if err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Store) VoidTransaction(ctx context.Context, tenantID, id, reason, voidedBy string) (*domain.SaleTransaction, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	tx, err := loadTransaction(ctx, pgTx, tenantID, id, true)
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
	_, err = pgTx.ExecContext(ctx, `
		UPDATE sale_transactions
		SET status = $2, void_reason = $3, voided_by = $4, voided_at = $5, updated_at = now()
		WHERE id = $1
	`, id, tx.Status, reason, voidedBy, now)
	if err != nil {
		return nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *Store) ApplyCashPayment(ctx context.Context, tenantID, txID, paymentID string, receivedCents int64) (*domain.SaleTransaction, *domain.SalePayment, error) {
	payment := domain.SalePayment{
		ID:         paymentID,
		Method:     domain.PaymentMethodCash,
		ReceivedAt: time.Now().UTC(),
	}
	return s.applyPayment(ctx, tenantID, txID, payment, func(tx *domain.SaleTransaction) (domain.PaymentPlan, error) {
		return domain.PlanCashPayment(tx, receivedCents)
	})
}

func (s *Store) ApplyExactPayment(ctx context.Context, tenantID, txID string, payment domain.SalePayment) (*domain.SaleTransaction, *domain.SalePayment, error) {
	if payment.ReceivedAt.IsZero() {
		payment.ReceivedAt = time.Now().UTC()
	}
	return s.applyPayment(ctx, tenantID, txID, payment, func(tx *domain.SaleTransaction) (domain.PaymentPlan, error) {
		return domain.PlanPartialPayment(tx, payment.AmountCents)
	})
}

// applyPayment locks the transaction row, re-verifies the balance under
// the lock and records the payment with the new ledger state in one
// database transaction. Two racing payments therefore serialize and the
// loser sees the updated balance.
func (s *Store) applyPayment(ctx context.Context, tenantID, txID string, payment domain.SalePayment, plan func(*domain.SaleTransaction) (domain.PaymentPlan, error)) (*domain.SaleTransaction, *domain.SalePayment, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	tx, err := loadTransaction(ctx, pgTx, tenantID, txID, true)
	if err != nil {
		return nil, nil, err
	}
	p, err := plan(tx)
	if err != nil {
		return nil, nil, err
	}

	payment.TransactionID = txID
	payment.AmountCents = p.AmountCents
	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO sale_payments (
			id, transaction_id, method, amount_cents, received_at,
			card_transaction_id, card_last_four, card_brand
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, payment.ID, payment.TransactionID, payment.Method, payment.AmountCents, payment.ReceivedAt,
		payment.CardTransactionID, payment.CardLastFour, payment.CardBrand)
	if err != nil {
		return nil, nil, err
	}

	tx.PaidCents = p.PaidCents
	tx.ChangeCents += p.ChangeCents
	tx.PaymentStatus = p.PaymentStatus
	if p.Completed {
		tx.Status = domain.TxStatusCompleted
	}
	_, err = pgTx.ExecContext(ctx, `
		UPDATE sale_transactions
		SET paid_cents = $2, change_cents = $3, payment_status = $4, status = $5, updated_at = now()
		WHERE id = $1
	`, txID, tx.PaidCents, tx.ChangeCents, tx.PaymentStatus, tx.Status)
	if err != nil {
		return nil, nil, err
	}
	if err := pgTx.Commit(); err != nil {
		return nil, nil, err
	}
	return tx, &payment, nil
}

func (s *Store) ListPayments(ctx context.Context, tenantID, txID string) ([]domain.SalePayment, error) {
	if _, err := loadTransaction(ctx, s.db, tenantID, txID, false); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, method, amount_cents, received_at,
		       card_transaction_id, card_last_four, card_brand
		FROM sale_payments
		WHERE transaction_id = $1
		ORDER BY received_at, id
	`, txID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.SalePayment, 0, 4)
	for rows.Next() {
		var p domain.SalePayment
		if err := rows.Scan(&p.ID, &p.TransactionID, &p.Method, &p.AmountCents, &p.ReceivedAt,
			&p.CardTransactionID, &p.CardLastFour, &p.CardBrand); err != nil {
			return nil, err
		}
		p.ReceivedAt = p.ReceivedAt.UTC()
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *Store) DeletePayments(ctx context.Context, tenantID, txID string) (int, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, err
	}
	defer func() { _ = pgTx.Rollback() }()

	if _, err := loadTransaction(ctx, pgTx, tenantID, txID, true); err != nil {
		return 0, err
	}
	res, err := pgTx.ExecContext(ctx, `DELETE FROM sale_payments WHERE transaction_id = $1`, txID)
	if err != nil {
		return 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	_, err = pgTx.ExecContext(ctx, `
		UPDATE sale_transactions
		SET paid_cents = 0, change_cents = 0, updated_at = now()
		WHERE id = $1
	`, txID)
	if err != nil {
		return 0, err
	}
	if err := pgTx.Commit(); err != nil {
		return 0, err
	}
	return int(deleted), nil
}

func (s *Store) DeductStock(ctx context.Context, tenantID, productID, warehouseID string, qty int) (int, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, err
	}
	defer func() { _ = pgTx.Rollback() }()

	var current int
	err = pgTx.QueryRowContext(ctx, `
		SELECT qty
		FROM inventory_stocks
		WHERE tenant_id = $1 AND product_id = $2 AND warehouse_id = $3
		FOR UPDATE
	`, tenantID, productID, warehouseID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
		}
		return 0, err
	}
	if current < qty {
		return 0, fmt.Errorf("%w: product %s has %d on hand, need %d", domain.ErrInsufficientStock, productID, current, qty)
	}

	_, err = pgTx.ExecContext(ctx, `
		UPDATE inventory_stocks
		SET qty = qty - $4, updated_at = now()
		WHERE tenant_id = $1 AND product_id = $2 AND warehouse_id = $3
	`, tenantID, productID, warehouseID, qty)
	if err != nil {
		return 0, err
	}
	if err := pgTx.Commit(); err != nil {
		return 0, err
	}
	return current - qty, nil
}

func (s *Store) IncrementSequence(ctx context.Context, tenantID, period string) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO transaction_sequences (tenant_id, period, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, period)
		DO UPDATE SET value = transaction_sequences.value + 1
		RETURNING value
	`, tenantID, period).Scan(&value)
	if err != nil {
		return 0, err
	}
	return value, nil
}

func (s *Store) GetUser(ctx context.Context, username string) (*domain.UserAccount, error) {
	var u domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password, role, tenant_id, active, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&u.Username, &u.Password, &u.Role, &u.TenantID, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, username)
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, tenant_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.TenantID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, tenantID string, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var e domain.AuditLog
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ActorUsername, &e.ActorRole, &e.Action, &e.EntityType, &e.EntityID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.CreatedAt = e.CreatedAt.UTC()
		logs = append(logs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func itemIndex(tx *domain.SaleTransaction, itemID string) int {
	for i := range tx.Items {
		if tx.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

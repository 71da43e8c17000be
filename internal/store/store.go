// Package store defines the persistence contract for the sales engine.
// Implementations live in the memory and postgres subpackages.
package store

import (
	"context"

	"kasszapont/backend/internal/domain"
)

// Repository is the persistence boundary. Mutating methods that combine
// a state check with a write (item edits, payments, void) must perform
// both inside one critical section so concurrent callers cannot race
// past the check.
//
// Tenant scoping: lookups return domain.ErrNotFound when the row does
// not exist and domain.ErrAccessDenied when it exists under another
// tenant. GetSession is the exception and reports both cases as not
// found, so a caller cannot discover sessions of other tenants.
type Repository interface {
	GetSession(ctx context.Context, tenantID, sessionID string) (*domain.CashRegisterSession, error)

	CreateTransaction(ctx context.Context, tx *domain.SaleTransaction) error
	GetTransaction(ctx context.Context, tenantID, id string) (*domain.SaleTransaction, error)
	UpdateCustomer(ctx context.Context, tenantID, id string, fields domain.CustomerFields) (*domain.SaleTransaction, error)

	AddItem(ctx context.Context, tenantID, txID string, item domain.SaleItem) (*domain.SaleTransaction, error)
	UpdateItem(ctx context.Context, tenantID, txID, itemID string, patch domain.SaleItemPatch) (*domain.SaleTransaction, error)
	RemoveItem(ctx context.Context, tenantID, txID, itemID string) (*domain.SaleTransaction, error)
	MarkItemDeducted(ctx context.Context, tenantID, txID, itemID string) error

	// CompleteTransaction closes item entry, moving IN_PROGRESS to
	// PENDING_PAYMENT. A transaction with no items cannot be closed.
	CompleteTransaction(ctx context.Context, tenantID, id string) (*domain.SaleTransaction, error)
	VoidTransaction(ctx context.Context, tenantID, id, reason, voidedBy string) (*domain.SaleTransaction, error)

	// ApplyCashPayment settles the remaining balance from cash tendered
	// and computes change. The recorded payment id is supplied by the
	// caller. ApplyExactPayment applies the given payment as-is toward
	// the balance (partial or card). Both re-verify the balance under
	// the store's lock before writing.
	ApplyCashPayment(ctx context.Context, tenantID, txID, paymentID string, receivedCents int64) (*domain.SaleTransaction, *domain.SalePayment, error)
	ApplyExactPayment(ctx context.Context, tenantID, txID string, payment domain.SalePayment) (*domain.SaleTransaction, *domain.SalePayment, error)
	ListPayments(ctx context.Context, tenantID, txID string) ([]domain.SalePayment, error)
	// DeletePayments removes every payment of a transaction and zeroes
	// its paid and change amounts. Used by the refund flow after a void.
	DeletePayments(ctx context.Context, tenantID, txID string) (int, error)

	// DeductStock decrements on-hand quantity and returns the new
	// level, or domain.ErrInsufficientStock without changing anything.
	DeductStock(ctx context.Context, tenantID, productID, warehouseID string, qty int) (int, error)

	// IncrementSequence atomically advances the per-tenant counter for
	// the given period and returns the new value, starting at 1.
	IncrementSequence(ctx context.Context, tenantID, period string) (int64, error)

	GetUser(ctx context.Context, username string) (*domain.UserAccount, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, tenantID string, limit int) ([]domain.AuditLog, error)
}

package domain

import "time"

// Transaction lifecycle states. A transaction is created IN_PROGRESS,
// moves to PENDING_PAYMENT when item entry is finished, and ends either
// COMPLETED (fully paid) or VOIDED. Both end states are terminal.
const (
	TxStatusInProgress     = "IN_PROGRESS"
	TxStatusPendingPayment = "PENDING_PAYMENT"
	TxStatusCompleted      = "COMPLETED"
	TxStatusVoided         = "VOIDED"
)

// Payment sub-state. Advances PENDING -> PARTIAL -> PAID and never
// regresses.
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPartial = "PARTIAL"
	PaymentStatusPaid    = "PAID"
)

const (
	PaymentMethodCash = "CASH"
	PaymentMethodCard = "CARD"
)

const SessionStatusOpen = "OPEN"

// CashRegisterSession is owned by the register bookkeeping module and is
// read-only here. A transaction may only be opened against an OPEN session.
type CashRegisterSession struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Status   string `json:"status"`
}

type SaleTransaction struct {
	ID                string     `json:"id"`
	TenantID          string     `json:"tenant_id"`
	SessionID         string     `json:"session_id"`
	TransactionNumber string     `json:"transaction_number"`
	SubtotalCents     int64      `json:"subtotal_cents"`
	TaxCents          int64      `json:"tax_cents"`
	DiscountCents     int64      `json:"discount_cents"`
	TotalCents        int64      `json:"total_cents"`
	PaymentStatus     string     `json:"payment_status"`
	PaidCents         int64      `json:"paid_cents"`
	ChangeCents       int64      `json:"change_cents"`
	Status            string     `json:"status"`
	CustomerName      string     `json:"customer_name,omitempty"`
	CustomerTaxNumber string     `json:"customer_tax_number,omitempty"`
	CustomerEmail     string     `json:"customer_email,omitempty"`
	VoidReason        string     `json:"void_reason,omitempty"`
	VoidedBy          string     `json:"voided_by,omitempty"`
	VoidedAt          *time.Time `json:"voided_at,omitempty"`
	CreatedBy         string     `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
	Items             []SaleItem `json:"items"`
}

// SaleItem carries a snapshot of the product at add-time so later catalog
// changes never alter a recorded sale.
type SaleItem struct {
	ID                string  `json:"id"`
	TransactionID     string  `json:"transaction_id"`
	ProductID         string  `json:"product_id"`
	ProductCode       string  `json:"product_code"`
	ProductName       string  `json:"product_name"`
	Quantity          int     `json:"quantity"`
	UnitPriceCents    int64   `json:"unit_price_cents"`
	TaxRatePercent    float64 `json:"tax_rate_percent"`
	DiscountPercent   float64 `json:"discount_percent"`
	LineSubtotalCents int64   `json:"line_subtotal_cents"`
	LineTaxCents      int64   `json:"line_tax_cents"`
	LineTotalCents    int64   `json:"line_total_cents"`
	InventoryDeducted bool    `json:"inventory_deducted"`
	WarehouseID       string  `json:"warehouse_id,omitempty"`
}

type SalePayment struct {
	ID                string    `json:"id"`
	TransactionID     string    `json:"transaction_id"`
	Method            string    `json:"method"`
	AmountCents       int64     `json:"amount_cents"`
	ReceivedAt        time.Time `json:"received_at"`
	CardTransactionID string    `json:"card_transaction_id,omitempty"`
	CardLastFour      string    `json:"card_last_four,omitempty"`
	CardBrand         string    `json:"card_brand,omitempty"`
}

type CustomerFields struct {
	Name      *string `json:"name,omitempty"`
	TaxNumber *string `json:"tax_number,omitempty"`
	Email     *string `json:"email,omitempty"`
}

type CreateTransactionRequest struct {
	SessionID         string `json:"session_id"`
	CustomerName      string `json:"customer_name,omitempty"`
	CustomerTaxNumber string `json:"customer_tax_number,omitempty"`
	CustomerEmail     string `json:"customer_email,omitempty"`
}

type SaleItemRequest struct {
	ProductID       string  `json:"product_id"`
	ProductCode     string  `json:"product_code"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	UnitPriceCents  int64   `json:"unit_price_cents"`
	TaxRatePercent  float64 `json:"tax_rate_percent"`
	DiscountPercent float64 `json:"discount_percent"`
	WarehouseID     string  `json:"warehouse_id,omitempty"`
}

// SaleItemPatch updates an existing line. Nil fields are left unchanged.
type SaleItemPatch struct {
	Quantity        *int     `json:"quantity,omitempty"`
	UnitPriceCents  *int64   `json:"unit_price_cents,omitempty"`
	TaxRatePercent  *float64 `json:"tax_rate_percent,omitempty"`
	DiscountPercent *float64 `json:"discount_percent,omitempty"`
	WarehouseID     *string  `json:"warehouse_id,omitempty"`
}

type VoidTransactionRequest struct {
	Reason string `json:"reason"`
}

type CashPaymentRequest struct {
	ReceivedCents int64 `json:"received_cents"`
}

type PartialPaymentRequest struct {
	Method            string `json:"method"`
	AmountCents       int64  `json:"amount_cents"`
	CardTransactionID string `json:"card_transaction_id,omitempty"`
	CardLastFour      string `json:"card_last_four,omitempty"`
	CardBrand         string `json:"card_brand,omitempty"`
}

// DeductionResult reports one inventory deduction attempt made while
// reconciling a completed sale. Failures are warnings, not errors.
type DeductionResult struct {
	ItemID       string `json:"item_id"`
	ProductID    string `json:"product_id"`
	Success      bool   `json:"success"`
	NewQuantity  int    `json:"new_quantity,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type RefundPaymentsResponse struct {
	TransactionID    string   `json:"transaction_id"`
	RefundedPayments int      `json:"refunded_payments"`
	FailedRefunds    []string `json:"failed_refunds,omitempty"`
}

type Actor struct {
	Username string
	Role     string
	TenantID string
}

type AuditLog struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	TenantID    string `json:"tenant_id"`
	ExpiresAt   string `json:"expires_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	TenantID  string
	Active    bool
	CreatedAt time.Time
}

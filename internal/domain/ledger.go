package domain

import (
	"fmt"
	"math"
	"strings"
)

// RecalculateItem fills the derived line amounts from quantity, unit
// price, discount and tax rate. Discount applies before tax; each
// intermediate amount is rounded half away from zero to whole minor
// units so the stored figures are exact integers.
func RecalculateItem(it *SaleItem) {
	gross := int64(it.Quantity) * it.UnitPriceCents
	it.LineSubtotalCents = roundCents(float64(gross) * (1 - it.DiscountPercent/100))
	it.LineTaxCents = roundCents(float64(it.LineSubtotalCents) * it.TaxRatePercent / 100)
	it.LineTotalCents = it.LineSubtotalCents + it.LineTaxCents
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

// RecalculateTotals rebuilds the transaction's monetary aggregates from
// its items. Every item mutation must be followed by this so the header
// always matches the lines. DiscountCents is a transaction-level
// discount and is preserved; per-line discounts are already inside the
// line subtotals.
func RecalculateTotals(tx *SaleTransaction) {
	var subtotal, tax int64
	for i := range tx.Items {
		subtotal += tx.Items[i].LineSubtotalCents
		tax += tx.Items[i].LineTaxCents
	}
	tx.SubtotalCents = subtotal
	tx.TaxCents = tax
	tx.TotalCents = subtotal + tax - tx.DiscountCents
}

// EnsureEditable rejects item and customer mutations once the
// transaction has left its open states.
func EnsureEditable(tx *SaleTransaction) error {
	if tx.Status == TxStatusCompleted || tx.Status == TxStatusVoided {
		return fmt.Errorf("%w: Cannot modify completed or voided transaction", ErrInvalidState)
	}
	return nil
}

// EnsureCoversPaid rejects a recomputed total that has fallen below the
// amount already collected. Item edits stay open during
// PENDING_PAYMENT, but once partial payments exist they may not strand
// recorded money above the total.
func EnsureCoversPaid(tx *SaleTransaction) error {
	if tx.TotalCents < tx.PaidCents {
		return fmt.Errorf("%w: Cannot reduce total below amount already paid", ErrValidation)
	}
	return nil
}

// EnsureVoidable rejects voids of transactions already in a terminal
// state.
func EnsureVoidable(tx *SaleTransaction) error {
	if tx.Status == TxStatusCompleted || tx.Status == TxStatusVoided {
		return fmt.Errorf("%w: Cannot void completed or already voided transaction", ErrInvalidState)
	}
	return nil
}

// ValidateItemRequest checks a new line before it is priced.
func ValidateItemRequest(req SaleItemRequest) error {
	if strings.TrimSpace(req.ProductID) == "" {
		return fmt.Errorf("%w: product id is required", ErrValidation)
	}
	if strings.TrimSpace(req.ProductName) == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if req.UnitPriceCents < 0 {
		return fmt.Errorf("%w: unit price cannot be negative", ErrValidation)
	}
	if req.TaxRatePercent < 0 || req.TaxRatePercent > 100 {
		return fmt.Errorf("%w: tax rate must be between 0 and 100", ErrValidation)
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrValidation)
	}
	return nil
}

// ValidateItemPatch checks an update to an existing line. Only the
// fields present are validated.
func ValidateItemPatch(patch SaleItemPatch) error {
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if patch.UnitPriceCents != nil && *patch.UnitPriceCents < 0 {
		return fmt.Errorf("%w: unit price cannot be negative", ErrValidation)
	}
	if patch.TaxRatePercent != nil && (*patch.TaxRatePercent < 0 || *patch.TaxRatePercent > 100) {
		return fmt.Errorf("%w: tax rate must be between 0 and 100", ErrValidation)
	}
	if patch.DiscountPercent != nil && (*patch.DiscountPercent < 0 || *patch.DiscountPercent > 100) {
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrValidation)
	}
	return nil
}

// ApplyItemPatch copies the present fields of the patch onto the line.
func ApplyItemPatch(it *SaleItem, patch SaleItemPatch) {
	if patch.Quantity != nil {
		it.Quantity = *patch.Quantity
	}
	if patch.UnitPriceCents != nil {
		it.UnitPriceCents = *patch.UnitPriceCents
	}
	if patch.TaxRatePercent != nil {
		it.TaxRatePercent = *patch.TaxRatePercent
	}
	if patch.DiscountPercent != nil {
		it.DiscountPercent = *patch.DiscountPercent
	}
	if patch.WarehouseID != nil {
		it.WarehouseID = *patch.WarehouseID
	}
}

// PaymentPlan is the outcome of applying one payment: the new ledger
// state of the transaction plus the computed change. The store applies
// a plan atomically inside its critical section so a concurrent payment
// cannot overshoot the total.
type PaymentPlan struct {
	AmountCents   int64
	ChangeCents   int64
	PaidCents     int64
	PaymentStatus string
	Completed     bool
}

// PlanCashPayment settles the full remaining balance from cash tendered.
// Change is returned to the customer; only the remaining balance is
// recorded as paid.
func PlanCashPayment(tx *SaleTransaction, receivedCents int64) (PaymentPlan, error) {
	if tx.PaymentStatus == PaymentStatusPaid {
		return PaymentPlan{}, fmt.Errorf("%w: transaction is already fully paid", ErrAlreadyPaid)
	}
	if tx.Status != TxStatusPendingPayment {
		return PaymentPlan{}, fmt.Errorf("%w: transaction is not awaiting payment", ErrInvalidState)
	}
	if receivedCents <= 0 {
		return PaymentPlan{}, fmt.Errorf("%w: received amount must be positive", ErrValidation)
	}
	remaining := tx.TotalCents - tx.PaidCents
	if remaining <= 0 {
		return PaymentPlan{}, fmt.Errorf("%w: no outstanding balance to pay", ErrValidation)
	}
	if receivedCents < remaining {
		return PaymentPlan{}, fmt.Errorf("%w: Insufficient payment", ErrValidation)
	}
	return PaymentPlan{
		AmountCents:   remaining,
		ChangeCents:   receivedCents - remaining,
		PaidCents:     tx.TotalCents,
		PaymentStatus: PaymentStatusPaid,
		Completed:     true,
	}, nil
}

// PlanPartialPayment applies an exact amount toward the balance. The
// amount may never exceed what is still owed; paying the balance down
// to zero settles and completes the transaction.
func PlanPartialPayment(tx *SaleTransaction, amountCents int64) (PaymentPlan, error) {
	if tx.PaymentStatus == PaymentStatusPaid {
		return PaymentPlan{}, fmt.Errorf("%w: transaction is already fully paid", ErrAlreadyPaid)
	}
	if tx.Status != TxStatusPendingPayment {
		return PaymentPlan{}, fmt.Errorf("%w: transaction is not awaiting payment", ErrInvalidState)
	}
	if amountCents <= 0 {
		return PaymentPlan{}, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}
	remaining := tx.TotalCents - tx.PaidCents
	if amountCents > remaining {
		return PaymentPlan{}, fmt.Errorf("%w: Payment amount exceeds remaining balance", ErrValidation)
	}
	paid := tx.PaidCents + amountCents
	status := PaymentStatusPartial
	completed := false
	if paid == tx.TotalCents {
		status = PaymentStatusPaid
		completed = true
	}
	return PaymentPlan{
		AmountCents:   amountCents,
		ChangeCents:   0,
		PaidCents:     paid,
		PaymentStatus: status,
		Completed:     completed,
	}, nil
}

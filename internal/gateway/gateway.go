// Package gateway talks to the external card payment provider.
package gateway

import "context"

// ChargeResult reports the provider's answer to a charge attempt. A
// declined card comes back with Success=false and a human-readable
// message; transport and provider outages surface as errors instead.
type ChargeResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	CardLastFour  string `json:"card_last_four,omitempty"`
	CardBrand     string `json:"card_brand,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

type RefundResult struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type CardGateway interface {
	// Charge authorizes and captures the amount. The reference is the
	// transaction number, shown on the cardholder's statement.
	// Implementations classify transport and provider failures under
	// domain.ErrExternalService.
	Charge(ctx context.Context, amountCents int64, reference string) (ChargeResult, error)
	// Refund reverses a previously captured charge.
	Refund(ctx context.Context, cardTransactionID string) (RefundResult, error)
}

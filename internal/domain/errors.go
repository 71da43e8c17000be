package domain

import "errors"

// Failure categories shared by the stores, the services and the HTTP
// layer. Callers classify with errors.Is; messages are attached at the
// raise site with fmt.Errorf("%w: ...").
var (
	// ErrNotFound covers a missing resource. The same error is used
	// when a session lookup matches a row from another tenant, so the
	// response never confirms the resource exists elsewhere.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied means the resource exists but belongs to a
	// different tenant than the caller.
	ErrAccessDenied = errors.New("Access denied")

	// ErrValidation covers malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState means the operation is not allowed in the
	// transaction's current lifecycle state.
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyPaid rejects a payment against a transaction whose
	// balance is already settled.
	ErrAlreadyPaid = errors.New("transaction already paid")

	// ErrExternalService wraps failures reported by the card gateway
	// or other downstream systems.
	ErrExternalService = errors.New("external service error")

	// ErrInsufficientStock is returned by stock deductions that would
	// drive the on-hand quantity negative.
	ErrInsufficientStock = errors.New("insufficient stock")
)

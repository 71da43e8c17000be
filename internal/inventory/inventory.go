// Package inventory adjusts stock levels for completed sales.
package inventory

import (
	"context"
	"errors"

	"kasszapont/backend/internal/domain"
)

// Deducter lowers on-hand stock. A failed deduction is reported in the
// result, never as an error: stock bookkeeping must not block a sale
// that has already been paid.
type Deducter interface {
	DeductStock(ctx context.Context, tenantID string, item domain.SaleItem) domain.DeductionResult
}

// StockStore is the slice of the repository the deducter needs.
type StockStore interface {
	DeductStock(ctx context.Context, tenantID, productID, warehouseID string, qty int) (int, error)
}

type Service struct {
	store StockStore
}

func New(store StockStore) *Service {
	return &Service{store: store}
}

func (s *Service) DeductStock(ctx context.Context, tenantID string, item domain.SaleItem) domain.DeductionResult {
	result := domain.DeductionResult{ItemID: item.ID, ProductID: item.ProductID}
	newQty, err := s.store.DeductStock(ctx, tenantID, item.ProductID, item.WarehouseID, item.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			result.ErrorMessage = "insufficient stock"
		case errors.Is(err, domain.ErrNotFound):
			result.ErrorMessage = "product not tracked"
		default:
			result.ErrorMessage = err.Error()
		}
		return result
	}
	result.Success = true
	result.NewQuantity = newQty
	return result
}

package gateway

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Mock is an in-process CardGateway for dev mode and tests. Every
// charge succeeds unless a decline or refund failure has been armed.
type Mock struct {
	mu             sync.Mutex
	declineMessage string
	refundFailures map[string]string
	counter        atomic.Int64

	Charges []int64
	Refunds []string
}

func NewMock() *Mock {
	return &Mock{refundFailures: map[string]string{}}
}

// DeclineNext makes every following charge fail with the message until
// cleared with an empty string.
func (m *Mock) DeclineNext(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.declineMessage = message
}

// FailRefund arms a refund failure for one card transaction id.
func (m *Mock) FailRefund(cardTransactionID, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refundFailures[cardTransactionID] = message
}

func (m *Mock) Charge(_ context.Context, amountCents int64, _ string) (ChargeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Charges = append(m.Charges, amountCents)
	if m.declineMessage != "" {
		return ChargeResult{Success: false, ErrorMessage: m.declineMessage}, nil
	}
	return ChargeResult{
		Success:       true,
		TransactionID: fmt.Sprintf("mock-%d", m.counter.Add(1)),
		CardLastFour:  "4242",
		CardBrand:     "VISA",
	}, nil
}

func (m *Mock) Refund(_ context.Context, cardTransactionID string) (RefundResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Refunds = append(m.Refunds, cardTransactionID)
	if msg, ok := m.refundFailures[cardTransactionID]; ok {
		return RefundResult{Success: false, ErrorMessage: msg}, nil
	}
	return RefundResult{Success: true}, nil
}

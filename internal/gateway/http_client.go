package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kasszapont/backend/internal/domain"
)

// Client is the production CardGateway backed by the provider's HTTP
// API. Provider-side failures are wrapped in domain.ErrExternalService
// so callers can map them without knowing the transport.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type chargeRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"`
}

type refundRequest struct {
	TransactionID string `json:"transaction_id"`
}

func (c *Client) Charge(ctx context.Context, amountCents int64, reference string) (ChargeResult, error) {
	var result ChargeResult
	err := c.post(ctx, "/v1/payments", chargeRequest{
		AmountCents: amountCents,
		Currency:    "HUF",
		Reference:   reference,
	}, &result)
	if err != nil {
		return ChargeResult{}, err
	}
	return result, nil
}

func (c *Client) Refund(ctx context.Context, cardTransactionID string) (RefundResult, error) {
	var result RefundResult
	err := c.post(ctx, "/v1/refunds", refundRequest{TransactionID: cardTransactionID}, &result)
	if err != nil {
		return RefundResult{}, err
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: card gateway unreachable: %v", domain.ErrExternalService, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: card gateway returned status %d", domain.ErrExternalService, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: card gateway sent malformed response: %v", domain.ErrExternalService, err)
	}
	return nil
}

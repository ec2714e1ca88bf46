package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CreateOrder submits a new order. requestID keeps retried creates from
// double-creating processor-side.
func (c *Client) CreateOrder(ctx context.Context, order *OrderRequest, requestID string) (*OrderSnapshot, error) {
	raw, err := c.Request(ctx, http.MethodPost, "v2/checkout/orders", order, true, requestID)
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(raw)
}

// GetOrder fetches the live order status.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*OrderSnapshot, error) {
	path := fmt.Sprintf("v2/checkout/orders/%s", orderID)
	raw, err := c.Request(ctx, http.MethodGet, path, nil, true, "")
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(raw)
}

// ConfirmPaymentSource attaches the buyer's payment source to the order.
func (c *Client) ConfirmPaymentSource(ctx context.Context, orderID string, source *PaymentSource) (*OrderSnapshot, error) {
	path := fmt.Sprintf("v2/checkout/orders/%s/confirm-payment-source", orderID)
	body := map[string]interface{}{"payment_source": source}
	raw, err := c.Request(ctx, http.MethodPost, path, body, true, "")
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(raw)
}

// CaptureOrder captures the approved order.
func (c *Client) CaptureOrder(ctx context.Context, orderID, requestID string) (*OrderSnapshot, error) {
	path := fmt.Sprintf("v2/checkout/orders/%s/capture", orderID)
	raw, err := c.Request(ctx, http.MethodPost, path, nil, true, requestID)
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(raw)
}

// AuthorizeOrder places a hold on the approved order's funds.
func (c *Client) AuthorizeOrder(ctx context.Context, orderID, requestID string) (*OrderSnapshot, error) {
	path := fmt.Sprintf("v2/checkout/orders/%s/authorize", orderID)
	raw, err := c.Request(ctx, http.MethodPost, path, nil, true, requestID)
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(raw)
}

// UpdateOrder applies patch operations produced by DiffOrder. The processor
// answers 204 on success.
func (c *Client) UpdateOrder(ctx context.Context, orderID string, ops []PatchOp) error {
	if len(ops) == 0 {
		return nil
	}
	path := fmt.Sprintf("v2/checkout/orders/%s", orderID)
	_, err := c.Request(ctx, http.MethodPatch, path, ops, true, "")
	return err
}

func decodeSnapshot(raw json.RawMessage) (*OrderSnapshot, error) {
	if len(raw) == 0 {
		return &OrderSnapshot{}, nil
	}

	var snap OrderSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode order payload: %w", err)
	}
	return &snap, nil
}

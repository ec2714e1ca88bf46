package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CaptureAuthorization captures funds previously held by an authorization.
func (c *Client) CaptureAuthorization(ctx context.Context, authorizationID string, req *CaptureAuthorizationRequest, requestID string) (*CaptureDetail, error) {
	path := fmt.Sprintf("v2/payments/authorizations/%s/capture", authorizationID)
	raw, err := c.Request(ctx, http.MethodPost, path, req, true, requestID)
	if err != nil {
		return nil, err
	}

	var capture CaptureDetail
	if err := json.Unmarshal(raw, &capture); err != nil {
		return nil, fmt.Errorf("failed to decode capture payload: %w", err)
	}
	return &capture, nil
}

// ReauthorizeAuthorization refreshes an authorization past its honor period.
func (c *Client) ReauthorizeAuthorization(ctx context.Context, authorizationID string, req *ReauthorizeRequest, requestID string) (*AuthorizationDetail, error) {
	path := fmt.Sprintf("v2/payments/authorizations/%s/reauthorize", authorizationID)
	raw, err := c.Request(ctx, http.MethodPost, path, req, true, requestID)
	if err != nil {
		return nil, err
	}

	var authorization AuthorizationDetail
	if err := json.Unmarshal(raw, &authorization); err != nil {
		return nil, fmt.Errorf("failed to decode authorization payload: %w", err)
	}
	return &authorization, nil
}

// VoidAuthorization cancels an authorization. The processor answers 204 and
// removes the authorization from its further queryable history.
func (c *Client) VoidAuthorization(ctx context.Context, authorizationID string) error {
	path := fmt.Sprintf("v2/payments/authorizations/%s/void", authorizationID)
	_, err := c.Request(ctx, http.MethodPost, path, nil, true, "")
	return err
}

// RefundCapture refunds a completed capture, fully or partially.
func (c *Client) RefundCapture(ctx context.Context, captureID string, req *RefundCaptureRequest, requestID string) (*RefundDetail, error) {
	path := fmt.Sprintf("v2/payments/captures/%s/refund", captureID)
	raw, err := c.Request(ctx, http.MethodPost, path, req, true, requestID)
	if err != nil {
		return nil, err
	}

	var refund RefundDetail
	if err := json.Unmarshal(raw, &refund); err != nil {
		return nil, fmt.Errorf("failed to decode refund payload: %w", err)
	}
	return &refund, nil
}

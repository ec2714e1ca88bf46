package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	httpdto "storepay/dto/http"
	"storepay/dto/model"
	"storepay/lib"
	"storepay/pkg/response"
)

// CaptureAuthorization captures funds held by an authorization and appends
// the capture to the ledger, pushing the new hold state onto the parent row.
func CaptureAuthorization(c *fiber.Ctx) error {
	authorizationID := c.Params("id")

	var req httpdto.CaptureAuthorizationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, err.Error())
	}

	captureReq := &lib.CaptureAuthorizationRequest{
		InvoiceID:    req.InvoiceID,
		FinalCapture: req.FinalCapture,
		NoteToPayer:  req.NoteToPayer,
	}
	if req.Amount != "" {
		captureReq.Amount = &lib.Money{CurrencyCode: req.Currency, Value: req.Amount}
	}

	uniqueID, err := uuid.NewV7()
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, "failed to generate request id")
	}

	ctx := c.UserContext()

	capture, err := processor.CaptureAuthorization(ctx, authorizationID, captureReq, uniqueID.String())
	if err != nil {
		return response.ResponseProcessorError(c, err)
	}

	remote := capture.AsRemote()
	memo := fmt.Sprintf("Captured from authorization %s; storefront order status %s.", authorizationID, req.OrderStatus)
	_, parentTxnID, err := ledger.Append(ctx, req.OrderID, model.TxnTypeCapture, paymentTypeOf(ctx, req.OrderID), remote, memo)
	if err != nil {
		logger.Error("failed to record capture %s for order %s: %v", capture.ID, req.OrderID, err)
	}

	if parentTxnID == "" {
		parentTxnID = authorizationID
	}
	parentStatus := "PARTIALLY_CAPTURED"
	if capture.FinalCapture {
		parentStatus = "CAPTURED"
	}
	if err := ledger.TouchParent(ctx, req.OrderID, parentTxnID, parentStatus, "", time.Now()); err != nil {
		logger.Warn("failed to update authorization %s after capture: %v", parentTxnID, err)
	}

	return response.ResponseSuccess(c, fiber.StatusCreated, capture)
}

// ReauthorizeAuthorization refreshes a hold past its honor period. The
// processor answers with a new authorization that parents on the old one.
func ReauthorizeAuthorization(c *fiber.Ctx) error {
	authorizationID := c.Params("id")

	var req httpdto.ReauthorizeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, err.Error())
	}

	reauthorizeReq := &lib.ReauthorizeRequest{}
	if req.Amount != "" {
		reauthorizeReq.Amount = &lib.Money{CurrencyCode: req.Currency, Value: req.Amount}
	}

	uniqueID, err := uuid.NewV7()
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, "failed to generate request id")
	}

	ctx := c.UserContext()

	authorization, err := processor.ReauthorizeAuthorization(ctx, authorizationID, reauthorizeReq, uniqueID.String())
	if err != nil {
		return response.ResponseProcessorError(c, err)
	}

	remote := authorization.AsRemote()
	memo := fmt.Sprintf("Reauthorized from %s; storefront order status %s.", authorizationID, req.OrderStatus)
	if _, _, err := ledger.Append(ctx, req.OrderID, model.TxnTypeAuthorize, paymentTypeOf(ctx, req.OrderID), remote, memo); err != nil {
		logger.Error("failed to record reauthorization %s for order %s: %v", authorization.ID, req.OrderID, err)
	}

	return response.ResponseSuccess(c, fiber.StatusCreated, authorization)
}

// VoidAuthorization cancels a hold. The processor drops voided authorizations
// from its history, so the local row is flagged instead of re-fetched.
func VoidAuthorization(c *fiber.Ctx) error {
	authorizationID := c.Params("id")

	var req httpdto.VoidAuthorizationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, err.Error())
	}

	ctx := c.UserContext()

	if err := processor.VoidAuthorization(ctx, authorizationID); err != nil {
		return response.ResponseProcessorError(c, err)
	}

	if err := ledger.MarkVoided(ctx, req.OrderID, authorizationID); err != nil {
		logger.Error("failed to flag voided authorization %s for order %s: %v", authorizationID, req.OrderID, err)
	}

	return response.ResponseSuccess(c, fiber.StatusOK, fiber.Map{
		"authorization_id": authorizationID,
		"status":           "VOIDED",
	})
}

// RefundCapture refunds a completed capture, fully or partially, and appends
// the refund to the ledger.
func RefundCapture(c *fiber.Ctx) error {
	captureID := c.Params("id")

	var req httpdto.RefundCaptureRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, err.Error())
	}

	refundReq := &lib.RefundCaptureRequest{
		InvoiceID:   req.InvoiceID,
		NoteToPayer: req.NoteToPayer,
	}
	if req.Amount != "" {
		refundReq.Amount = &lib.Money{CurrencyCode: req.Currency, Value: req.Amount}
	}

	uniqueID, err := uuid.NewV7()
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, "failed to generate request id")
	}

	ctx := c.UserContext()

	refund, err := processor.RefundCapture(ctx, captureID, refundReq, uniqueID.String())
	if err != nil {
		return response.ResponseProcessorError(c, err)
	}

	remote := refund.AsRemote()
	memo := fmt.Sprintf("Refund issued against capture %s; storefront order status %s.", captureID, req.OrderStatus)
	_, parentTxnID, err := ledger.Append(ctx, req.OrderID, model.TxnTypeRefund, paymentTypeOf(ctx, req.OrderID), remote, memo)
	if err != nil {
		logger.Error("failed to record refund %s for order %s: %v", refund.ID, req.OrderID, err)
	}

	if parentTxnID == "" {
		parentTxnID = captureID
	}
	// An amount-limited refund leaves the capture partially refunded.
	parentStatus := "REFUNDED"
	if req.Amount != "" {
		parentStatus = "PARTIALLY_REFUNDED"
	}
	if err := ledger.TouchParent(ctx, req.OrderID, parentTxnID, parentStatus, "", time.Now()); err != nil {
		logger.Warn("failed to update capture %s after refund: %v", parentTxnID, err)
	}

	return response.ResponseSuccess(c, fiber.StatusCreated, refund)
}

package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	httpdto "storepay/dto/http"
	"storepay/helper"
	"storepay/lib"
	"storepay/pkg/response"
	"storepay/repository"
)

const (
	checkoutCreateMemo    = "Created by storefront checkout."
	checkoutCaptureMemo   = "Recorded from the checkout capture response."
	checkoutAuthorizeMemo = "Recorded from the checkout authorization response."
)

// checkoutPurchaseUnit composes the single purchase unit of an order from the
// storefront fields. The reference id is fixed; the diff engine addresses
// patch paths through it.
func checkoutPurchaseUnit(currency, amount, invoiceID, customID, description, softDescriptor string, items []httpdto.CheckoutItem, shipping *httpdto.CheckoutShipping) lib.PurchaseUnit {
	unit := lib.PurchaseUnit{
		ReferenceID:    "default",
		CustomID:       customID,
		InvoiceID:      invoiceID,
		Description:    description,
		SoftDescriptor: softDescriptor,
		Amount: &lib.Amount{
			CurrencyCode: currency,
			Value:        amount,
		},
	}

	for _, item := range items {
		unit.Items = append(unit.Items, lib.Item{
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitAmount: &lib.Money{CurrencyCode: currency, Value: item.UnitPrice},
			SKU:        item.SKU,
			Category:   item.Category,
		})
	}
	if len(items) > 0 {
		// Itemized orders must carry the breakdown; the store prices
		// shipping and tax into the line items.
		unit.Amount.Breakdown = &lib.AmountBreakdown{
			ItemTotal: &lib.Money{CurrencyCode: currency, Value: amount},
		}
	}

	unit.Shipping = checkoutShipping(shipping)
	return unit
}

func checkoutShipping(shipping *httpdto.CheckoutShipping) *lib.Shipping {
	if shipping == nil {
		return nil
	}

	out := &lib.Shipping{Type: shipping.Type}
	if shipping.FullName != "" {
		out.Name = &lib.ShippingName{FullName: shipping.FullName}
	}
	if shipping.AddressLine1 != "" || shipping.CountryCode != "" {
		out.Address = &lib.Address{
			AddressLine1: shipping.AddressLine1,
			AddressLine2: shipping.AddressLine2,
			AdminArea2:   shipping.City,
			AdminArea1:   shipping.State,
			PostalCode:   shipping.PostalCode,
			CountryCode:  shipping.CountryCode,
		}
	}
	return out
}

func approveURL(links []lib.Link) string {
	for _, link := range links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return link.Href
		}
	}
	return ""
}

// reusableStatus reports whether an existing order can still be sent back to
// the buyer instead of creating a new one.
func reusableStatus(status string) bool {
	switch status {
	case "CREATED", "SAVED", "APPROVED", "PAYER_ACTION_REQUIRED":
		return true
	}
	return false
}

// CreateOrder starts a checkout. When the session already holds an order
// created from an identical cart, that order is returned instead of creating
// a duplicate.
func CreateOrder(c *fiber.Ctx) error {
	var req httpdto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, err.Error())
	}

	order := &lib.OrderRequest{
		Intent: req.Intent,
		PurchaseUnits: []lib.PurchaseUnit{
			checkoutPurchaseUnit(req.Currency, req.Amount, req.InvoiceID, req.CustomID, req.Description, req.SoftDescriptor, req.Items, req.Shipping),
		},
	}
	if req.ReturnURL != "" || req.CancelURL != "" {
		order.PaymentSource = &lib.PaymentSource{
			PayPal: &lib.PayPalSource{
				ExperienceContext: &lib.ExperienceContext{
					ReturnURL:  req.ReturnURL,
					CancelURL:  req.CancelURL,
					UserAction: "PAY_NOW",
				},
			},
		}
	}

	fingerprint, err := helper.Fingerprint(order)
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, "failed to fingerprint checkout")
	}

	ctx := c.UserContext()

	session, err := repository.LoadCheckoutSession(ctx, sessions, req.SessionID)
	if err != nil {
		logger.Warn("checkout session lookup failed for %s: %v", req.SessionID, err)
	}

	// An unchanged cart keeps the idempotency key of the previous create
	// attempt, so a retry after a lost response or a failed reuse check
	// reaches the processor as the same logical create.
	requestID := ""
	if session != nil && session.Fingerprint == fingerprint {
		if session.OrderID != "" {
			snap, err := processor.GetOrder(ctx, session.OrderID)
			switch {
			case err == nil && reusableStatus(snap.Status):
				return response.ResponseSuccess(c, fiber.StatusOK, httpdto.CreateOrderResponse{
					OrderID:    snap.ID,
					Status:     snap.Status,
					ApproveURL: approveURL(snap.Links),
					Reused:     true,
				})
			case err == nil:
				// The previous order ran its course; this is a fresh
				// purchase of the same cart.
			default:
				logger.Warn("reuse check failed for order %s, retrying create: %v", session.OrderID, err)
				requestID = session.RequestID
			}
		} else {
			// A create was sent but its response never landed.
			requestID = session.RequestID
		}
	}
	if requestID == "" {
		uniqueID, err := uuid.NewV7()
		if err != nil {
			return response.Response(c, fiber.StatusInternalServerError, "failed to generate request id")
		}
		requestID = uniqueID.String()
	}

	// Persist the key before the network call; a response lost after this
	// point still retries under the same PayPal-Request-Id.
	if err := repository.SaveCheckoutSession(ctx, sessions, req.SessionID, repository.CheckoutSession{
		Fingerprint: fingerprint,
		RequestID:   requestID,
	}); err != nil {
		logger.Warn("failed to persist checkout session %s: %v", req.SessionID, err)
	}

	snap, err := processor.CreateOrder(ctx, order, requestID)
	if err != nil {
		return response.ResponseProcessorError(c, err)
	}

	if _, err := ledger.AppendCreate(ctx, snap, checkoutCreateMemo); err != nil {
		logger.Error("failed to record create row for order %s: %v", snap.ID, err)
	}

	if err := repository.SaveCheckoutSession(ctx, sessions, req.SessionID, repository.CheckoutSession{
		OrderID:     snap.ID,
		Fingerprint: fingerprint,
		RequestID:   requestID,
	}); err != nil {
		logger.Warn("failed to persist checkout session %s: %v", req.SessionID, err)
	}

	return response.ResponseSuccess(c, fiber.StatusCreated, httpdto.CreateOrderResponse{
		OrderID:    snap.ID,
		Status:     snap.Status,
		ApproveURL: approveURL(snap.Links),
	})
}

// GetOrder returns the processor's live view of the order.
func GetOrder(c *fiber.Ctx) error {
	snap, err := processor.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.ResponseProcessorError(c, err)
	}
	return response.ResponseSuccess(c, fiber.StatusOK, snap)
}

// UpdateOrder diffs the desired cart against the live order and sends only
// the permitted patch operations. A desired state that cannot be reached by
// patching is rejected without touching the processor.
func UpdateOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req httpdto.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, err.Error())
	}

	ctx := c.UserContext()

	current, err := processor.GetOrder(ctx, orderID)
	if err != nil {
		return response.ResponseProcessorError(c, err)
	}

	desired := &lib.OrderSnapshot{
		PurchaseUnits: []lib.PurchaseUnit{
			checkoutPurchaseUnit(req.Currency, req.Amount, req.InvoiceID, req.CustomID, req.Description, req.SoftDescriptor, req.Items, req.Shipping),
		},
	}

	ops, err := lib.DiffOrder(current, desired)
	if err != nil {
		return response.ResponseProcessorError(c, err)
	}
	if len(ops) == 0 {
		return response.ResponseSuccess(c, fiber.StatusOK, fiber.Map{
			"order_id": orderID,
			"updated":  false,
		})
	}

	if err := processor.UpdateOrder(ctx, orderID, ops); err != nil {
		return response.ResponseProcessorError(c, err)
	}

	return response.ResponseSuccess(c, fiber.StatusOK, fiber.Map{
		"order_id":   orderID,
		"updated":    true,
		"operations": len(ops),
	})
}

// ConfirmPaymentSource attaches the buyer's chosen instrument to the order.
func ConfirmPaymentSource(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req httpdto.ConfirmPaymentSourceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, err.Error())
	}

	source := &lib.PaymentSource{}
	switch req.Source {
	case "paypal":
		paypal := &lib.PayPalSource{EmailAddress: req.Email}
		if req.ReturnURL != "" || req.CancelURL != "" {
			paypal.ExperienceContext = &lib.ExperienceContext{
				ReturnURL: req.ReturnURL,
				CancelURL: req.CancelURL,
			}
		}
		source.PayPal = paypal
	case "card":
		source.Card = &lib.CardSource{}
	case "venmo":
		empty := json.RawMessage(`{}`)
		source.Venmo = &empty
	}

	snap, err := processor.ConfirmPaymentSource(c.UserContext(), orderID, source)
	if err != nil {
		return response.ResponseProcessorError(c, err)
	}

	return response.ResponseSuccess(c, fiber.StatusOK, fiber.Map{
		"order_id":    snap.ID,
		"status":      snap.Status,
		"approve_url": approveURL(snap.Links),
	})
}

// CaptureOrder captures the approved order and folds the resulting payment
// records into the ledger.
func CaptureOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	ctx := c.UserContext()

	// The body is optional; it only names the checkout session to retire.
	var req httpdto.CaptureOrderRequest
	_ = c.BodyParser(&req)

	uniqueID, err := uuid.NewV7()
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, "failed to generate request id")
	}

	snap, err := processor.CaptureOrder(ctx, orderID, uniqueID.String())
	if err != nil {
		return response.ResponseProcessorError(c, err)
	}

	if _, err := ledger.MergeSnapshot(ctx, snap, checkoutCaptureMemo); err != nil {
		logger.Error("failed to merge capture records for order %s: %v", orderID, err)
	}

	// A captured order cannot be resumed; the next checkout on this
	// session starts clean.
	if req.SessionID != "" {
		if err := repository.ClearCheckoutSession(ctx, sessions, req.SessionID); err != nil {
			logger.Warn("failed to clear checkout session %s: %v", req.SessionID, err)
		}
	}

	return response.ResponseSuccess(c, fiber.StatusCreated, snap)
}

// AuthorizeOrder places a hold on the approved order and records it.
func AuthorizeOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	ctx := c.UserContext()

	uniqueID, err := uuid.NewV7()
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, "failed to generate request id")
	}

	snap, err := processor.AuthorizeOrder(ctx, orderID, uniqueID.String())
	if err != nil {
		return response.ResponseProcessorError(c, err)
	}

	if _, err := ledger.MergeSnapshot(ctx, snap, checkoutAuthorizeMemo); err != nil {
		logger.Error("failed to merge authorization records for order %s: %v", orderID, err)
	}

	return response.ResponseSuccess(c, fiber.StatusCreated, snap)
}

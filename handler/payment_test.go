package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storepay/dto/model"
)

const testCaptureID = "2GG279541U471931P"

func seedCapturedOrder(store *recordStore) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.records = append(store.records,
		model.PaymentTransaction{
			ID:            "u-create",
			OrderID:       testOrderID,
			TxnID:         testOrderID,
			TxnType:       model.TxnTypeCreate,
			PaymentType:   "paypal",
			PaymentStatus: "COMPLETED",
			Currency:      "USD",
			GrossAmount:   "10.00",
			DateAdded:     now,
			LastModified:  now,
		},
		model.PaymentTransaction{
			ID:            "u-capture",
			OrderID:       testOrderID,
			TxnID:         testCaptureID,
			ParentTxnID:   testOrderID,
			TxnType:       model.TxnTypeCapture,
			PaymentType:   "paypal",
			PaymentStatus: "COMPLETED",
			Currency:      "USD",
			GrossAmount:   "10.00",
			FinalCapture:  true,
			DateAdded:     now.Add(time.Second),
			LastModified:  now.Add(time.Second),
		},
	)
}

func TestRefundCaptureRecordsOrderStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/payments/captures/"+testCaptureID+"/refund", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": "1JU08902781691411",
			"status": "COMPLETED",
			"amount": {"currency_code": "USD", "value": "10.00"},
			"links": [{"rel": "up", "href": "https://api-m.sandbox.paypal.com/v2/payments/captures/` + testCaptureID + `"}]
		}`))
	})

	app, store, _ := newCheckoutApp(t, mux)
	seedCapturedOrder(store)

	resp := postJSON(t, app, "/payments/captures/"+testCaptureID+"/refund", map[string]interface{}{
		"order_id":     testOrderID,
		"order_status": "COMPLETED",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	refund := store.find(model.TxnTypeRefund)
	require.NotNil(t, refund)
	assert.Equal(t, "1JU08902781691411", refund.TxnID)
	assert.Equal(t, testCaptureID, refund.ParentTxnID)
	assert.Contains(t, refund.Memo, "storefront order status COMPLETED")

	// A full refund flips the capture row.
	capture, err := store.GetByTxnID(context.Background(), testOrderID, testCaptureID)
	require.NoError(t, err)
	require.NotNil(t, capture)
	assert.Equal(t, "REFUNDED", capture.PaymentStatus)
}

func TestRefundCaptureRequiresOrderStatus(t *testing.T) {
	mux := http.NewServeMux()
	app, store, _ := newCheckoutApp(t, mux)
	seedCapturedOrder(store)

	resp := postJSON(t, app, "/payments/captures/"+testCaptureID+"/refund", map[string]interface{}{
		"order_id": testOrderID,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	assert.Nil(t, store.find(model.TxnTypeRefund))
}

package lib

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParentFromLinks(t *testing.T) {
	links := []Link{
		{Href: "https://api-m.sandbox.paypal.com/v2/payments/captures/2GG279541U471931P", Rel: "self"},
		{Href: "https://api-m.sandbox.paypal.com/v2/payments/authorizations/8AA831015G517922L", Rel: "up"},
	}
	assert.Equal(t, "8AA831015G517922L", ParentFromLinks(links))
}

func TestParentFromLinksTrailingSlash(t *testing.T) {
	links := []Link{{Href: "https://api-m.sandbox.paypal.com/v2/checkout/orders/5O190127TN364715T/", Rel: "up"}}
	assert.Equal(t, "5O190127TN364715T", ParentFromLinks(links))
}

func TestParentFromLinksAbsent(t *testing.T) {
	links := []Link{{Href: "https://api-m.sandbox.paypal.com/v2/payments/captures/X", Rel: "self"}}
	assert.Equal(t, "", ParentFromLinks(links))
	assert.Equal(t, "", ParentFromLinks(nil))
}

func TestPaymentCollectionCollectsUnknownCategories(t *testing.T) {
	raw := []byte(`{
		"authorizations": [{"id": "8AA831015G517922L", "status": "CREATED"}],
		"chargebacks": [{"id": "CB1"}],
		"disputes": []
	}`)

	var payments PaymentCollection
	require.NoError(t, json.Unmarshal(raw, &payments))

	require.Len(t, payments.Authorizations, 1)
	assert.Equal(t, "8AA831015G517922L", payments.Authorizations[0].ID)
	assert.ElementsMatch(t, []string{"chargebacks", "disputes"}, payments.Unknown)
}

func TestPaymentSourceType(t *testing.T) {
	var none *PaymentSource
	assert.Equal(t, "", none.PaymentType())
	assert.Equal(t, "", (&PaymentSource{}).PaymentType())
	assert.Equal(t, "paypal", (&PaymentSource{PayPal: &PayPalSource{}}).PaymentType())
	assert.Equal(t, "card", (&PaymentSource{Card: &CardSource{}}).PaymentType())

	venmo := json.RawMessage(`{}`)
	assert.Equal(t, "venmo", (&PaymentSource{Venmo: &venmo}).PaymentType())
}

func TestCaptureAsRemoteSettlementFields(t *testing.T) {
	capture := CaptureDetail{
		ID:           "2GG279541U471931P",
		Status:       "PENDING",
		FinalCapture: true,
		StatusDetails: &StatusDetails{
			Reason: "PENDING_REVIEW",
		},
		Amount: &Money{CurrencyCode: "USD", Value: "10.00"},
		SellerBreakdown: &SellerReceivableBreakdown{
			ReceivableAmount: &Money{CurrencyCode: "EUR", Value: "9.21"},
			ExchangeRate:     &ExchangeRate{Value: "0.921"},
		},
	}

	remote := capture.AsRemote()
	assert.Equal(t, "2GG279541U471931P", remote.ID)
	assert.Equal(t, "PENDING_REVIEW", remote.PendingReason)
	assert.Equal(t, "USD", remote.Currency)
	assert.Equal(t, "10.00", remote.GrossAmount)
	assert.Equal(t, "9.21", remote.SettleAmount)
	assert.Equal(t, "EUR", remote.SettleCurrency)
	assert.Equal(t, "0.921", remote.ExchangeRate)
	assert.True(t, remote.FinalCapture)
}

func TestRefundAsRemotePayableBreakdown(t *testing.T) {
	refund := RefundDetail{
		ID:     "1JU08902781691411",
		Status: "COMPLETED",
		Amount: &Money{CurrencyCode: "USD", Value: "5.00"},
		SellerBreakdown: &SellerPayableBreakdown{
			PayableAmount: &Money{CurrencyCode: "EUR", Value: "4.60"},
		},
	}

	remote := refund.AsRemote()
	assert.Equal(t, "5.00", remote.GrossAmount)
	assert.Equal(t, "4.60", remote.SettleAmount)
	assert.Equal(t, "EUR", remote.SettleCurrency)
}

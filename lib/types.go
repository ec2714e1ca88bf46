package lib

import (
	"encoding/json"
	"strings"
)

// tokenResponse is the payload of POST v1/oauth2/token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// processorError is the structured error body PayPal returns on 4xx/5xx.
type processorError struct {
	Name    string        `json:"name"`
	Message string        `json:"message"`
	DebugID string        `json:"debug_id"`
	Details []ErrorDetail `json:"details"`
}

// Link is a HATEOAS relation attached to processor resources.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method,omitempty"`
}

// ParentFromLinks derives the parent transaction id from the "up" relation.
// An absent relation means the resource is a root (parented on the order).
func ParentFromLinks(links []Link) string {
	for _, link := range links {
		if link.Rel != "up" {
			continue
		}
		href := strings.TrimSuffix(link.Href, "/")
		if idx := strings.LastIndex(href, "/"); idx >= 0 {
			return href[idx+1:]
		}
	}
	return ""
}

// Money is a currency_code/value pair.
type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// Amount extends Money with the optional purchase-unit breakdown.
type Amount struct {
	CurrencyCode string           `json:"currency_code"`
	Value        string           `json:"value"`
	Breakdown    *AmountBreakdown `json:"breakdown,omitempty"`
}

type AmountBreakdown struct {
	ItemTotal *Money `json:"item_total,omitempty"`
	Shipping  *Money `json:"shipping,omitempty"`
	TaxTotal  *Money `json:"tax_total,omitempty"`
	Discount  *Money `json:"discount,omitempty"`
}

type Item struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
	UnitAmount *Money `json:"unit_amount"`
	Tax        *Money `json:"tax,omitempty"`
	SKU        string `json:"sku,omitempty"`
	Category   string `json:"category,omitempty"`
}

type ShippingName struct {
	FullName string `json:"full_name"`
}

type Address struct {
	AddressLine1 string `json:"address_line_1,omitempty"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	AdminArea2   string `json:"admin_area_2,omitempty"`
	AdminArea1   string `json:"admin_area_1,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	CountryCode  string `json:"country_code"`
}

type Shipping struct {
	Name    *ShippingName `json:"name,omitempty"`
	Type    string        `json:"type,omitempty"`
	Address *Address      `json:"address,omitempty"`
}

type Payer struct {
	PayerID string     `json:"payer_id,omitempty"`
	Name    *PayerName `json:"name,omitempty"`
	Email   string     `json:"email_address,omitempty"`
}

type PayerName struct {
	GivenName string `json:"given_name,omitempty"`
	Surname   string `json:"surname,omitempty"`
}

// PaymentSource identifies how the buyer pays. Only the categories the store
// offers are modeled; the processor accepts these as mutually exclusive keys.
type PaymentSource struct {
	PayPal *PayPalSource   `json:"paypal,omitempty"`
	Card   *CardSource     `json:"card,omitempty"`
	Venmo  *json.RawMessage `json:"venmo,omitempty"`
}

type PayPalSource struct {
	EmailAddress      string             `json:"email_address,omitempty"`
	AccountID         string             `json:"account_id,omitempty"`
	ExperienceContext *ExperienceContext `json:"experience_context,omitempty"`
}

type CardSource struct {
	Name        string `json:"name,omitempty"`
	LastDigits  string `json:"last_digits,omitempty"`
	Brand       string `json:"brand,omitempty"`
	VaultID     string `json:"vault_id,omitempty"`
	StoredToken string `json:"stored_credential,omitempty"`
}

type ExperienceContext struct {
	ReturnURL          string `json:"return_url,omitempty"`
	CancelURL          string `json:"cancel_url,omitempty"`
	BrandName          string `json:"brand_name,omitempty"`
	UserAction         string `json:"user_action,omitempty"`
	ShippingPreference string `json:"shipping_preference,omitempty"`
}

// PaymentType resolves the wallet/instrument category of a snapshot for the
// ledger. Empty when the order has no payment source yet.
func (s *PaymentSource) PaymentType() string {
	switch {
	case s == nil:
		return ""
	case s.Card != nil:
		return "card"
	case s.Venmo != nil:
		return "venmo"
	case s.PayPal != nil:
		return "paypal"
	}
	return ""
}

// StatusDetails carries the pending reason on authorizations and captures.
type StatusDetails struct {
	Reason string `json:"reason,omitempty"`
}

type ExchangeRate struct {
	SourceCurrency string `json:"source_currency,omitempty"`
	TargetCurrency string `json:"target_currency,omitempty"`
	Value          string `json:"value,omitempty"`
}

// SellerReceivableBreakdown is attached to captures when settlement happens
// in a different currency than the gross amount.
type SellerReceivableBreakdown struct {
	GrossAmount      *Money        `json:"gross_amount,omitempty"`
	PaypalFee        *Money        `json:"paypal_fee,omitempty"`
	NetAmount        *Money        `json:"net_amount,omitempty"`
	ReceivableAmount *Money        `json:"receivable_amount,omitempty"`
	ExchangeRate     *ExchangeRate `json:"exchange_rate,omitempty"`
}

// SellerPayableBreakdown is the refund-side equivalent.
type SellerPayableBreakdown struct {
	GrossAmount   *Money        `json:"gross_amount,omitempty"`
	PaypalFee     *Money        `json:"paypal_fee,omitempty"`
	NetAmount     *Money        `json:"net_amount,omitempty"`
	PayableAmount *Money        `json:"payable_amount,omitempty"`
	ExchangeRate  *ExchangeRate `json:"exchange_rate,omitempty"`
}

// AuthorizationDetail is one entry of payments.authorizations.
type AuthorizationDetail struct {
	ID             string         `json:"id"`
	Status         string         `json:"status"`
	StatusDetails  *StatusDetails `json:"status_details,omitempty"`
	Amount         *Money         `json:"amount,omitempty"`
	InvoiceID      string         `json:"invoice_id,omitempty"`
	ExpirationTime string         `json:"expiration_time,omitempty"`
	Links          []Link         `json:"links,omitempty"`
	CreateTime     string         `json:"create_time,omitempty"`
	UpdateTime     string         `json:"update_time,omitempty"`
}

// CaptureDetail is one entry of payments.captures.
type CaptureDetail struct {
	ID               string                     `json:"id"`
	Status           string                     `json:"status"`
	StatusDetails    *StatusDetails             `json:"status_details,omitempty"`
	Amount           *Money                     `json:"amount,omitempty"`
	InvoiceID        string                     `json:"invoice_id,omitempty"`
	FinalCapture     bool                       `json:"final_capture,omitempty"`
	SellerBreakdown  *SellerReceivableBreakdown `json:"seller_receivable_breakdown,omitempty"`
	Links            []Link                     `json:"links,omitempty"`
	CreateTime       string                     `json:"create_time,omitempty"`
	UpdateTime       string                     `json:"update_time,omitempty"`
}

// RefundDetail is one entry of payments.refunds.
type RefundDetail struct {
	ID              string                  `json:"id"`
	Status          string                  `json:"status"`
	StatusDetails   *StatusDetails          `json:"status_details,omitempty"`
	Amount          *Money                  `json:"amount,omitempty"`
	NoteToPayer     string                  `json:"note_to_payer,omitempty"`
	SellerBreakdown *SellerPayableBreakdown `json:"seller_payable_breakdown,omitempty"`
	Links           []Link                  `json:"links,omitempty"`
	CreateTime      string                  `json:"create_time,omitempty"`
	UpdateTime      string                  `json:"update_time,omitempty"`
}

// PaymentCollection groups the payment records of one purchase unit. Decoding
// keeps track of record categories we do not recognize so the ledger can
// surface them as data-quality warnings instead of silently dropping them.
type PaymentCollection struct {
	Authorizations []AuthorizationDetail
	Captures       []CaptureDetail
	Refunds        []RefundDetail
	Unknown        []string
}

func (p *PaymentCollection) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		switch key {
		case "authorizations":
			if err := json.Unmarshal(value, &p.Authorizations); err != nil {
				return err
			}
		case "captures":
			if err := json.Unmarshal(value, &p.Captures); err != nil {
				return err
			}
		case "refunds":
			if err := json.Unmarshal(value, &p.Refunds); err != nil {
				return err
			}
		default:
			p.Unknown = append(p.Unknown, key)
		}
	}
	return nil
}

func (p PaymentCollection) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{}
	if len(p.Authorizations) > 0 {
		out["authorizations"] = p.Authorizations
	}
	if len(p.Captures) > 0 {
		out["captures"] = p.Captures
	}
	if len(p.Refunds) > 0 {
		out["refunds"] = p.Refunds
	}
	return json.Marshal(out)
}

// PurchaseUnit is the single cart of an order.
type PurchaseUnit struct {
	ReferenceID    string             `json:"reference_id,omitempty"`
	CustomID       string             `json:"custom_id,omitempty"`
	InvoiceID      string             `json:"invoice_id,omitempty"`
	Description    string             `json:"description,omitempty"`
	SoftDescriptor string             `json:"soft_descriptor,omitempty"`
	Amount         *Amount            `json:"amount,omitempty"`
	Items          []Item             `json:"items,omitempty"`
	Shipping       *Shipping          `json:"shipping,omitempty"`
	Payments       *PaymentCollection `json:"payments,omitempty"`
}

// OrderSnapshot is the processor's view of an order. It is read-only on the
// store side; a fresh one is fetched or taken from the latest response.
type OrderSnapshot struct {
	ID            string         `json:"id"`
	Intent        string         `json:"intent,omitempty"`
	Status        string         `json:"status,omitempty"`
	PaymentSource *PaymentSource `json:"payment_source,omitempty"`
	Payer         *Payer         `json:"payer,omitempty"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units,omitempty"`
	Links         []Link         `json:"links,omitempty"`
	CreateTime    string         `json:"create_time,omitempty"`
	UpdateTime    string         `json:"update_time,omitempty"`
}

// OrderRequest composes POST v2/checkout/orders.
type OrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
	PaymentSource *PaymentSource `json:"payment_source,omitempty"`
}

// CaptureAuthorizationRequest composes v2/payments/authorizations/{id}/capture.
type CaptureAuthorizationRequest struct {
	Amount       *Money `json:"amount,omitempty"`
	InvoiceID    string `json:"invoice_id,omitempty"`
	FinalCapture bool   `json:"final_capture,omitempty"`
	NoteToPayer  string `json:"note_to_payer,omitempty"`
}

// ReauthorizeRequest composes v2/payments/authorizations/{id}/reauthorize.
type ReauthorizeRequest struct {
	Amount *Money `json:"amount,omitempty"`
}

// RefundCaptureRequest composes v2/payments/captures/{id}/refund.
type RefundCaptureRequest struct {
	Amount      *Money `json:"amount,omitempty"`
	InvoiceID   string `json:"invoice_id,omitempty"`
	NoteToPayer string `json:"note_to_payer,omitempty"`
}

// RemoteTransaction is the normalized shape the ledger consumes, independent
// of which payment-record category the processor returned.
type RemoteTransaction struct {
	ID             string
	Status         string
	PendingReason  string
	Currency       string
	GrossAmount    string
	SettleAmount   string
	SettleCurrency string
	ExchangeRate   string
	ExpirationTime string
	FinalCapture   bool
	Links          []Link
	CreateTime     string
	UpdateTime     string
}

// AsRemote normalizes an authorization entry.
func (a AuthorizationDetail) AsRemote() RemoteTransaction {
	remote := RemoteTransaction{
		ID:             a.ID,
		Status:         a.Status,
		ExpirationTime: a.ExpirationTime,
		Links:          a.Links,
		CreateTime:     a.CreateTime,
		UpdateTime:     a.UpdateTime,
	}
	if a.StatusDetails != nil {
		remote.PendingReason = a.StatusDetails.Reason
	}
	if a.Amount != nil {
		remote.Currency = a.Amount.CurrencyCode
		remote.GrossAmount = a.Amount.Value
	}
	return remote
}

// AsRemote normalizes a capture entry, mapping the receivable breakdown into
// the settlement fields when present.
func (c CaptureDetail) AsRemote() RemoteTransaction {
	remote := RemoteTransaction{
		ID:           c.ID,
		Status:       c.Status,
		FinalCapture: c.FinalCapture,
		Links:        c.Links,
		CreateTime:   c.CreateTime,
		UpdateTime:   c.UpdateTime,
	}
	if c.StatusDetails != nil {
		remote.PendingReason = c.StatusDetails.Reason
	}
	if c.Amount != nil {
		remote.Currency = c.Amount.CurrencyCode
		remote.GrossAmount = c.Amount.Value
	}
	if c.SellerBreakdown != nil {
		if c.SellerBreakdown.ReceivableAmount != nil {
			remote.SettleAmount = c.SellerBreakdown.ReceivableAmount.Value
			remote.SettleCurrency = c.SellerBreakdown.ReceivableAmount.CurrencyCode
		}
		if c.SellerBreakdown.ExchangeRate != nil {
			remote.ExchangeRate = c.SellerBreakdown.ExchangeRate.Value
		}
	}
	return remote
}

// AsRemote normalizes a refund entry via the payable breakdown.
func (r RefundDetail) AsRemote() RemoteTransaction {
	remote := RemoteTransaction{
		ID:         r.ID,
		Status:     r.Status,
		Links:      r.Links,
		CreateTime: r.CreateTime,
		UpdateTime: r.UpdateTime,
	}
	if r.StatusDetails != nil {
		remote.PendingReason = r.StatusDetails.Reason
	}
	if r.Amount != nil {
		remote.Currency = r.Amount.CurrencyCode
		remote.GrossAmount = r.Amount.Value
	}
	if r.SellerBreakdown != nil {
		if r.SellerBreakdown.PayableAmount != nil {
			remote.SettleAmount = r.SellerBreakdown.PayableAmount.Value
			remote.SettleCurrency = r.SellerBreakdown.PayableAmount.CurrencyCode
		}
		if r.SellerBreakdown.ExchangeRate != nil {
			remote.ExchangeRate = r.SellerBreakdown.ExchangeRate.Value
		}
	}
	return remote
}

// ParentID resolves the parent transaction id from the up link.
func (r RemoteTransaction) ParentID() string {
	return ParentFromLinks(r.Links)
}

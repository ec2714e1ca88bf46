package http

// CheckoutItem is one cart line in a checkout request.
type CheckoutItem struct {
	Name      string `json:"name" validate:"required,max=127"`
	Quantity  string `json:"quantity" validate:"required"`
	UnitPrice string `json:"unit_price" validate:"required"`
	SKU       string `json:"sku,omitempty"`
	Category  string `json:"category,omitempty"`
}

// CheckoutShipping carries the ship-to details of a checkout request.
type CheckoutShipping struct {
	FullName     string `json:"full_name,omitempty"`
	Type         string `json:"type,omitempty" validate:"omitempty,oneof=SHIPPING PICKUP_IN_PERSON"`
	AddressLine1 string `json:"address_line_1,omitempty"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	CountryCode  string `json:"country_code,omitempty" validate:"omitempty,len=2"`
}

// CreateOrderRequest starts (or resumes) a checkout against the processor.
type CreateOrderRequest struct {
	SessionID      string           `json:"session_id" validate:"required"`
	Intent         string           `json:"intent" validate:"required,oneof=CAPTURE AUTHORIZE"`
	Currency       string           `json:"currency" validate:"required,len=3"`
	Amount         string           `json:"amount" validate:"required"`
	InvoiceID      string           `json:"invoice_id,omitempty"`
	CustomID       string           `json:"custom_id,omitempty"`
	Description    string           `json:"description,omitempty" validate:"omitempty,max=127"`
	SoftDescriptor string           `json:"soft_descriptor,omitempty" validate:"omitempty,max=22"`
	Items          []CheckoutItem   `json:"items,omitempty" validate:"dive"`
	Shipping       *CheckoutShipping `json:"shipping,omitempty"`
	ReturnURL      string           `json:"return_url,omitempty" validate:"omitempty,url"`
	CancelURL      string           `json:"cancel_url,omitempty" validate:"omitempty,url"`
}

// UpdateOrderRequest describes the desired new order state; the diff engine
// decides which patch operations (if any) may be sent.
type UpdateOrderRequest struct {
	Currency       string            `json:"currency" validate:"required,len=3"`
	Amount         string            `json:"amount" validate:"required"`
	InvoiceID      string            `json:"invoice_id,omitempty"`
	CustomID       string            `json:"custom_id,omitempty"`
	Description    string            `json:"description,omitempty" validate:"omitempty,max=127"`
	SoftDescriptor string            `json:"soft_descriptor,omitempty" validate:"omitempty,max=22"`
	Items          []CheckoutItem    `json:"items,omitempty" validate:"dive"`
	Shipping       *CheckoutShipping `json:"shipping,omitempty"`
}

// CaptureOrderRequest optionally names the checkout session that produced
// the order, so it can be retired once the order is paid.
type CaptureOrderRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

// ConfirmPaymentSourceRequest attaches the buyer's chosen instrument.
type ConfirmPaymentSourceRequest struct {
	Source    string `json:"source" validate:"required,oneof=paypal card venmo"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	ReturnURL string `json:"return_url,omitempty" validate:"omitempty,url"`
	CancelURL string `json:"cancel_url,omitempty" validate:"omitempty,url"`
}

// CreateOrderResponse echoes the processor order back to the storefront.
type CreateOrderResponse struct {
	OrderID    string `json:"order_id"`
	Status     string `json:"status"`
	ApproveURL string `json:"approve_url,omitempty"`
	Reused     bool   `json:"reused"`
}

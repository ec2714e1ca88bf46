package http

import "time"

// CaptureAuthorizationRequest captures held funds. OrderStatus must be
// supplied by the caller; the service never defaults it.
type CaptureAuthorizationRequest struct {
	OrderID      string `json:"order_id" validate:"required"`
	OrderStatus  string `json:"order_status" validate:"required,oneof=CREATED SAVED APPROVED VOIDED COMPLETED PAYER_ACTION_REQUIRED"`
	Currency     string `json:"currency,omitempty" validate:"omitempty,len=3"`
	Amount       string `json:"amount,omitempty"`
	InvoiceID    string `json:"invoice_id,omitempty"`
	FinalCapture bool   `json:"final_capture"`
	NoteToPayer  string `json:"note_to_payer,omitempty" validate:"omitempty,max=255"`
}

// ReauthorizeRequest refreshes an expired authorization hold.
type ReauthorizeRequest struct {
	OrderID     string `json:"order_id" validate:"required"`
	OrderStatus string `json:"order_status" validate:"required,oneof=CREATED SAVED APPROVED VOIDED COMPLETED PAYER_ACTION_REQUIRED"`
	Currency    string `json:"currency,omitempty" validate:"omitempty,len=3"`
	Amount      string `json:"amount,omitempty"`
}

// VoidAuthorizationRequest cancels a hold.
type VoidAuthorizationRequest struct {
	OrderID     string `json:"order_id" validate:"required"`
	OrderStatus string `json:"order_status" validate:"required,oneof=CREATED SAVED APPROVED VOIDED COMPLETED PAYER_ACTION_REQUIRED"`
}

// RefundCaptureRequest refunds a completed capture, fully or partially.
type RefundCaptureRequest struct {
	OrderID     string `json:"order_id" validate:"required"`
	OrderStatus string `json:"order_status" validate:"required,oneof=CREATED SAVED APPROVED VOIDED COMPLETED PAYER_ACTION_REQUIRED"`
	Currency    string `json:"currency,omitempty" validate:"omitempty,len=3"`
	Amount      string `json:"amount,omitempty"`
	InvoiceID   string `json:"invoice_id,omitempty"`
	NoteToPayer string `json:"note_to_payer,omitempty" validate:"omitempty,max=255"`
}

// LedgerRow is one reconstructed chain entry for the admin screens.
type LedgerRow struct {
	TxnID          string     `json:"txn_id"`
	ParentTxnID    string     `json:"parent_txn_id"`
	TxnType        string     `json:"txn_type"`
	PaymentType    string     `json:"payment_type"`
	PaymentStatus  string     `json:"payment_status"`
	PendingReason  string     `json:"pending_reason,omitempty"`
	Currency       string     `json:"currency"`
	GrossAmount    string     `json:"gross_amount"`
	SettleAmount   string     `json:"settle_amount,omitempty"`
	SettleCurrency string     `json:"settle_currency,omitempty"`
	ExchangeRate   string     `json:"exchange_rate,omitempty"`
	FinalCapture   bool       `json:"final_capture"`
	Memo           string     `json:"memo,omitempty"`
	DateAdded      time.Time  `json:"date_added"`
	LastModified   time.Time  `json:"last_modified"`
	ExpirationTime *time.Time `json:"expiration_time,omitempty"`
}

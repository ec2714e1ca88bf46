package model

import (
	"time"
)

// Transaction types of ledger rows. Exactly one CREATE row with an empty
// parent exists per order; every other row points at an existing txn id.
const (
	TxnTypeCreate    = "CREATE"
	TxnTypeAuthorize = "AUTHORIZE"
	TxnTypeCapture   = "CAPTURE"
	TxnTypeRefund    = "REFUND"
)

// PaymentTransaction is one row of the append-only order ledger. Rows are
// never deleted; only status and timestamp fields mutate in place.
type PaymentTransaction struct {
	ID             string     `gorm:"size:50;primaryKey" json:"u_id"`
	OrderID        string     `gorm:"size:64;index:idx_ledger_order;not null" json:"order_id"`
	TxnID          string     `gorm:"size:64;index:idx_ledger_txn;not null" json:"txn_id"`
	ParentTxnID    string     `gorm:"size:64;index" json:"parent_txn_id"`
	TxnType        string     `gorm:"size:20;not null" json:"txn_type"`
	PaymentType    string     `gorm:"size:32" json:"payment_type"`
	PaymentStatus  string     `gorm:"size:32" json:"payment_status"`
	PendingReason  string     `gorm:"size:64" json:"pending_reason"`
	Currency       string     `gorm:"size:10" json:"currency"`
	GrossAmount    string     `gorm:"size:32" json:"gross_amount"`
	SettleAmount   string     `gorm:"size:32" json:"settle_amount"`
	SettleCurrency string     `gorm:"size:10" json:"settle_currency"`
	ExchangeRate   string     `gorm:"size:32" json:"exchange_rate"`
	ExpirationTime *time.Time `json:"expiration_time,omitempty"`
	FinalCapture   bool       `gorm:"type:BOOLEAN" json:"final_capture"`
	Memo           string     `gorm:"type:TEXT" json:"memo"`
	DateAdded      time.Time  `gorm:"autoCreateTime" json:"date_added"`
	LastModified   time.Time  `gorm:"autoUpdateTime" json:"last_modified"`
}

package handler

import (
	"context"

	"github.com/go-playground/validator/v10"

	"storepay/helper"
	"storepay/lib"
	"storepay/repository"
)

var (
	processor *lib.Client
	ledger    *repository.TransactionLedger
	sessions  lib.SessionStore

	validate = validator.New()
	logger   = helper.NewLogger("HANDLER")
)

// Setup wires the shared dependencies once at startup, before routes are
// registered.
func Setup(client *lib.Client, txLedger *repository.TransactionLedger, sessionStore lib.SessionStore) {
	processor = client
	ledger = txLedger
	sessions = sessionStore
}

// paymentTypeOf looks up the wallet category recorded on the order's root row.
// Empty when the order has no ledger history yet.
func paymentTypeOf(ctx context.Context, orderID string) string {
	chain, err := ledger.Chain(ctx, orderID)
	if err != nil || len(chain) == 0 {
		return ""
	}
	return chain[0].PaymentType
}
